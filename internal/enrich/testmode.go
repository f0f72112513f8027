package enrich

import (
	"context"
	"fmt"
)

// TestTranslator returns a fixed marked-up pair without any external
// call. It keeps the whole pipeline constructible with no network
// dependency.
type TestTranslator struct{}

func (TestTranslator) Translate(ctx context.Context, title, abstract string) (string, error) {
	return fmt.Sprintf("タイトル：[テスト] %s\n要約：[テストモード] この要約はテストモードで生成されました。", title), nil
}
