package enrich

import "fmt"

const systemPrompt = "あなたは学術論文の専門家です。英語の学術論文のタイトルと要約を日本語に翻訳してください。簡潔かつ正確に翻訳してください。"

func userPrompt(title, abstract string) string {
	return fmt.Sprintf(`タイトル：%s
アブストラクト：%s

以下の形式で必ず回答してください：
タイトル：[論文タイトルの日本語訳]
要約：[アブストラクトの日本語要約]`, title, abstract)
}
