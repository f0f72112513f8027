package enrich

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAITranslator runs the translation against an OpenAI-compatible
// API. The key is taken from OPENAI_API_KEY.
type OpenAITranslator struct {
	llm *openai.LLM
}

func NewOpenAITranslator(model string) (*OpenAITranslator, error) {
	if model == "" {
		model = "gpt-4o-mini"
	}

	llm, err := openai.New(openai.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}

	return &OpenAITranslator{llm: llm}, nil
}

func (o *OpenAITranslator) Translate(ctx context.Context, title, abstract string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt(title, abstract)),
	}

	resp, err := o.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(0.3),
		llms.WithMaxTokens(1000),
	)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion returned no choices")
	}

	return resp.Choices[0].Content, nil
}
