package enrich

import (
	"context"
	"fmt"

	"github.com/ollama/ollama/api"
)

// OllamaTranslator runs the translation against a local Ollama server.
type OllamaTranslator struct {
	client *api.Client
	model  string
}

// NewOllamaTranslator builds a client from OLLAMA_HOST, as the api
// package documents.
func NewOllamaTranslator(model string) (*OllamaTranslator, error) {
	if model == "" {
		return nil, fmt.Errorf("ollama model cannot be empty")
	}

	client, err := api.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("create ollama client: %w", err)
	}

	return &OllamaTranslator{
		client: client,
		model:  model,
	}, nil
}

func (o *OllamaTranslator) Translate(ctx context.Context, title, abstract string) (string, error) {
	req := &api.GenerateRequest{
		Model:  o.model,
		System: systemPrompt,
		Prompt: userPrompt(title, abstract),
		Stream: new(bool),
	}

	var output string
	respFunc := func(resp api.GenerateResponse) error {
		if resp.Done {
			output = resp.Response
		}
		return nil
	}

	if err := o.client.Generate(ctx, req, respFunc); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}

	return output, nil
}
