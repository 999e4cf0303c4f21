package pipeline

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rset-labs/campus-assist/internal/config"
	"github.com/rset-labs/campus-assist/pkg/anthropic"
	"github.com/rset-labs/campus-assist/pkg/openrouter"
)

// LLM is the chat-completion contract the answer generator relies on.
type LLM interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewLLM builds the configured LLM backend.
func NewLLM(cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "openrouter":
		opts := []openrouter.Option{
			openrouter.WithModel(cfg.Model),
			openrouter.WithHTTPClient(&http.Client{
				Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
			}),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openrouter.WithBaseURL(cfg.BaseURL))
		}
		return &openrouterLLM{
			client:      openrouter.NewClient(cfg.Key, opts...),
			model:       cfg.Model,
			temperature: cfg.Temperature,
			maxTokens:   cfg.MaxTokens,
		}, nil
	case "anthropic":
		return &anthropicLLM{
			client:      anthropic.NewClient(cfg.Key),
			model:       cfg.Model,
			temperature: cfg.Temperature,
			maxTokens:   cfg.MaxTokens,
		}, nil
	default:
		return nil, eris.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}

type openrouterLLM struct {
	client      openrouter.Client
	model       string
	temperature float64
	maxTokens   int
}

func (l *openrouterLLM) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := l.client.ChatCompletion(ctx, openrouter.ChatCompletionRequest{
		Model: l.model,
		Messages: []openrouter.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: &l.temperature,
		MaxTokens:   &l.maxTokens,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", eris.New("llm: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}

type anthropicLLM struct {
	client      anthropic.Client
	model       string
	temperature float64
	maxTokens   int
}

func (l *anthropicLLM) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := l.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       l.model,
		MaxTokens:   int64(l.maxTokens),
		System:      system,
		Messages:    []anthropic.Message{{Role: "user", Content: user}},
		Temperature: &l.temperature,
	})
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if text == "" {
		return "", eris.New("llm: empty response")
	}
	return text, nil
}
