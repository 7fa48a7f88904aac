package openai

import (
	"context"
	"errors"
	"strings"

	"daily-intel/internal/api"
	"daily-intel/internal/errs"
	"daily-intel/internal/store"
	"daily-intel/internal/summary"
	"daily-intel/internal/trace"
	"daily-intel/internal/types"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

type Summarizer struct {
	client   *api.Client
	cfg      store.SummaryConfig
	apiKey   string
	endpoint string
}

func New(client *api.Client, cfg store.SummaryConfig, apiKey string) *Summarizer {
	return &Summarizer{client: client, cfg: cfg, apiKey: apiKey, endpoint: defaultEndpoint}
}

// WithEndpoint points the summarizer at a compatible API
func (s *Summarizer) WithEndpoint(endpoint string) *Summarizer {
	s.endpoint = endpoint
	return s
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *Summarizer) Summarize(ctx context.Context, bundle *types.ReportBundle) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	if s.apiKey == "" {
		return "", errs.Config("OPENAI_API_KEY missing", nil)
	}

	body := map[string]any{
		"model": s.cfg.Model,
		"messages": []map[string]string{
			{"role": "system", "content": s.cfg.System},
			{"role": "user", "content": summary.Prompt(bundle)},
		},
		"temperature": s.cfg.Temperature,
		"max_tokens":  s.cfg.MaxTokens,
	}

	resp, err := s.client.POST(ctx, s.endpoint, body, map[string]string{
		"Authorization": "Bearer " + s.apiKey,
	})
	if err != nil {
		return "", err
	}

	var r chatResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}
	return strings.TrimSpace(r.Choices[0].Message.Content), nil
}
