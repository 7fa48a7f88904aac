package claude

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

const (
	defaultEndpoint = "https://api.anthropic.com/v1/messages"
	defaultModel    = "claude-3-5-haiku-latest"
	apiVersion      = "2023-06-01"
)

type Summarizer struct {
	client   *api.Client
	cfg      store.SummaryConfig
	apiKey   string
	endpoint string
}

func New(client *api.Client, cfg store.SummaryConfig, apiKey string) *Summarizer {
	// The shipped default model belongs to the other provider
	if cfg.Model == "" || strings.HasPrefix(cfg.Model, "gpt") {
		cfg.Model = defaultModel
	}
	return &Summarizer{client: client, cfg: cfg, apiKey: apiKey, endpoint: defaultEndpoint}
}

func (s *Summarizer) WithEndpoint(endpoint string) *Summarizer {
	s.endpoint = endpoint
	return s
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (s *Summarizer) Summarize(ctx context.Context, bundle *types.ReportBundle) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
	defer span.End()

	if s.apiKey == "" {
		return "", errs.Config("ANTHROPIC_API_KEY missing", nil)
	}

	body := map[string]any{
		"model":       s.cfg.Model,
		"system":      s.cfg.System,
		"max_tokens":  s.cfg.MaxTokens,
		"temperature": s.cfg.Temperature,
		"messages": []map[string]string{
			{"role": "user", "content": summary.Prompt(bundle)},
		},
	}

	resp, err := s.client.POST(ctx, s.endpoint, body, map[string]string{
		"x-api-key":         s.apiKey,
		"anthropic-version": apiVersion,
	})
	if err != nil {
		return "", err
	}

	var r messagesResponse
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, block := range r.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
