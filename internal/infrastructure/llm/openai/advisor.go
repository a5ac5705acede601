// Package openai provides an LLM-backed selector advisor. It is consulted
// only after every planned candidate selector has failed, and only on
// requests that opt in.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"heyq/internal/application/port/output"
)

var _ output.SelectorAdvisor = (*Advisor)(nil)

type Advisor struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	logger  output.LoggerPort
}

type Config struct {
	APIKey      string
	Model       string
	BaseURL     string
	CallsPerMin float64
	Logger      output.LoggerPort
}

// New returns nil when no API key is configured; the executor treats a nil
// advisor as "not available".
func New(cfg Config) *Advisor {
	if cfg.APIKey == "" {
		return nil
	}

	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	if cfg.CallsPerMin <= 0 {
		cfg.CallsPerMin = 10
	}

	return &Advisor{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		limiter: rate.NewLimiter(rate.Limit(cfg.CallsPerMin/60.0), 1),
		logger:  cfg.Logger,
	}
}

const systemPrompt = `You repair broken CSS selectors for a browser automation tool.
Given the action, the target element description, the selectors that already failed,
and the visible page text, reply with ONLY a JSON array of up to 3 CSS selector
strings likely to match the target. No prose, no markdown fences.`

func (a *Advisor) Suggest(ctx context.Context, req output.SelectorSuggestion) ([]string, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	user := fmt.Sprintf("Action: %s\nTarget: %s\nFailed selectors: %s\nPage text:\n%s",
		req.ActionKind, req.Target, strings.Join(req.Failed, ", "), clip(req.PageText, 6000))

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, fmt.Errorf("selector suggestion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	selectors, err := parseSelectors(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	if a.logger != nil {
		a.logger.Debug("advisor suggested selectors", "target", req.Target, "count", len(selectors))
	}
	return selectors, nil
}

// parseSelectors tolerates markdown fences around the JSON array since some
// models add them despite instructions.
func parseSelectors(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var selectors []string
	if err := json.Unmarshal([]byte(content), &selectors); err != nil {
		return nil, fmt.Errorf("unparseable advisor reply: %w", err)
	}

	out := selectors[:0]
	for _, s := range selectors {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out, nil
}

func clip(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
