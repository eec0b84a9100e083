package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"FeedDigest/internal/config"
	"FeedDigest/internal/ports"
)

const systemPrompt = "You are a precise bilingual scientific translator (EN->ZH-CN). Return only the translation."

// OpenAITranslator translates batches of English strings into Simplified
// Chinese through an OpenAI-compatible chat-completions API. The contract
// is passthrough: a missing key or a failed request yields the original
// string for that position, never an error.
type OpenAITranslator struct {
	baseURL      string
	model        string
	apiKey       string
	sleepBetween time.Duration
	httpClient   *http.Client
	logger       *slog.Logger
}

var _ ports.Translator = (*OpenAITranslator)(nil)

// NewOpenAI builds a translator from configuration; logger may be nil.
func NewOpenAI(cfg config.OpenAIConfig, timeout time.Duration, logger *slog.Logger) *OpenAITranslator {
	return &OpenAITranslator{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		sleepBetween: time.Duration(cfg.SleepBetweenMS) * time.Millisecond,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Translate maps each input to its translation, preserving order and
// length. Empty inputs map to empty outputs without a request.
func (t *OpenAITranslator) Translate(ctx context.Context, texts []string) []string {
	out := make([]string, 0, len(texts))
	if t.apiKey == "" {
		return append(out, texts...)
	}

	for i, text := range texts {
		if text == "" {
			out = append(out, "")
			continue
		}

		translated, err := t.translateOne(ctx, text)
		if err != nil {
			if t.logger != nil {
				t.logger.Warn("translation failed, keeping original", "error", err)
			}
			translated = text
		}
		out = append(out, translated)

		if t.sleepBetween > 0 && i < len(texts)-1 {
			time.Sleep(t.sleepBetween)
		}
	}
	return out
}

func (t *OpenAITranslator) translateOne(ctx context.Context, text string) (string, error) {
	prompt := "Please translate the following English text into Simplified Chinese accurately, without explanations or bracketed notes:\n\n" + text

	body, err := json.Marshal(map[string]any{
		"model": t.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %s", resp.Status)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
