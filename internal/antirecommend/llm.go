// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package antirecommend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/nerdswipe/internal/httputil"
	"github.com/pdiddy/nerdswipe/internal/metrics"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

var promptTmpl = template.Must(template.New("anti-recommendation").Parse(`Use the following pieces of context to answer the question at the end.
If you don't know the answer, just say that you don't know, don't try to make up an answer.
Keep the answer as concise as possible.
Question: What are {{.Count}} Wikipedia articles on the featured list that are dissimilar but surprisingly similar to the Wikipedia article {{.Title}}? Give each answer on a new line, and in the format: Number - Title - URL.
Helpful Answer:
`))

// promptCount is how many anti-recommendations the model is asked for.
const promptCount = 10

// LLM asks an OpenAI-compatible chat completions API for
// anti-recommendations.
type LLM struct {
	cfg     types.AIConfig
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// NewLLM builds an LLM recommender. Zero config fields take defaults.
func NewLLM(cfg types.AIConfig, logger *zap.Logger) *LLM {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), max(1, cfg.RequestsPerMinute/5))
	}

	return &LLM{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger.With(zap.String("model", cfg.Model)),
	}
}

// Generate renders the prompt for recordKey, calls the model, and parses
// its answer.
func (l *LLM) Generate(ctx context.Context, recordKey string) ([]types.AntiRecommendation, error) {
	prompt, err := renderPrompt(recordKey)
	if err != nil {
		return nil, fmt.Errorf("rendering prompt: %w", err)
	}

	text, err := l.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	recs := ParseModelResponse(text)
	l.logger.Debug("generated anti-recommendations",
		zap.String("record_key", recordKey), zap.Int("count", len(recs)))
	return recs, nil
}

func (l *LLM) complete(ctx context.Context, prompt string) (string, error) {
	waitStart := time.Now()
	if err := l.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("waiting for rate limiter: %w", err)
	}
	metrics.RecordRateLimiterWait(l.cfg.Model, time.Since(waitStart))

	body, err := json.Marshal(chatRequest{
		Model:    l.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := strings.TrimRight(l.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+l.cfg.APIKey)
	if l.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", l.cfg.UserAgent)
	}

	start := time.Now()
	resp, err := httputil.DoWithRetry(ctx, l.client, req, l.cfg.MaxRetries, l.logger)
	if err != nil {
		metrics.RecordModelRequest(l.cfg.Model, 0, time.Since(start))
		return "", fmt.Errorf("calling chat completions API: %w", err)
	}
	defer resp.Body.Close()
	metrics.RecordModelRequest(l.cfg.Model, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat completions API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("decoding chat completions response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return "", errors.New("chat completions API returned no choices")
	}
	return cr.Choices[0].Message.Content, nil
}

func renderPrompt(recordKey string) (string, error) {
	var buf bytes.Buffer
	err := promptTmpl.Execute(&buf, struct {
		Count int
		Title string
	}{Count: promptCount, Title: strings.ReplaceAll(recordKey, "_", " ")})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
