// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package antirecommend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/nerdswipe/internal/httputil"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

func init() {
	httputil.RetryBaseDelay = time.Millisecond
}

func chatServer(t *testing.T, handler func(w http.ResponseWriter, req chatRequest)) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func reply(w http.ResponseWriter, content string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{{"message": map[string]string{"role": "assistant", "content": content}}},
	})
}

func TestLLMGenerate(t *testing.T) {
	ts := chatServer(t, func(w http.ResponseWriter, req chatRequest) {
		assert.Equal(t, "gpt-test", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Contains(t, req.Messages[0].Content, "Wikipedia article Nikola Tesla?")
		}
		reply(w, modelResponse)
	})

	llm := NewLLM(types.AIConfig{BaseURL: ts.URL + "/v1/", Model: "gpt-test", APIKey: "sk-test"}, zaptest.NewLogger(t))
	recs, err := llm.Generate(context.Background(), "Nikola_Tesla")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Leonardo_da_Vinci", recs[0].Key)
}

func TestLLMRetriesRateLimit(t *testing.T) {
	var calls int32
	ts := chatServer(t, func(w http.ResponseWriter, _ chatRequest) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		reply(w, "1 - Voyager Golden Record - https://en.wikipedia.org/wiki/Voyager_Golden_Record")
	})

	llm := NewLLM(types.AIConfig{BaseURL: ts.URL + "/v1", APIKey: "sk-test", MaxRetries: 2}, nil)
	recs, err := llm.Generate(context.Background(), "Nikola_Tesla")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestLLMErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler func(w http.ResponseWriter, req chatRequest)
		wantErr string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ chatRequest) {
				http.Error(w, "model overloaded", http.StatusInternalServerError)
			},
			wantErr: "returned 500: model overloaded",
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, _ chatRequest) {
				w.Write([]byte(`{"choices": []}`))
			},
			wantErr: "no choices",
		},
		{
			name: "bad body",
			handler: func(w http.ResponseWriter, _ chatRequest) {
				w.Write([]byte(`not json`))
			},
			wantErr: "decoding chat completions response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := chatServer(t, tt.handler)
			llm := NewLLM(types.AIConfig{BaseURL: ts.URL + "/v1", APIKey: "sk-test"}, nil)
			_, err := llm.Generate(context.Background(), "Nikola_Tesla")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLLMDefaults(t *testing.T) {
	llm := NewLLM(types.AIConfig{RequestsPerMinute: 30}, nil)
	assert.Equal(t, defaultBaseURL, llm.cfg.BaseURL)
	assert.Equal(t, defaultModel, llm.cfg.Model)
	assert.Equal(t, defaultTimeout, llm.client.Timeout)
	assert.InDelta(t, 0.5, float64(llm.limiter.Limit()), 1e-9)
}

func TestRenderPrompt(t *testing.T) {
	p, err := renderPrompt("Laplace's_demon")
	require.NoError(t, err)
	assert.Contains(t, p, "10 Wikipedia articles")
	assert.Contains(t, p, "Wikipedia article Laplace's demon?")
	assert.True(t, strings.HasSuffix(p, "Helpful Answer:\n"))
}
