// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package antirecommend generates anti-recommendations: records that are
// dissimilar to a given record yet surprisingly related to it.
package antirecommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/nerdswipe/internal/metrics"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

// AntiRecommender generates anti-recommendations of one record.
type AntiRecommender interface {
	Generate(ctx context.Context, recordKey string) ([]types.AntiRecommendation, error)
}

// modelResponseChunks is the number of " - " separated fields in one
// line of a model response: number, title, URL.
const modelResponseChunks = 3

// ParseModelResponse extracts anti-recommendations from a model answer in
// the "Number - Title - URL" line format. Lines that do not split into
// exactly three chunks are ignored, as are lines with a blank title. The URL
// is kept only when it points at Wikipedia.
func ParseModelResponse(text string) []types.AntiRecommendation {
	var out []types.AntiRecommendation
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		chunks := strings.Split(strings.TrimSpace(line), "-")
		if len(chunks) != modelResponseChunks {
			continue
		}

		title := strings.TrimSpace(chunks[1])
		if title == "" {
			continue
		}

		var url string
		if strings.Contains(chunks[2], string(types.RecordWikipedia)) {
			url = strings.TrimSpace(chunks[2])
		}
		out = append(out, types.AntiRecommendation{Key: types.RecordKey(title), URL: url})
	}
	return out
}

// Null produces no anti-recommendations. It stands in when no backend is
// configured.
type Null struct{}

// Generate returns nothing.
func (Null) Generate(context.Context, string) ([]types.AntiRecommendation, error) {
	return nil, nil
}

// New selects the backend named by cfg.Type. keys lists every known record
// key in order; the arkg backend walks them. An openai backend without an
// API key degrades to Null.
func New(cfg types.RecommenderConfig, keys []string, logger *zap.Logger) (AntiRecommender, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch types.AntiRecommenderType(strings.ToLower(string(cfg.Type))) {
	case types.AntiRecommenderOpenAI:
		if cfg.APIKey == "" {
			logger.Warn("no OpenAI API key configured, anti-recommendations disabled")
			return Null{}, nil
		}
		return Instrument(string(types.AntiRecommenderOpenAI), NewLLM(cfg.AIConfig, logger)), nil
	case types.AntiRecommenderARKG:
		graph, err := LoadGraph(cfg.GraphFile)
		if err != nil {
			return nil, err
		}
		return Instrument(string(types.AntiRecommenderARKG), NewGraphRecommender(graph, keys, logger)), nil
	case "":
		return Null{}, nil
	default:
		return nil, fmt.Errorf("unsupported anti-recommender type %q", cfg.Type)
	}
}

// instrumented counts generations per backend.
type instrumented struct {
	backend string
	next    AntiRecommender
}

// Instrument wraps r so each Generate call is counted under backend.
func Instrument(backend string, r AntiRecommender) AntiRecommender {
	return instrumented{backend: backend, next: r}
}

func (i instrumented) Generate(ctx context.Context, recordKey string) ([]types.AntiRecommendation, error) {
	recs, err := i.next.Generate(ctx, recordKey)
	metrics.RecordRecommendation(i.backend, err)
	return recs, err
}
