// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package antirecommend

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nerdswipe/pkg/types"
)

// Graph is an anti-recommendation knowledge graph: each record key maps to
// the keys of its anti-recommendations, in preference order.
type Graph map[string][]string

// LoadGraph reads a Graph from a YAML mapping of key to key list.
func LoadGraph(path string) (Graph, error) {
	if path == "" {
		return nil, fmt.Errorf("anti-recommendation graph file not configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading anti-recommendation graph: %w", err)
	}
	var g Graph
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing anti-recommendation graph %s: %w", path, err)
	}
	if g == nil {
		g = Graph{}
	}
	return g, nil
}

// GraphRecommender serves anti-recommendations along a path through a
// Graph. The path is built from the first requested key and covers every
// known record; each Generate call consumes one step. A new path is built
// once the current one is exhausted.
type GraphRecommender struct {
	graph  Graph
	keys   []string
	logger *zap.Logger

	mu   sync.Mutex
	path []types.AntiRecommendationGraph
}

// NewGraphRecommender builds a recommender over g. keys lists every record
// key the path must visit.
func NewGraphRecommender(g Graph, keys []string, logger *zap.Logger) *GraphRecommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphRecommender{graph: g, keys: slices.Clone(keys), logger: logger}
}

// Generate returns the next step of the path.
func (r *GraphRecommender) Generate(ctx context.Context, recordKey string) ([]types.AntiRecommendation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.path) == 0 {
		r.path = BuildPath(r.graph, r.keys, recordKey)
		r.logger.Debug("built anti-recommendation path",
			zap.String("head", recordKey), zap.Int("steps", len(r.path)))
	}
	if len(r.path) == 0 {
		return nil, nil
	}

	step := r.path[0]
	r.path = r.path[1:]
	return step.AntiRecommendations, nil
}

// BuildPath walks g from head until every key has been visited. From each
// head it records the head's anti-recommendations and moves to the first
// one not yet visited. A head with no anti-recommendations is paired with
// the next unvisited key in sorted order. When no unvisited
// anti-recommendation remains, the walk restarts from the next key in
// sorted order.
func BuildPath(g Graph, keys []string, head string) []types.AntiRecommendationGraph {
	queue := slices.Clone(keys)
	slices.Sort(queue)

	var (
		path    []types.AntiRecommendationGraph
		visited = make(map[string]bool)
	)

	for len(queue) > 0 {
		visited[head] = true
		if i := slices.Index(queue, head); i >= 0 {
			queue = slices.Delete(queue, i, i+1)
		}

		if antiKeys := g[head]; len(antiKeys) > 0 {
			path = append(path, step(head, antiKeys))
			head = ""
			for _, k := range antiKeys {
				if !visited[k] {
					head = k
					break
				}
			}
		} else if len(queue) > 0 {
			path = append(path, step(head, queue[:1]))
			queue = queue[1:]
			head = ""
		}

		if head == "" && len(queue) > 0 {
			head = queue[0]
			queue = queue[1:]
		}
	}
	return path
}

func step(recordKey string, antiKeys []string) types.AntiRecommendationGraph {
	recs := make([]types.AntiRecommendation, len(antiKeys))
	for i, k := range antiKeys {
		recs[i] = types.AntiRecommendation{Key: k, URL: types.WikipediaBaseURL + k}
	}
	return types.AntiRecommendationGraph{RecordKey: recordKey, AntiRecommendations: recs}
}
