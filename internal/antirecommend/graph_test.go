// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package antirecommend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nerdswipe/pkg/types"
)

func stepKeys(path []types.AntiRecommendationGraph) map[string][]string {
	out := make(map[string][]string, len(path))
	for _, s := range path {
		var keys []string
		for _, r := range s.AntiRecommendations {
			keys = append(keys, r.Key)
		}
		out[s.RecordKey] = keys
	}
	return out
}

func heads(path []types.AntiRecommendationGraph) []string {
	var out []string
	for _, s := range path {
		out = append(out, s.RecordKey)
	}
	return out
}

func TestBuildPathFollowsGraph(t *testing.T) {
	g := Graph{
		"A": {"C", "B"},
		"C": {"A", "D"},
		"D": {"B"},
	}
	path := BuildPath(g, []string{"D", "C", "B", "A"}, "A")

	// B is reached last with nothing left to pair it with.
	assert.Equal(t, []string{"A", "C", "D"}, heads(path))
	assert.Equal(t, []string{"C", "B"}, stepKeys(path)["A"])
	assert.Equal(t, []string{"A", "D"}, stepKeys(path)["C"])
}

func TestBuildPathFallsBackToSortedKeys(t *testing.T) {
	path := BuildPath(Graph{}, []string{"C", "B", "A", "D"}, "A")

	// A pairs with B, then the walk restarts at C which pairs with D.
	assert.Equal(t, []string{"A", "C"}, heads(path))
	assert.Equal(t, map[string][]string{"A": {"B"}, "C": {"D"}}, stepKeys(path))
}

func TestBuildPathURLs(t *testing.T) {
	path := BuildPath(Graph{"A": {"Nikola_Tesla"}}, []string{"A", "Nikola_Tesla"}, "A")
	require.NotEmpty(t, path)
	assert.Equal(t, types.WikipediaBaseURL+"Nikola_Tesla", path[0].AntiRecommendations[0].URL)
}

func TestBuildPathNoKeys(t *testing.T) {
	assert.Empty(t, BuildPath(Graph{"A": {"B"}}, nil, "A"))
}

func TestGraphRecommenderServesStepsInOrder(t *testing.T) {
	g := Graph{"A": {"B"}, "B": {"C"}, "C": {"A"}}
	r := NewGraphRecommender(g, []string{"A", "B", "C"}, nil)
	ctx := context.Background()

	var got []string
	for range 3 {
		recs, err := r.Generate(ctx, "A")
		require.NoError(t, err)
		require.Len(t, recs, 1)
		got = append(got, recs[0].Key)
	}
	assert.Equal(t, []string{"B", "C", "A"}, got)

	// Exhausted path is rebuilt from the requested key.
	recs, err := r.Generate(ctx, "B")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "C", recs[0].Key)
}

func TestGraphRecommenderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGraphRecommender(Graph{}, []string{"A"}, nil).Generate(ctx, "A")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadGraph(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arkg.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
Nikola_Tesla:
  - Leonardo_da_Vinci
  - Laplace's_demon
Leonardo_da_Vinci: [Nikola_Tesla]
`), 0o644))

	g, err := LoadGraph(path)
	require.NoError(t, err)
	assert.Equal(t, Graph{
		"Nikola_Tesla":      {"Leonardo_da_Vinci", "Laplace's_demon"},
		"Leonardo_da_Vinci": {"Nikola_Tesla"},
	}, g)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	g, err = LoadGraph(empty)
	require.NoError(t, err)
	assert.Empty(t, g)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("- just\n- a list\n"), 0o644))
	_, err = LoadGraph(bad)
	assert.Error(t, err)

	_, err = LoadGraph(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
