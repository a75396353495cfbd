// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package antirecommend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/nerdswipe/pkg/types"
)

const modelResponse = `1 - Leonardo da Vinci - https://en.wikipedia.org/wiki/Leonardo_da_Vinci
2 - Laplace's demon - https://en.wikipedia.org/wiki/Laplace%27s_demon
Here are some more ideas:
3 - Voyager Golden Record - https://example.com/voyager
4 - Too - many - dashes - here
5 -  - https://en.wikipedia.org/wiki/Blank`

func TestParseModelResponse(t *testing.T) {
	got := ParseModelResponse(modelResponse)
	want := []types.AntiRecommendation{
		{Key: "Leonardo_da_Vinci", URL: "https://en.wikipedia.org/wiki/Leonardo_da_Vinci"},
		{Key: "Laplace's_demon", URL: "https://en.wikipedia.org/wiki/Laplace%27s_demon"},
		{Key: "Voyager_Golden_Record"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseModelResponse mismatch (-want +got):\n%s", diff)
	}
}

func TestParseModelResponseEmpty(t *testing.T) {
	assert.Empty(t, ParseModelResponse(""))
	assert.Empty(t, ParseModelResponse("I don't know."))
}

func TestNull(t *testing.T) {
	recs, err := Null{}.Generate(context.Background(), "Nikola_Tesla")
	require.NoError(t, err)
	assert.Nil(t, recs)
}

func TestNew(t *testing.T) {
	graphFile := filepath.Join(t.TempDir(), "arkg.yaml")
	require.NoError(t, os.WriteFile(graphFile, []byte("Nikola_Tesla: [Leonardo_da_Vinci]\n"), 0o644))

	tests := []struct {
		name    string
		cfg     types.RecommenderConfig
		want    string
		wantErr string
	}{
		{name: "empty type is null", cfg: types.RecommenderConfig{}, want: "null"},
		{
			name: "openai without key is null",
			cfg:  types.RecommenderConfig{Type: types.AntiRecommenderOpenAI},
			want: "null",
		},
		{
			name: "openai with key",
			cfg: types.RecommenderConfig{
				Type:     "OpenAI",
				AIConfig: types.AIConfig{APIKey: "sk-test"},
			},
			want: "openai",
		},
		{
			name: "arkg",
			cfg:  types.RecommenderConfig{Type: types.AntiRecommenderARKG, GraphFile: graphFile},
			want: "arkg",
		},
		{
			name:    "arkg without graph file",
			cfg:     types.RecommenderConfig{Type: types.AntiRecommenderARKG},
			wantErr: "not configured",
		},
		{
			name:    "unknown type",
			cfg:     types.RecommenderConfig{Type: "collaborative"},
			wantErr: "unsupported anti-recommender type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.cfg, []string{"Nikola_Tesla"}, zaptest.NewLogger(t))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)

			switch tt.want {
			case "null":
				assert.IsType(t, Null{}, r)
			default:
				inst, ok := r.(instrumented)
				require.True(t, ok, "expected instrumented recommender, got %T", r)
				assert.Equal(t, tt.want, inst.backend)
			}
		})
	}
}
