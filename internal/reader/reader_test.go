// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package reader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/nerdswipe/internal/jsonl"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

const sampleDump = `{"type":"SCHEMA","stream":"wikipedia","schema":{"properties":{}}}
{"type":"RECORD","stream":"wikipedia","record":{"abstract_info":{"title":"Nikola Tesla","abstract":"  Serbian-American inventor. ","url":"https://en.wikipedia.org/wiki/Nikola_Tesla"},"sublinks":[{"anchor":"Early years","link":"https://en.wikipedia.org/wiki/Nikola_Tesla#Early_years"}],"categories":[{"text":"Inventors","link":"https://en.wikipedia.org/wiki/Category:Inventors"},{"text":" ","link":""}],"externallinks":[{"title":"Tesla Museum","link":"https://tesla-museum.org"}]}}
{"type":"RECORD","stream":"wikipedia","record":{"abstract_info":{"title":"Leonardo da Vinci","abstract":"Polymath.","url":"https://en.wikipedia.org/wiki/Leonardo_da_Vinci"},"sublinks":[],"categories":[],"externallinks":[]}}
{"type":"STATE","value":{"offset":2}}
{"type":"RECORD","stream":"wikipedia","record":{"abstract_info":{"title":"","abstract":"orphan"}}}
`

func writeDump(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestWikipediaReaderRead(t *testing.T) {
	path := writeDump(t, t.TempDir(), "mini-wikipedia.output.jsonl", sampleDump)

	articles, err := NewWikipediaReader(path, zaptest.NewLogger(t)).Read(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2, "record without a title is skipped")

	tesla := articles[0]
	assert.Equal(t, "Nikola_Tesla", tesla.Key)
	assert.Equal(t, "Nikola Tesla", tesla.Title)
	assert.Equal(t, "Serbian-American inventor.", tesla.Abstract)
	assert.Equal(t, "https://en.wikipedia.org/wiki/Nikola_Tesla", tesla.URL)
	assert.Equal(t, []types.Category{{Text: "Inventors", Link: "https://en.wikipedia.org/wiki/Category:Inventors"}}, tesla.Categories)
	assert.Len(t, tesla.ExternalLinks, 1)
	assert.Len(t, tesla.Sublinks, 1)

	assert.Equal(t, "Leonardo_da_Vinci", articles[1].Key)
	assert.Empty(t, articles[1].Categories)
}

func TestWikipediaReaderMalformedLine(t *testing.T) {
	content := strings.Replace(sampleDump, `{"type":"STATE","value":{"offset":2}}`, `{"type":"STATE",`, 1)
	path := writeDump(t, t.TempDir(), "wikipedia.jsonl", content)

	articles, err := NewWikipediaReader(path, nil).Read(context.Background())
	require.Error(t, err)
	assert.Nil(t, articles)

	var mle *jsonl.MalformedLineError
	require.True(t, errors.As(err, &mle))
	assert.Equal(t, 4, mle.Line)
}

func TestWikipediaReaderBadRecordShape(t *testing.T) {
	path := writeDump(t, t.TempDir(), "wikipedia.jsonl", `{"type":"RECORD","record":{"abstract_info":"not an object"}}`)

	_, err := NewWikipediaReader(path, nil).Read(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding record 1")
}

func TestWikipediaReaderMissingFile(t *testing.T) {
	_, err := NewWikipediaReader(filepath.Join(t.TempDir(), "nope.jsonl"), nil).Read(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestWikipediaReaderEmptyFile(t *testing.T) {
	path := writeDump(t, t.TempDir(), "wikipedia.jsonl", "\n\n")

	articles, err := NewWikipediaReader(path, nil).Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestCreateReaders(t *testing.T) {
	tests := []struct {
		name      string
		cfg       types.ReaderConfig
		wantPaths []string
		errMsg    string
	}{
		{
			name: "matches files containing the record type",
			cfg: types.ReaderConfig{
				DataDir:     "data",
				OutputFiles: []string{"mini-wikipedia.output.jsonl", "movies.output.jsonl", "Wikipedia-full.jsonl"},
				RecordTypes: []types.RecordType{types.RecordWikipedia},
			},
			wantPaths: []string{
				filepath.Join("data", "mini-wikipedia.output.jsonl"),
				filepath.Join("data", "Wikipedia-full.jsonl"),
			},
		},
		{
			name: "absolute paths are kept",
			cfg: types.ReaderConfig{
				DataDir:     "data",
				OutputFiles: []string{"/srv/wikipedia.jsonl"},
				RecordTypes: []types.RecordType{"Wikipedia"},
			},
			wantPaths: []string{"/srv/wikipedia.jsonl"},
		},
		{
			name: "no record types means no readers",
			cfg: types.ReaderConfig{
				OutputFiles: []string{"wikipedia.jsonl"},
			},
		},
		{
			name: "unknown record type",
			cfg: types.ReaderConfig{
				RecordTypes: []types.RecordType{"imdb"},
			},
			errMsg: "unsupported record type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readers, err := CreateReaders(tt.cfg, nil)
			if tt.errMsg != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			require.NoError(t, err)

			var paths []string
			for _, r := range readers {
				wr, ok := r.(*WikipediaReader)
				require.True(t, ok)
				paths = append(paths, wr.Path)
			}
			assert.Equal(t, tt.wantPaths, paths)
		})
	}
}

type staticReader struct {
	articles []types.Article
	err      error
}

func (s staticReader) Read(context.Context) ([]types.Article, error) {
	return s.articles, s.err
}

func article(key string) types.Article {
	return types.Article{Key: key, Title: strings.ReplaceAll(key, "_", " ")}
}

func TestAllSourceReaderPreservesReaderOrder(t *testing.T) {
	var readers []Reader
	var want []string
	for i := 0; i < 8; i++ {
		var batch []types.Article
		for j := 0; j < 3; j++ {
			key := fmt.Sprintf("R%d_%d", i, j)
			batch = append(batch, article(key))
			want = append(want, key)
		}
		readers = append(readers, staticReader{articles: batch})
	}

	articles, err := NewAllSourceReader(readers...).Read(context.Background())
	require.NoError(t, err)

	var got []string
	for _, a := range articles {
		got = append(got, a.Key)
	}
	assert.Equal(t, want, got)
}

func TestAllSourceReaderFailure(t *testing.T) {
	boom := errors.New("boom")
	_, err := NewAllSourceReader(
		staticReader{articles: []types.Article{article("A")}},
		staticReader{err: boom},
	).Read(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestAllSourceReaderWithFiles(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "a-wikipedia.jsonl", sampleDump)
	writeDump(t, dir, "b-wikipedia.jsonl", `{"type":"RECORD","record":{"abstract_info":{"title":"Ada Lovelace"}}}`)

	readers, err := CreateReaders(types.ReaderConfig{
		DataDir:     dir,
		OutputFiles: []string{"a-wikipedia.jsonl", "b-wikipedia.jsonl"},
		RecordTypes: []types.RecordType{types.RecordWikipedia},
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	idx, err := LoadIndex(context.Background(), NewAllSourceReader(readers...))
	require.NoError(t, err)
	assert.Equal(t, []string{"Nikola_Tesla", "Leonardo_da_Vinci", "Ada_Lovelace"}, idx.Keys())
}

func TestIndex(t *testing.T) {
	replacement := article("B")
	replacement.Abstract = "second"
	idx := NewIndex([]types.Article{article("A"), article("B"), replacement, article("C")})

	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, []string{"A", "B", "C"}, idx.Keys())

	first, err := idx.FirstKey(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", first)

	got, ok, err := idx.Lookup(context.Background(), "B")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", got.Abstract)

	_, ok, err = idx.Lookup(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	empty := NewIndex(nil)
	first, err = empty.FirstKey(context.Background())
	require.NoError(t, err)
	assert.Empty(t, first)
}
