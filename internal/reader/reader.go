// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package reader loads record dumps from disk and decodes them into Articles.
package reader

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/nerdswipe/internal/jsonl"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

// Reader reads records from a source and returns them as Articles.
type Reader interface {
	Read(ctx context.Context) ([]types.Article, error)
}

// WikipediaReader reads a Wikipedia abstracts dump in JSONL form.
type WikipediaReader struct {
	Path   string
	Logger *zap.Logger
}

// NewWikipediaReader returns a reader for the dump at path.
func NewWikipediaReader(path string, logger *zap.Logger) *WikipediaReader {
	return &WikipediaReader{Path: path, Logger: logger}
}

// Read loads the whole file and decodes every RECORD payload. A malformed
// line anywhere in the file fails the read.
func (r *WikipediaReader) Read(ctx context.Context) ([]types.Article, error) {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", r.Path, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payloads, err := jsonl.Extract(string(data))
	if err != nil {
		return nil, fmt.Errorf("extracting records from %s: %w", r.Path, err)
	}

	articles := make([]types.Article, 0, len(payloads))
	for i, payload := range payloads {
		var rec types.WikipediaRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, fmt.Errorf("decoding record %d in %s: %w", i+1, r.Path, err)
		}

		article := rec.Article()
		if article.Key == "" {
			r.logger().Debug("skipping record without title", zap.String("path", r.Path), zap.Int("record", i+1))
			continue
		}
		articles = append(articles, article)
	}

	r.logger().Debug("read wikipedia dump",
		zap.String("path", r.Path),
		zap.Int("records", len(payloads)),
		zap.Int("articles", len(articles)))

	return articles, nil
}

func (r *WikipediaReader) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

// CreateReaders returns one reader per configured output file whose name
// contains an enabled record type. Files are resolved under cfg.DataDir.
func CreateReaders(cfg types.ReaderConfig, logger *zap.Logger) ([]Reader, error) {
	var readers []Reader
	for _, rt := range cfg.RecordTypes {
		switch types.RecordType(strings.ToLower(string(rt))) {
		case types.RecordWikipedia:
			for _, name := range cfg.OutputFiles {
				if !strings.Contains(strings.ToLower(name), string(types.RecordWikipedia)) {
					continue
				}
				path := name
				if !filepath.IsAbs(path) && cfg.DataDir != "" {
					path = filepath.Join(cfg.DataDir, name)
				}
				readers = append(readers, NewWikipediaReader(path, logger))
			}
		default:
			return nil, fmt.Errorf("unsupported record type %q", rt)
		}
	}
	return readers, nil
}

// AllSourceReader multiplexes several readers. Readers run concurrently;
// their articles are concatenated in reader order.
type AllSourceReader struct {
	readers []Reader
}

// NewAllSourceReader wraps readers.
func NewAllSourceReader(readers ...Reader) *AllSourceReader {
	return &AllSourceReader{readers: readers}
}

// Read returns the articles of every reader. The first failing reader
// cancels the rest.
func (a *AllSourceReader) Read(ctx context.Context) ([]types.Article, error) {
	results := make([][]types.Article, len(a.readers))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range a.readers {
		g.Go(func() error {
			articles, err := r.Read(gctx)
			if err != nil {
				return err
			}
			results[i] = articles
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return slices.Concat(results...), nil
}

// Index is an in-memory, insertion-ordered collection of Articles keyed by
// record key. A later article with the same key replaces the earlier one
// but keeps its position.
type Index struct {
	keys     []string
	articles map[string]types.Article
}

// NewIndex builds an Index from articles.
func NewIndex(articles []types.Article) *Index {
	idx := &Index{articles: make(map[string]types.Article, len(articles))}
	for _, a := range articles {
		if _, seen := idx.articles[a.Key]; !seen {
			idx.keys = append(idx.keys, a.Key)
		}
		idx.articles[a.Key] = a
	}
	return idx
}

// LoadIndex reads all articles from r into an Index.
func LoadIndex(ctx context.Context, r Reader) (*Index, error) {
	articles, err := r.Read(ctx)
	if err != nil {
		return nil, err
	}
	return NewIndex(articles), nil
}

// Lookup returns the article stored under key.
func (idx *Index) Lookup(_ context.Context, key string) (types.Article, bool, error) {
	a, ok := idx.articles[key]
	return a, ok, nil
}

// FirstKey returns the key of the first article, or "" when empty.
func (idx *Index) FirstKey(_ context.Context) (string, error) {
	if len(idx.keys) == 0 {
		return "", nil
	}
	return idx.keys[0], nil
}

// Keys returns all keys in insertion order.
func (idx *Index) Keys() []string {
	return slices.Clone(idx.keys)
}

// Len returns the number of distinct articles.
func (idx *Index) Len() int {
	return len(idx.keys)
}
