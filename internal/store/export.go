// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/nerdswipe/pkg/types"
)

const exportLimit = 1000000

// ExportYAML writes the knowledge base to dataDir/index/export.yaml and
// returns the path. It supports the same filters as Search.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) (string, error) {
	articles, err := s.exportArticles(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(articles)
	if err != nil {
		return "", fmt.Errorf("marshaling YAML: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the knowledge base to dataDir/index/export.json and
// returns the path. It supports the same filters as Search.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) (string, error) {
	articles, err := s.exportArticles(ctx, opts)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.dataDir, indexDir, "export.json")
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshaling JSON: %w", err)
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (s *Store) exportArticles(ctx context.Context, opts QueryOptions) ([]types.Article, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = exportLimit
	}
	articles, err := s.Search(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	if articles == nil {
		articles = []types.Article{}
	}
	return articles, nil
}
