// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/nerdswipe/pkg/types"
)

// QueryOptions holds parameters for knowledge base searches.
type QueryOptions struct {
	// Query is the FTS4 full-text search string over title and abstract.
	Query string

	// Category keeps only articles with a category whose text matches
	// exactly.
	Category string

	// MaxResults limits result count. Zero uses the store default.
	MaxResults int
}

// IsEmpty reports whether the query has no search terms or filters.
func (q QueryOptions) IsEmpty() bool {
	return q.Query == "" && q.Category == ""
}

// Search queries the knowledge base with optional full-text search and a
// category filter. Results follow ingest order.
func (s *Store) Search(ctx context.Context, opts QueryOptions) ([]types.Article, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = s.maxResults
	}

	var (
		qb     strings.Builder
		args   []any
		useFTS = opts.Query != ""
	)

	if useFTS {
		qb.WriteString(
			`SELECT a.key, a.title, a.abstract, a.url, a.categories, a.external_links, a.sublinks
			FROM articles_fts
			JOIN articles a ON a.rowid = articles_fts.docid
			WHERE articles_fts MATCH ?`)
		args = append(args, opts.Query)
	} else {
		qb.WriteString(
			`SELECT a.key, a.title, a.abstract, a.url, a.categories, a.external_links, a.sublinks
			FROM articles a
			WHERE 1=1`)
	}

	if opts.Category != "" {
		qb.WriteString(` AND EXISTS (SELECT 1 FROM json_each(a.categories) WHERE json_extract(value, '$.text') = ?)`)
		args = append(args, opts.Category)
	}

	qb.WriteString(` ORDER BY a.rowid`)

	qb.WriteString(` LIMIT ?`)
	args = append(args, maxResults)

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge base: %w", err)
	}
	defer rows.Close()

	var results []types.Article
	for rows.Next() {
		var (
			key string
			row articleRow
		)
		if err := rows.Scan(&key, &row.title, &row.abstract, &row.url,
			&row.categories, &row.externalLinks, &row.sublinks); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		a, err := row.decode(key)
		if err != nil {
			return nil, err
		}
		results = append(results, a)
	}

	return results, rows.Err()
}
