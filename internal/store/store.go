// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists Articles in a SQLite knowledge base with a
// full-text index over titles and abstracts.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/nerdswipe/pkg/types"
)

const (
	indexDir = "index"
	dbFile   = "nerdswipe.db"
)

// ErrNotFound is returned when no article has the requested key.
var ErrNotFound = errors.New("article not found")

// Store manages the knowledge base SQLite database.
type Store struct {
	db         *sql.DB
	dataDir    string
	maxResults int
}

// NewStore opens or creates the database at dataDir/index/nerdswipe.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.DataDir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	s := &Store{
		db:         db,
		dataDir:    cfg.DataDir,
		maxResults: maxResults,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS articles (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			key TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			abstract TEXT,
			url TEXT,
			categories TEXT,
			external_links TEXT,
			sublinks TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS ingest_runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			inserted INTEGER NOT NULL,
			updated INTEGER NOT NULL,
			unchanged INTEGER NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS anti_recommendation_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			record_key TEXT NOT NULL,
			anti_recommendation_keys TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_record_key ON anti_recommendation_history(record_key)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS4 external-content table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='articles_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE articles_fts USING fts4(content="articles", title, abstract)`,
			`CREATE TRIGGER articles_bu BEFORE UPDATE ON articles BEGIN
				DELETE FROM articles_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER articles_bd BEFORE DELETE ON articles BEGIN
				DELETE FROM articles_fts WHERE docid = old.rowid;
			END`,
			`CREATE TRIGGER articles_au AFTER UPDATE ON articles BEGIN
				INSERT INTO articles_fts(docid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
			`CREATE TRIGGER articles_ai AFTER INSERT ON articles BEGIN
				INSERT INTO articles_fts(docid, title, abstract) VALUES (new.rowid, new.title, new.abstract);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}

// Progress receives one tick per processed article. It matches
// progressbar.ProgressBar.
type Progress interface {
	Add(num int) error
}

// IngestSummary holds counts from one ingest run.
type IngestSummary struct {
	RunID     string
	Inserted  int
	Updated   int
	Unchanged int
}

// Total returns the number of articles processed.
func (s IngestSummary) Total() int {
	return s.Inserted + s.Updated + s.Unchanged
}

// Ingest upserts articles in a single transaction. Articles whose stored
// row is identical are counted as unchanged. Existing articles keep their
// first-ingested position. progress may be nil.
func (s *Store) Ingest(ctx context.Context, source string, articles []types.Article, progress Progress) (IngestSummary, error) {
	summary := IngestSummary{RunID: uuid.NewString()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range articles {
		row, err := encodeArticle(a)
		if err != nil {
			return summary, fmt.Errorf("encoding article %s: %w", a.Key, err)
		}

		var existing articleRow
		err = tx.QueryRowContext(ctx,
			`SELECT title, abstract, url, categories, external_links, sublinks FROM articles WHERE key = ?`, a.Key,
		).Scan(&existing.title, &existing.abstract, &existing.url,
			&existing.categories, &existing.externalLinks, &existing.sublinks)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = tx.ExecContext(ctx,
				`INSERT INTO articles (key, title, abstract, url, categories, external_links, sublinks)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				a.Key, row.title, row.abstract, row.url, row.categories, row.externalLinks, row.sublinks)
			if err != nil {
				return summary, fmt.Errorf("inserting article %s: %w", a.Key, err)
			}
			summary.Inserted++
		case err != nil:
			return summary, fmt.Errorf("looking up article %s: %w", a.Key, err)
		case existing == row:
			summary.Unchanged++
		default:
			_, err = tx.ExecContext(ctx,
				`UPDATE articles SET title=?, abstract=?, url=?, categories=?, external_links=?, sublinks=?
				 WHERE key = ?`,
				row.title, row.abstract, row.url, row.categories, row.externalLinks, row.sublinks, a.Key)
			if err != nil {
				return summary, fmt.Errorf("updating article %s: %w", a.Key, err)
			}
			summary.Updated++
		}

		if progress != nil {
			_ = progress.Add(1)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ingest_runs (id, source, inserted, updated, unchanged, finished_at) VALUES (?, ?, ?, ?, ?, ?)`,
		summary.RunID, source, summary.Inserted, summary.Updated, summary.Unchanged,
		time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return summary, fmt.Errorf("recording ingest run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing ingest: %w", err)
	}
	return summary, nil
}

// WriteSummary prints a one-line summary of an ingest run to w.
func WriteSummary(w io.Writer, source string, summary IngestSummary) {
	fmt.Fprintf(w, "%s: inserted: %d, updated: %d, unchanged: %d (run %s)\n",
		source, summary.Inserted, summary.Updated, summary.Unchanged, summary.RunID)
}

// Get returns the article stored under key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (types.Article, error) {
	var row articleRow
	err := s.db.QueryRowContext(ctx,
		`SELECT title, abstract, url, categories, external_links, sublinks FROM articles WHERE key = ?`, key,
	).Scan(&row.title, &row.abstract, &row.url, &row.categories, &row.externalLinks, &row.sublinks)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Article{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	if err != nil {
		return types.Article{}, fmt.Errorf("reading article %s: %w", key, err)
	}
	return row.decode(key)
}

// Lookup is Get reporting absence as ok=false instead of an error.
func (s *Store) Lookup(ctx context.Context, key string) (types.Article, bool, error) {
	a, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return types.Article{}, false, nil
	}
	if err != nil {
		return types.Article{}, false, err
	}
	return a, true, nil
}

// FirstKey returns the key of the earliest ingested article, or "" when
// the store is empty.
func (s *Store) FirstKey(ctx context.Context) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx, `SELECT key FROM articles ORDER BY rowid LIMIT 1`).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading first key: %w", err)
	}
	return key, nil
}

// Keys returns every key in ingest order.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM articles ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("listing keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scanning key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM articles`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting articles: %w", err)
	}
	return n, nil
}

// articleRow is the column form of an Article; list fields are JSON text.
type articleRow struct {
	title         string
	abstract      string
	url           string
	categories    string
	externalLinks string
	sublinks      string
}

func encodeArticle(a types.Article) (articleRow, error) {
	categories, err := json.Marshal(nonNil(a.Categories))
	if err != nil {
		return articleRow{}, err
	}
	links, err := json.Marshal(nonNil(a.ExternalLinks))
	if err != nil {
		return articleRow{}, err
	}
	sublinks, err := json.Marshal(nonNil(a.Sublinks))
	if err != nil {
		return articleRow{}, err
	}
	return articleRow{
		title:         a.Title,
		abstract:      a.Abstract,
		url:           a.URL,
		categories:    string(categories),
		externalLinks: string(links),
		sublinks:      string(sublinks),
	}, nil
}

func (r articleRow) decode(key string) (types.Article, error) {
	a := types.Article{Key: key, Title: r.title, Abstract: r.abstract, URL: r.url}
	if err := json.Unmarshal([]byte(r.categories), &a.Categories); err != nil {
		return types.Article{}, fmt.Errorf("decoding categories of %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(r.externalLinks), &a.ExternalLinks); err != nil {
		return types.Article{}, fmt.Errorf("decoding external links of %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(r.sublinks), &a.Sublinks); err != nil {
		return types.Article{}, fmt.Errorf("decoding sublinks of %s: %w", key, err)
	}
	if len(a.Categories) == 0 {
		a.Categories = nil
	}
	if len(a.ExternalLinks) == 0 {
		a.ExternalLinks = nil
	}
	if len(a.Sublinks) == 0 {
		a.Sublinks = nil
	}
	return a, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
