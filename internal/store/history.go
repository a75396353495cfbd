// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// HistoryEntry records the anti-recommendations served for one record.
type HistoryEntry struct {
	ID                     int64     `json:"id" yaml:"id"`
	RecordKey              string    `json:"record_key" yaml:"record_key"`
	AntiRecommendationKeys []string  `json:"anti_recommendation_keys" yaml:"anti_recommendation_keys"`
	CreatedAt              time.Time `json:"created_at" yaml:"created_at"`
}

// RecordHistory appends a history entry.
func (s *Store) RecordHistory(ctx context.Context, recordKey string, antiKeys []string) error {
	if antiKeys == nil {
		antiKeys = []string{}
	}
	keysJSON, err := json.Marshal(antiKeys)
	if err != nil {
		return fmt.Errorf("encoding history keys: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO anti_recommendation_history (record_key, anti_recommendation_keys, created_at) VALUES (?, ?, ?)`,
		recordKey, string(keysJSON), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("recording history for %s: %w", recordKey, err)
	}
	return nil
}

// History returns the most recent entries, newest first. limit <= 0 uses
// the store default.
func (s *Store) History(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, record_key, anti_recommendation_keys, created_at
		 FROM anti_recommendation_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e         HistoryEntry
			keysJSON  string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.RecordKey, &keysJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning history: %w", err)
		}
		if err := json.Unmarshal([]byte(keysJSON), &e.AntiRecommendationKeys); err != nil {
			return nil, fmt.Errorf("decoding history keys: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			e.CreatedAt = t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
