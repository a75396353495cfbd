// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine navigates records by anti-recommendation. It keeps the
// currently displayed set of records and a stack of earlier sets so a
// client can step back.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/pdiddy/nerdswipe/internal/antirecommend"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

// ErrNoPrevious is returned by Previous when the history stack is empty.
var ErrNoPrevious = errors.New("no previous anti-recommendations")

// RecordSource resolves record keys to articles. store.Store and
// reader.Index implement it.
type RecordSource interface {
	Lookup(ctx context.Context, key string) (types.Article, bool, error)
	FirstKey(ctx context.Context) (string, error)
}

// HistoryRecorder persists the anti-recommendations served for a record.
type HistoryRecorder interface {
	RecordHistory(ctx context.Context, recordKey string, antiKeys []string) error
}

// Engine is safe for concurrent use. Its state is shared by all callers.
type Engine struct {
	source      RecordSource
	recommender antirecommend.AntiRecommender
	history     HistoryRecorder
	logger      *zap.Logger

	mu      sync.Mutex
	stack   [][]types.Article
	current []types.Article
}

// Option configures an Engine.
type Option func(*Engine)

// WithHistory records every non-empty generation in h.
func WithHistory(h HistoryRecorder) Option {
	return func(e *Engine) { e.history = h }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine with an empty current set.
func New(source RecordSource, recommender antirecommend.AntiRecommender, opts ...Option) *Engine {
	if recommender == nil {
		recommender = antirecommend.Null{}
	}
	e := &Engine{source: source, recommender: recommender, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Initial returns the anti-recommendation records of the first record.
func (e *Engine) Initial(ctx context.Context) ([]types.Article, error) {
	key, err := e.source.FirstKey(ctx)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return []types.Article{}, nil
	}
	return e.Next(ctx, key)
}

// Next returns the records matching the anti-recommendations of key.
// Anti-recommendations with no matching record are dropped. When at least
// one record matches, the current set is pushed onto the stack and
// replaced by the record of key followed by the matches.
//
// An empty key means the first record of the current set, or the first
// record overall when nothing is displayed yet.
func (e *Engine) Next(ctx context.Context, key string) ([]types.Article, error) {
	key, err := e.resolveKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return []types.Article{}, nil
	}

	recs, err := e.recommender.Generate(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("generating anti-recommendations for %s: %w", key, err)
	}

	found := []types.Article{}
	for _, rec := range recs {
		a, ok, err := e.source.Lookup(ctx, rec.Key)
		if err != nil {
			return nil, err
		}
		if !ok {
			e.logger.Debug("anti-recommendation has no record", zap.String("key", rec.Key))
			continue
		}
		found = append(found, a)
	}

	e.logger.Info("anti-recommendations generated",
		zap.String("record_key", key),
		zap.Int("generated", len(recs)),
		zap.Int("matched", len(found)))

	if len(found) == 0 {
		return found, nil
	}

	head, ok, err := e.source.Lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	next := make([]types.Article, 0, len(found)+1)
	if ok {
		next = append(next, head)
	}
	next = append(next, found...)

	e.mu.Lock()
	if len(e.current) > 0 {
		e.stack = append(e.stack, e.current)
	}
	e.current = next
	e.mu.Unlock()

	if e.history != nil {
		keys := make([]string, len(found))
		for i, a := range found {
			keys[i] = a.Key
		}
		if err := e.history.RecordHistory(ctx, key, keys); err != nil {
			e.logger.Warn("recording history failed", zap.String("record_key", key), zap.Error(err))
		}
	}

	return slices.Clone(found), nil
}

// Previous pops the most recent earlier set and makes it current.
func (e *Engine) Previous() ([]types.Article, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.stack) == 0 {
		return nil, ErrNoPrevious
	}
	prev := e.stack[len(e.stack)-1]
	e.stack = e.stack[:len(e.stack)-1]
	e.current = prev
	return slices.Clone(prev), nil
}

// Current returns the displayed set.
func (e *Engine) Current() []types.Article {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := slices.Clone(e.current)
	if out == nil {
		out = []types.Article{}
	}
	return out
}

// Depth returns the number of sets on the stack.
func (e *Engine) Depth() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.stack)
}

func (e *Engine) resolveKey(ctx context.Context, key string) (string, error) {
	if key != "" {
		return key, nil
	}
	e.mu.Lock()
	if len(e.current) > 0 {
		key = e.current[0].Key
	}
	e.mu.Unlock()
	if key != "" {
		return key, nil
	}
	return e.source.FirstKey(ctx)
}
