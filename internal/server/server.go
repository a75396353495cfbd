// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the anti-recommendation engine and the knowledge
// base over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/nerdswipe/internal/engine"
	"github.com/pdiddy/nerdswipe/internal/metrics"
	"github.com/pdiddy/nerdswipe/internal/store"
	"github.com/pdiddy/nerdswipe/pkg/types"
)

const defaultAddr = "127.0.0.1:8080"

// Store is the narrow knowledge base contract required by the API.
type Store interface {
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, key string) (types.Article, error)
	Search(ctx context.Context, opts store.QueryOptions) ([]types.Article, error)
	History(ctx context.Context, limit int) ([]store.HistoryEntry, error)
}

// Server serves the HTTP API.
type Server struct {
	addr      string
	store     Store
	engine    *engine.Engine
	logger    *zap.Logger
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a server. An empty addr uses 127.0.0.1:8080.
func NewServer(addr string, st Store, eng *engine.Engine, logger *zap.Logger) *Server {
	if addr == "" {
		addr = defaultAddr
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		store:     st,
		engine:    eng,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.observe)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	api.GET("/health", s.handleHealth)

	wiki := api.Group("/wikipedia")
	wiki.GET("/initial", s.handleInitial)
	wiki.GET("/next", s.handleNext)
	wiki.GET("/previous", s.handlePrevious)
	wiki.GET("/current", s.handleCurrent)

	api.GET("/records", s.handleSearch)
	api.GET("/records/:key", s.handleRecord)
	api.GET("/history", s.handleHistory)

	return r
}

// Start listens on the configured address and serves in the background.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// Model-backed generations can be slow.
		WriteTimeout: 120 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped", zap.Error(err))
		}
	}()
	s.logger.Info("serving API", zap.String("addr", listener.Addr().String()))
	return nil
}

// Addr returns the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) observe(c *gin.Context) {
	start := time.Now()
	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	d := time.Since(start)
	metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), d)
	s.logger.Debug("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("duration", d))
}

func (s *Server) fail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) handleHealth(c *gin.Context) {
	n, err := s.store.Count(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, errors.New("failed to read record count"))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.startTime).String(),
		"records": n,
	})
}

func (s *Server) handleInitial(c *gin.Context) {
	recs, err := s.engine.Initial(c.Request.Context())
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleNext(c *gin.Context) {
	recs, err := s.engine.Next(c.Request.Context(), c.Query("record_key"))
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handlePrevious(c *gin.Context) {
	recs, err := s.engine.Previous()
	if errors.Is(err, engine.ErrNoPrevious) {
		s.fail(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, recs)
}

func (s *Server) handleCurrent(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.Current())
}

func (s *Server) handleRecord(c *gin.Context) {
	a, err := s.store.Get(c.Request.Context(), c.Param("key"))
	if errors.Is(err, store.ErrNotFound) {
		s.fail(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (s *Server) handleSearch(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	results, err := s.store.Search(c.Request.Context(), store.QueryOptions{
		Query:      c.Query("q"),
		Category:   c.Query("category"),
		MaxResults: limit,
	})
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if results == nil {
		results = []types.Article{}
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) handleHistory(c *gin.Context) {
	limit, err := queryInt(c, "limit")
	if err != nil {
		s.fail(c, http.StatusBadRequest, err)
		return
	}
	entries, err := s.store.History(c.Request.Context(), limit)
	if err != nil {
		s.fail(c, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []store.HistoryEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(c *gin.Context, name string) (int, error) {
	v := c.Query(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, errors.New("invalid " + name + ": " + strconv.Quote(v))
	}
	return n, nil
}
