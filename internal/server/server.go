package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/schema"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/embiggen/internal/expander"
	"go.uber.org/zap"
)

const (
	maxBatchSize    = 100
	shutdownTimeout = 5 * time.Second
)

// Server exposes expansion over HTTP.
type Server struct {
	c      *options
	engine *gin.Engine
}

func New(opts ...Option) (*Server, error) {
	c := &options{
		bind:        ":8080",
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.e == nil {
		return nil, fmt.Errorf("no expander found")
	}
	s := &Server{c: c}
	s.engine = s.buildEngine()
	return s, nil
}

// Handler returns the routed gin engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) buildEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	v1 := engine.Group("/api/v1")
	v1.GET("/health", s.handleHealth)
	v1.GET("/expand", s.handleExpand)
	v1.POST("/expand/batch", s.handleBatch)
	return engine
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.c.bind,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleExpand(c *gin.Context) {
	q := &expandQuery{}
	if err := decodeParams(q, c.Request.URL.Query()); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid query: %v", err)})
		return
	}
	u, err := parseTarget(q.URL)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	ctx := c.Request.Context()
	opts := requestOptions(q.Redirects, q.Timeout)
	expanded, err := s.c.e.ExpandStrict(ctx, u, opts...)
	c.JSON(http.StatusOK, s.buildResponse(u, expanded, err, q.Strict))
}

func (s *Server) handleBatch(c *gin.Context) {
	req := &batchRequest{}
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid body: %v", err)})
		return
	}
	if len(req.URLs) == 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "urls is required"})
		return
	}
	if len(req.URLs) > maxBatchSize {
		c.JSON(http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("too many urls, max:%d", maxBatchSize)})
		return
	}
	uris := make([]*url.URL, 0, len(req.URLs))
	for _, raw := range req.URLs {
		u, err := parseTarget(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		uris = append(uris, u)
	}
	results := expander.ExpandAll(c.Request.Context(), s.c.e, uris, s.c.concurrency, true,
		requestOptions(req.Redirects, req.Timeout)...)
	rsp := batchResponse{Results: make([]expandResponse, 0, len(results))}
	for _, res := range results {
		rsp.Results = append(rsp.Results, s.buildResponse(res.Original, res.Expanded, res.Err, req.Strict))
	}
	c.JSON(http.StatusOK, rsp)
}

func (s *Server) buildResponse(original *url.URL, expanded *url.URL, err error, strict bool) expandResponse {
	rsp := expandResponse{
		OriginalURL: original.String(),
		Shortened:   s.c.e.Shortened(original),
		Outcome:     expander.KindOf(err).String(),
	}
	if !strict {
		rsp.ExpandedURL = expander.Fold(original, expanded, err).String()
		return rsp
	}
	if err != nil {
		rsp.Error = err.Error()
		return rsp
	}
	rsp.ExpandedURL = expanded.String()
	return rsp
}

func requestOptions(redirects *int, timeoutMs int64) []expander.RequestOption {
	var opts []expander.RequestOption
	if redirects != nil {
		opts = append(opts, expander.WithRedirects(*redirects))
	}
	if timeoutMs > 0 {
		opts = append(opts, expander.WithTimeout(time.Duration(timeoutMs)*time.Millisecond))
	}
	return opts
}

func parseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid url format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("only http and https urls are allowed")
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("url host is required")
	}
	return u, nil
}

func decodeParams(out interface{}, in map[string][]string) error {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	if err := d.Decode(out, in); err != nil {
		return err
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logutil.GetLogger(c.Request.Context()).Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
