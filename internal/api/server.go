package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/atharv3903/freightpath/internal/algo"
	"github.com/atharv3903/freightpath/internal/cache"
	"github.com/atharv3903/freightpath/internal/logging"
	"github.com/atharv3903/freightpath/internal/metrics"
	"github.com/atharv3903/freightpath/internal/model"
	"github.com/atharv3903/freightpath/internal/routing"
)

// Store is the network and shipment source behind the stored-data
// endpoints. It may be nil.
type Store interface {
	Edges(ctx context.Context) ([]model.RawEdge, error)
	Shipments(ctx context.Context) ([]model.Shipment, error)
	UpsertEdge(ctx context.Context, from, to string, w model.Weights) error
	UpdateEdgeClosed(ctx context.Context, from, to string, closed bool) (bool, error)
}

// DefaultMaxBodyBytes caps request bodies when MaxBodyBytes is unset.
const DefaultMaxBodyBytes = 32 << 20

type Server struct {
	Engine  *gin.Engine
	Store   Store
	Planner *routing.Planner
	RC      *cache.ResultCache
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// MaxBodyBytes bounds every /v1 request body.
	MaxBodyBytes int64
}

func New(store Store, planner *routing.Planner, rc *cache.ResultCache, logger *slog.Logger, m *metrics.Metrics) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		Engine:  gin.New(),
		Store:   store,
		Planner: planner,
		RC:      rc,
		Logger:  logger,
		Metrics: m,

		MaxBodyBytes: DefaultMaxBodyBytes,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	s.Engine.Use(gin.Recovery(), s.requestContext())

	s.Engine.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	if s.Metrics != nil {
		s.Engine.GET("/metrics", gin.WrapH(s.Metrics.Handler()))
	}

	v1 := s.Engine.Group("/v1", s.limitBody())
	{
		v1.POST("/routes", s.handleRoute)
		v1.POST("/routes/stored", s.handleStoredRoute)
		v1.PUT("/edges", s.handleUpsertEdge)
		v1.PATCH("/edges/closed", s.handleCloseEdge)
	}

	debug := s.Engine.Group("/debug")
	{
		debug.POST("/clear_cache", func(c *gin.Context) {
			s.RC.Clear()
			c.String(http.StatusOK, "cleared")
		})
		debug.GET("/cache_stats", func(c *gin.Context) {
			c.JSON(http.StatusOK, s.RC.Stats())
		})
	}

	s.Engine.NoRoute(func(c *gin.Context) {
		abort(c, http.StatusNotFound, CodeNotFound, "no such endpoint", nil)
	})
}

// requestContext tags each request with an id, a scoped logger and metrics.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)

		l := s.Logger.With("requestId", id)
		c.Request = c.Request.WithContext(logging.WithLogger(c.Request.Context(), l))

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		s.Metrics.ObserveHTTP(c.Request.Method, path, c.Writer.Status(), time.Since(start))
		l.Debug("request", "method", c.Request.Method, "path", path,
			"status", c.Writer.Status(), "elapsed", time.Since(start))
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := s.MaxBodyBytes
		if limit <= 0 {
			limit = DefaultMaxBodyBytes
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func (s *Server) handleRoute(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abort(c, http.StatusRequestEntityTooLarge, CodeTooLarge,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes", nil)
			return
		}
		abort(c, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}

	var in model.Input
	if err := json.Unmarshal(body, &in); err != nil {
		abort(c, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}

	s.plan(c, in)
}

func (s *Server) handleStoredRoute(c *gin.Context) {
	if s.Store == nil {
		abort(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "no network store configured", nil)
		return
	}
	ctx := c.Request.Context()

	edges, err := s.Store.Edges(ctx)
	if err != nil {
		respondError(c, err)
		return
	}
	shipments, err := s.Store.Shipments(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	s.plan(c, model.Input{Shipments: shipments, Edges: edges})
}

// plan serves from the result cache when an identical input was planned
// before.
func (s *Server) plan(c *gin.Context, in model.Input) {
	key, err := digest(in)
	if err != nil {
		respondError(c, err)
		return
	}

	if out, ok := s.RC.Get(key); ok {
		c.Header("X-Cache", "hit")
		c.JSON(http.StatusOK, out)
		return
	}

	out, err := s.Planner.Plan(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}

	s.RC.Put(key, out)
	c.Header("X-Cache", "miss")
	c.JSON(http.StatusOK, out)
}

func digest(in model.Input) (string, error) {
	b, err := json.Marshal(in)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

func (s *Server) handleUpsertEdge(c *gin.Context) {
	if s.Store == nil {
		abort(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "no network store configured", nil)
		return
	}

	var e model.RawEdge
	if err := c.ShouldBindJSON(&e); err != nil {
		abort(c, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	w, err := algo.ParseEdge(e)
	if err != nil {
		respondError(c, err)
		return
	}

	if err := s.Store.UpsertEdge(c.Request.Context(), e.From, e.To, w); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleCloseEdge(c *gin.Context) {
	if s.Store == nil {
		abort(c, http.StatusServiceUnavailable, CodeServiceUnavailable, "no network store configured", nil)
		return
	}

	var req struct {
		From   string `json:"from" binding:"required"`
		To     string `json:"to" binding:"required"`
		Closed *bool  `json:"closed" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}

	found, err := s.Store.UpdateEdgeClosed(c.Request.Context(), req.From, req.To, *req.Closed)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		abort(c, http.StatusNotFound, CodeNotFound, "edge not found", map[string]string{"from": req.From, "to": req.To})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
