// Package api exposes generation and session download over HTTP.
package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/store"
	"github.com/rcliao/biosynth/internal/synth"
)

// Options configures a Server.
type Options struct {
	Timeout      time.Duration // generation deadline per request
	Duration     float64       // used when a request omits duration
	SamplingRate int           // used when a request omits sampling_rate
	Logger       *slog.Logger
}

// Server holds the handler dependencies.
type Server struct {
	engine   *synth.Engine
	sessions store.Store
	opts     Options
	logger   *slog.Logger
}

// NewServer creates a Server. Zero option fields take the usual defaults.
func NewServer(engine *synth.Engine, sessions store.Store, opts Options) *Server {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Duration <= 0 {
		opts.Duration = 30
	}
	if opts.SamplingRate <= 0 {
		opts.SamplingRate = 256
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{engine: engine, sessions: sessions, opts: opts, logger: logger}
}

// Router builds the gin engine with every route registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLog())

	api := router.Group("/api")
	{
		api.GET("/health", s.health)
		api.GET("/eeg/types", s.types(model.DomainEEG))
		api.GET("/ecg/types", s.types(model.DomainECG))
		api.POST("/generate/eeg", s.generate(model.DomainEEG))
		api.POST("/generate/ecg", s.generate(model.DomainECG))
		api.GET("/download/:session_id/:file_type", s.download)
		api.GET("/session/:session_id/files", s.files)
	}
	return router
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.DebugContext(c.Request.Context(), "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("elapsed", time.Since(start)),
		)
	}
}

type outcome struct {
	res *synth.Result
	err error
}

// run generates on a worker goroutine. When the deadline passes first the
// worker's result is dropped.
func (s *Server) run(ctx context.Context, req model.Request) (*synth.Result, error) {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	done := make(chan outcome, 1)
	go func() {
		res, err := s.engine.Generate(ctx, req)
		done <- outcome{res: res, err: err}
	}()

	select {
	case o := <-done:
		return o.res, o.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
