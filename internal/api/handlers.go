package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mdobak/go-xerrors"

	"github.com/rcliao/biosynth/internal/csvout"
	"github.com/rcliao/biosynth/internal/dsp"
	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/store"
)

// GenerateRequest is the body of POST /api/generate/{eeg,ecg}.
type GenerateRequest struct {
	Type         string   `json:"type"`
	Duration     *float64 `json:"duration"`
	SamplingRate *int     `json:"sampling_rate"`
	Seed         *uint64  `json:"seed"`
}

// GenerateData describes a stored generation.
type GenerateData struct {
	Pattern      string            `json:"pattern"`
	Class        model.Class       `json:"class"`
	Seed         uint64            `json:"seed"`
	Channels     []string          `json:"channels"`
	Duration     float64           `json:"duration"`
	SamplingRate int               `json:"sampling_rate"`
	SampleCount  int               `json:"sample_count"`
	Features     model.FeatureSet  `json:"features"`
	Files        map[string]string `json:"files"`
}

type GenerateResponse struct {
	Success   bool         `json:"success"`
	SessionID string       `json:"session_id"`
	Data      GenerateData `json:"data"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "EEG/ECG Generator API is running"})
}

// types groups the catalog by class as label -> id.
func (s *Server) types(domain model.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		patterns, err := s.engine.Patterns(domain)
		if err != nil {
			s.fail(c, "list patterns", err)
			return
		}
		out := map[model.Class]map[string]string{
			model.ClassNormal:   {},
			model.ClassAbnormal: {},
		}
		for _, p := range patterns {
			out[p.Class][p.Label] = p.ID
		}
		c.JSON(http.StatusOK, out)
	}
}

func (s *Server) generate(domain model.Domain) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body GenerateRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
		if body.Type == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("%s type is required", domainLabel(domain))})
			return
		}

		req := model.Request{
			Domain:       domain,
			Pattern:      body.Type,
			Duration:     s.opts.Duration,
			SamplingRate: s.opts.SamplingRate,
			Seed:         body.Seed,
		}
		if body.Duration != nil {
			req.Duration = *body.Duration
		}
		if body.SamplingRate != nil {
			req.SamplingRate = *body.SamplingRate
		}

		ctx := c.Request.Context()
		res, err := s.run(ctx, req)
		if err != nil {
			s.fail(c, "generate", err)
			return
		}

		sess, err := s.sessions.Put(ctx, store.PutParams{
			Domain:       domain,
			Pattern:      res.Request.Pattern,
			Class:        res.Class,
			Duration:     res.Request.Duration,
			SamplingRate: res.Request.SamplingRate,
			Seed:         res.Seed,
			Signal:       res.Signal,
			Features:     res.Features,
		})
		if err != nil {
			s.fail(c, "store session", err)
			return
		}

		c.JSON(http.StatusOK, GenerateResponse{
			Success:   true,
			SessionID: sess.ID,
			Data: GenerateData{
				Pattern:      sess.Pattern,
				Class:        sess.Class,
				Seed:         sess.Seed,
				Channels:     sess.Channels,
				Duration:     sess.Duration,
				SamplingRate: sess.SamplingRate,
				SampleCount:  sess.SampleCount,
				Features:     sess.Features,
				Files:        sessionFiles(sess),
			},
		})
	}
}

func (s *Server) download(c *gin.Context) {
	id := c.Param("session_id")
	fileType := c.Param("file_type")
	if fileType != "csv" && fileType != "features" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type"})
		return
	}

	sess, err := s.sessions.Get(c.Request.Context(), store.GetParams{ID: id, WithSamples: fileType == "csv"})
	if err != nil {
		s.fail(c, "download", err)
		return
	}

	var buf bytes.Buffer
	name := fmt.Sprintf("%s_data.csv", sess.ID)
	if fileType == "csv" {
		err = csvout.WriteData(&buf, sess.Signal)
	} else {
		name = fmt.Sprintf("%s_features.csv", sess.ID)
		err = csvout.WriteFeatures(&buf, sess.Features)
		if errors.Is(err, csvout.ErrNoFeatures) {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
	}
	if err != nil {
		s.fail(c, "render csv", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// files lists the downloads available for a session. An unknown session has
// none.
func (s *Server) files(c *gin.Context) {
	id := c.Param("session_id")
	sess, err := s.sessions.Get(c.Request.Context(), store.GetParams{ID: id})
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusOK, gin.H{"session_id": id, "files": gin.H{}})
		return
	}
	if err != nil {
		s.fail(c, "session files", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID, "files": sessionFiles(sess)})
}

func sessionFiles(sess *model.Session) map[string]string {
	files := map[string]string{
		"csv": fmt.Sprintf("/api/download/%s/csv", sess.ID),
	}
	if !sess.Features.Empty() {
		files["features"] = fmt.Sprintf("/api/download/%s/features", sess.ID)
	}
	return files
}

// fail writes the error response. Client errors log at WARN; everything else
// logs at ERROR with a stack trace.
func (s *Server) fail(c *gin.Context, op string, err error) {
	status := statusFor(err)
	ctx := c.Request.Context()
	if status >= http.StatusInternalServerError {
		err := xerrors.New(err)
		s.logger.ErrorContext(ctx, op+" failed", slog.Int("status", status), slog.Any("error", err))
	} else {
		s.logger.WarnContext(ctx, op+" rejected", slog.Int("status", status), slog.Any("error", err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation), errors.Is(err, model.ErrInvalidPattern):
		return http.StatusBadRequest
	case errors.Is(err, dsp.ErrFilterDesign):
		return http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func domainLabel(d model.Domain) string {
	if d == model.DomainEEG {
		return "EEG"
	}
	return "ECG"
}
