// Package store persists generated sessions and their sample segments.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/segment"
)

// ErrNotFound is returned when a session id does not resolve.
var ErrNotFound = errors.New("session not found")

// PutParams holds parameters for storing a session.
type PutParams struct {
	Domain       model.Domain
	Pattern      string
	Class        model.Class
	Duration     float64
	SamplingRate int
	Seed         uint64
	Signal       *model.Signal
	Features     model.FeatureSet
	Segments     segment.Options // zero value uses segment.DefaultOptions
}

// GetParams holds parameters for retrieving a session.
type GetParams struct {
	ID          string
	WithSamples bool
}

// ListParams holds parameters for listing sessions.
type ListParams struct {
	Domain  model.Domain
	Pattern string
	Class   model.Class
	Limit   int
}

// RmParams holds parameters for deleting a session.
type RmParams struct {
	ID   string
	Hard bool
}

// Store defines the session storage interface.
type Store interface {
	// Put stores a generated session with its samples. Returns the created session.
	Put(ctx context.Context, p PutParams) (*model.Session, error)

	// Get retrieves a session by id, optionally with its samples.
	Get(ctx context.Context, p GetParams) (*model.Session, error)

	// List lists sessions matching the given filters, newest first.
	List(ctx context.Context, p ListParams) ([]model.Session, error)

	// Rm soft-deletes (or hard-deletes) a session.
	Rm(ctx context.Context, p RmParams) error

	// Close closes the store.
	Close() error
}
