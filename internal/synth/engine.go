// Package synth is the generation engine: it validates a request, seeds a
// request-scoped random source, dispatches to the EEG or ECG composer and
// extracts the matching features.
package synth

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/rcliao/biosynth/internal/ecg"
	"github.com/rcliao/biosynth/internal/eeg"
	"github.com/rcliao/biosynth/internal/model"
)

// Result is the outcome of one generation. Seed is the seed actually used,
// drawn fresh when the request carried none.
type Result struct {
	Request  model.Request
	Seed     uint64
	Class    model.Class
	Signal   *model.Signal
	Features model.FeatureSet
}

// Engine generates signals. It holds no per-request state and is safe for
// concurrent use.
type Engine struct {
	logger     *slog.Logger
	ecg        *ecg.Composer
	maxSamples int
}

// Option configures an Engine.
type Option func(*Engine)

// WithMaxSamples caps the samples per channel a request may ask for.
// Non-positive values keep model.DefaultMaxSamples.
func WithMaxSamples(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxSamples = n
		}
	}
}

// New creates an Engine. A nil logger uses slog.Default().
func New(logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{logger: logger, ecg: ecg.NewComposer(), maxSamples: model.DefaultMaxSamples}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewRand returns the random source used for a given seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate runs one request to completion. The context is checked between
// stages; composition itself is not interruptible.
func (e *Engine) Generate(ctx context.Context, req model.Request) (*Result, error) {
	if err := req.ValidateMax(e.maxSamples); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seed := rand.Uint64()
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := NewRand(seed)
	n := req.SampleCount()
	start := time.Now()

	res := &Result{Request: req, Seed: seed}
	switch req.Domain {
	case model.DomainEEG:
		p, err := eeg.Lookup(req.Pattern)
		if err != nil {
			return nil, err
		}
		res.Class = p.Class
		if res.Signal, err = eeg.Compose(rng, req.Pattern, n, req.SamplingRate); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		bp, err := eeg.BandPowers(res.Signal)
		if err != nil {
			return nil, fmt.Errorf("band power: %w", err)
		}
		res.Features.BandPower = bp
	case model.DomainECG:
		p, err := ecg.Lookup(req.Pattern)
		if err != nil {
			return nil, err
		}
		res.Class = p.Class
		if res.Signal, err = e.ecg.Compose(rng, req.Pattern, n, req.SamplingRate); err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res.Features.HRV = ecg.ExtractHRV(ctx, e.logger, e.ecg.Detector, res.Signal)
	}

	e.logger.DebugContext(ctx, "generated",
		slog.String("domain", string(req.Domain)),
		slog.String("pattern", req.Pattern),
		slog.Int("samples", n),
		slog.Uint64("seed", seed),
		slog.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// Patterns lists the catalog of a domain.
func (e *Engine) Patterns(domain model.Domain) ([]model.PatternInfo, error) {
	switch domain {
	case model.DomainEEG:
		return eeg.Catalog(), nil
	case model.DomainECG:
		return ecg.Catalog(), nil
	}
	return nil, &model.ValidationError{Field: "domain", Reason: "must be eeg or ecg"}
}

// Lookup returns the catalog entry for a pattern.
func (e *Engine) Lookup(domain model.Domain, pattern string) (model.PatternInfo, error) {
	switch domain {
	case model.DomainEEG:
		p, err := eeg.Lookup(pattern)
		if err != nil {
			return model.PatternInfo{}, err
		}
		return p.PatternInfo, nil
	case model.DomainECG:
		p, err := ecg.Lookup(pattern)
		if err != nil {
			return model.PatternInfo{}, err
		}
		return p.PatternInfo, nil
	}
	return model.PatternInfo{}, &model.ValidationError{Field: "domain", Reason: "must be eeg or ecg"}
}
