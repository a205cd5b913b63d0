package stream

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/wire"
)

// Publisher is the subset of *nats.Conn used for sending frames.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Options controls framing and pacing.
type Options struct {
	Prefix   string // subject prefix, default "biosynth"
	Batch    int    // samples per frame, default 10
	Realtime bool   // pace frames at the signal's sampling rate
}

// Summary counts what was sent.
type Summary struct {
	Subjects []string `json:"subjects"`
	Messages int      `json:"messages"`
	Samples  int      `json:"samples"`
}

// Subject returns the subject a channel is published on.
func Subject(prefix, channel string) string {
	return prefix + "." + strings.ToLower(channel)
}

// PublishSignal sends every channel of sig as consecutive float32 LE frames of
// opts.Batch samples on Subject(prefix, channel). Frames go out in time order,
// one per channel per step. Cancelling ctx stops between steps.
func PublishSignal(ctx context.Context, pub Publisher, sig *model.Signal, opts Options) (*Summary, error) {
	if opts.Prefix == "" {
		opts.Prefix = "biosynth"
	}
	if opts.Batch <= 0 {
		opts.Batch = 10
	}

	subjects := make([]string, len(sig.Channels))
	for ch, name := range sig.Channels {
		subjects[ch] = Subject(opts.Prefix, name)
	}
	sum := &Summary{Subjects: subjects}

	var tick <-chan time.Time
	if opts.Realtime && sig.SamplingRate > 0 {
		period := time.Duration(opts.Batch) * time.Second / time.Duration(sig.SamplingRate)
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	n := sig.Len()
	for start := 0; start < n; start += opts.Batch {
		if tick != nil && start > 0 {
			select {
			case <-ctx.Done():
				return sum, ctx.Err()
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return sum, err
		}

		end := min(start+opts.Batch, n)
		for ch, x := range sig.Samples {
			if err := pub.Publish(subjects[ch], wire.EncodeFloat32(x[start:end])); err != nil {
				return sum, fmt.Errorf("publish %s: %w", subjects[ch], err)
			}
			sum.Messages++
			sum.Samples += end - start
		}
	}
	return sum, nil
}
