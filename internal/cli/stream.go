package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/store"
	"github.com/rcliao/biosynth/internal/stream"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stream [eeg|ecg] [pattern]",
		Short: "Publish a recording to NATS",
		Long:  "Publish a stored session (--session) or a freshly generated recording as float32 little-endian frames, one subject per channel.",
		Args:  cobra.MaximumNArgs(2),
		Run:   runStream,
	}

	cmd.Flags().String("nats", "", "NATS url (default: $BIOSYNTH_NATS_URL or nats://127.0.0.1:4222)")
	cmd.Flags().String("subject", "biosynth", "Subject prefix; channels publish on <prefix>.<channel>")
	cmd.Flags().Int("batch", 10, "Samples per message")
	cmd.Flags().Bool("realtime", false, "Pace messages at the sampling rate")
	cmd.Flags().String("session", "", "Stream a stored session instead of generating")
	cmd.Flags().Float64("duration", 0, "Duration in seconds when generating")
	cmd.Flags().Int("rate", 0, "Sampling rate in Hz when generating")
	cmd.Flags().Uint64("seed", 0, "Random seed when generating")

	RootCmd.AddCommand(cmd)
}

func runStream(cmd *cobra.Command, args []string) {
	natsURL, _ := cmd.Flags().GetString("nats")
	subject, _ := cmd.Flags().GetString("subject")
	batch, _ := cmd.Flags().GetInt("batch")
	realtime, _ := cmd.Flags().GetBool("realtime")
	sessionID, _ := cmd.Flags().GetString("session")
	if natsURL == "" {
		natsURL = cfg.NATS.URL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	sig, err := streamSignal(ctx, cmd, args, sessionID)
	if err != nil {
		exitErr("stream", err)
	}

	nc, err := stream.Connect(natsURL)
	if err != nil {
		exitErr("connect nats", err)
	}
	defer nc.Drain()

	sum, err := stream.PublishSignal(ctx, nc, sig, stream.Options{
		Prefix:   subject,
		Batch:    batch,
		Realtime: realtime,
	})
	if err != nil && ctx.Err() == nil {
		err := xerrors.New(err)
		slog.ErrorContext(ctx, "publish failed", slog.Any("error", err))
		os.Exit(1)
	}

	b, _ := json.MarshalIndent(sum, "", "  ")
	fmt.Println(string(b))
}

func streamSignal(ctx context.Context, cmd *cobra.Command, args []string, sessionID string) (*model.Signal, error) {
	if sessionID != "" {
		s, err := openStore()
		if err != nil {
			return nil, err
		}
		defer s.Close()
		sess, err := s.Get(ctx, store.GetParams{ID: sessionID, WithSamples: true})
		if err != nil {
			return nil, err
		}
		return sess.Signal, nil
	}

	req, err := requestFromFlags(cmd, args)
	if err != nil {
		return nil, err
	}
	res, err := newEngine().Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.Signal, nil
}
