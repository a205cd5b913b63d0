package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/store"
	"github.com/rcliao/biosynth/internal/synth"
)

func init() {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Regenerate sessions from exported descriptors",
		Long:  "Read descriptors produced by export (file or stdin) and regenerate each session from its recorded seed. A regenerated session is linked replay_of its source when the source exists in this database.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runImport,
	}

	RootCmd.AddCommand(cmd)
}

type importSummary struct {
	Imported int      `json:"imported"`
	Linked   int      `json:"linked"`
	IDs      []string `json:"ids"`
}

func runImport(cmd *cobra.Command, args []string) {
	in := io.Reader(os.Stdin)
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			exitErr("open", err)
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		exitErr("read input", err)
	}

	var descs []model.Session
	if err := json.Unmarshal(data, &descs); err != nil {
		exitErr("parse json", err)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sum, err := importSessions(cmd.Context(), s, newEngine(), descs)
	if err != nil {
		exitErr("import", err)
	}

	b, _ := json.Marshal(struct {
		OK bool `json:"ok"`
		*importSummary
	}{true, sum})
	fmt.Println(string(b))
}

// importSessions regenerates each descriptor and stores the result.
func importSessions(ctx context.Context, s *store.SQLiteStore, engine *synth.Engine, descs []model.Session) (*importSummary, error) {
	sum := &importSummary{IDs: []string{}}
	for i := range descs {
		d := &descs[i]
		res, err := engine.Generate(ctx, replayRequest(d))
		if err != nil {
			return sum, fmt.Errorf("regenerate %s (%s/%s): %w", d.ID, d.Domain, d.Pattern, err)
		}
		sess, err := saveResult(ctx, s, res)
		if err != nil {
			return sum, fmt.Errorf("store %s: %w", d.ID, err)
		}
		sum.Imported++
		sum.IDs = append(sum.IDs, sess.ID)

		if d.ID == "" {
			continue
		}
		_, err = s.Link(ctx, store.LinkParams{FromID: sess.ID, ToID: d.ID, Rel: store.RelReplayOf})
		switch {
		case err == nil:
			sum.Linked++
		case errors.Is(err, store.ErrNotFound):
			slog.DebugContext(ctx, "source session not present, not linking", slog.String("source", d.ID))
		default:
			return sum, fmt.Errorf("link %s: %w", d.ID, err)
		}
	}
	return sum, nil
}
