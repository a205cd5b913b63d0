package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/csvout"
	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/store"
	"github.com/rcliao/biosynth/internal/synth"
)

func init() {
	cmd := &cobra.Command{
		Use:   "generate [eeg|ecg] [pattern]",
		Short: "Generate a recording",
		Long:  "Generate a synthetic recording and its features. With --replay, regenerate a stored session from its recorded seed.",
		Args:  cobra.MaximumNArgs(2),
		Run:   runGenerate,
	}

	cmd.Flags().Float64("duration", 0, "Duration in seconds (default: $BIOSYNTH_DURATION or 30)")
	cmd.Flags().Int("rate", 0, "Sampling rate in Hz (default: $BIOSYNTH_SAMPLING_RATE or 256)")
	cmd.Flags().Uint64("seed", 0, "Random seed (drawn when not set)")
	cmd.Flags().Bool("no-save", false, "Do not store the session")
	cmd.Flags().String("csv", "", "Directory to write <id>_data.csv and <id>_features.csv into")
	cmd.Flags().String("replay", "", "Regenerate the session with this id")

	RootCmd.AddCommand(cmd)
}

// generateOutput is what generate prints.
type generateOutput struct {
	Session *model.Session `json:"session,omitempty"`
	Seed    uint64         `json:"seed"`
	Class   model.Class    `json:"class"`
	Samples int            `json:"samples"`
	Files   []string       `json:"files,omitempty"`
	Links   []store.Link   `json:"links,omitempty"`
}

func runGenerate(cmd *cobra.Command, args []string) {
	noSave, _ := cmd.Flags().GetBool("no-save")
	csvDir, _ := cmd.Flags().GetString("csv")
	replay, _ := cmd.Flags().GetString("replay")
	ctx := cmd.Context()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var req model.Request
	if replay != "" {
		orig, err := s.Get(ctx, store.GetParams{ID: replay})
		if err != nil {
			exitErr("replay", err)
		}
		req = replayRequest(orig)
	} else {
		if req, err = requestFromFlags(cmd, args); err != nil {
			exitErr("generate", err)
		}
	}

	res, err := newEngine().Generate(ctx, req)
	if err != nil {
		exitErr("generate", err)
	}
	out := generateOutput{Seed: res.Seed, Class: res.Class, Samples: res.Signal.Len()}

	name := fmt.Sprintf("%s_%s_%d", req.Domain, req.Pattern, res.Seed)
	if !noSave {
		sess, err := saveResult(ctx, s, res)
		if err != nil {
			exitErr("save", err)
		}
		out.Session = sess
		name = sess.ID
		if replay != "" {
			link, err := s.Link(ctx, store.LinkParams{FromID: sess.ID, ToID: replay, Rel: store.RelReplayOf})
			if err != nil {
				exitErr("link replay", err)
			}
			out.Links = append(out.Links, *link)
		}
	}

	if csvDir != "" {
		if out.Files, err = writeCSV(csvDir, name, res); err != nil {
			exitErr("write csv", err)
		}
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}

func requestFromFlags(cmd *cobra.Command, args []string) (model.Request, error) {
	if len(args) < 2 {
		return model.Request{}, fmt.Errorf("domain and pattern are required (e.g. generate ecg stemi)")
	}
	duration, _ := cmd.Flags().GetFloat64("duration")
	rate, _ := cmd.Flags().GetInt("rate")
	if !cmd.Flags().Changed("duration") {
		duration = cfg.Defaults.Duration
	}
	if !cmd.Flags().Changed("rate") {
		rate = cfg.Defaults.SamplingRate
	}

	req := model.Request{
		Domain:       model.Domain(args[0]),
		Pattern:      args[1],
		Duration:     duration,
		SamplingRate: rate,
	}
	if cmd.Flags().Changed("seed") {
		seed, _ := cmd.Flags().GetUint64("seed")
		req.Seed = &seed
	}
	return req, nil
}

// replayRequest rebuilds the request that produced a session.
func replayRequest(sess *model.Session) model.Request {
	seed := sess.Seed
	return model.Request{
		Domain:       sess.Domain,
		Pattern:      sess.Pattern,
		Duration:     sess.Duration,
		SamplingRate: sess.SamplingRate,
		Seed:         &seed,
	}
}

func saveResult(ctx context.Context, s store.Store, res *synth.Result) (*model.Session, error) {
	return s.Put(ctx, store.PutParams{
		Domain:       res.Request.Domain,
		Pattern:      res.Request.Pattern,
		Class:        res.Class,
		Duration:     res.Request.Duration,
		SamplingRate: res.Request.SamplingRate,
		Seed:         res.Seed,
		Signal:       res.Signal,
		Features:     res.Features,
	})
}

// writeCSV writes the data file and, when there are features, the features
// file. It returns the paths written.
func writeCSV(dir, name string, res *synth.Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dataPath := filepath.Join(dir, name+"_data.csv")
	if err := writeFile(dataPath, func(f *os.File) error { return csvout.WriteData(f, res.Signal) }); err != nil {
		return nil, err
	}
	paths := []string{dataPath}

	if res.Features.Empty() {
		return paths, nil
	}
	featPath := filepath.Join(dir, name+"_features.csv")
	if err := writeFile(featPath, func(f *os.File) error { return csvout.WriteFeatures(f, res.Features) }); err != nil {
		return nil, err
	}
	return append(paths, featPath), nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
