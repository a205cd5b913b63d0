package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/embedding"
	"github.com/rcliao/biosynth/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "similar [id]",
		Short: "Rank sessions by feature similarity",
		Long:  "Compare a session's features against other sessions of the same domain by cosine similarity.",
		Args:  cobra.ExactArgs(1),
		Run:   runSimilar,
	}

	cmd.Flags().IntP("limit", "l", 5, "Max results")
	cmd.Flags().Int("scan", 1000, "Max sessions to compare against")
	cmd.Flags().Bool("link", false, "Record a compares_to link to each match")

	RootCmd.AddCommand(cmd)
}

func runSimilar(cmd *cobra.Command, args []string) {
	limit, _ := cmd.Flags().GetInt("limit")
	scan, _ := cmd.Flags().GetInt("scan")
	link, _ := cmd.Flags().GetBool("link")
	ctx := cmd.Context()

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.Get(ctx, store.GetParams{ID: args[0]})
	if err != nil {
		exitErr("similar", err)
	}
	if sess.Features.Empty() {
		exitErr("similar", fmt.Errorf("session %s has no features", sess.ID))
	}

	candidates, err := s.List(ctx, store.ListParams{Domain: sess.Domain, Limit: scan})
	if err != nil {
		exitErr("list", err)
	}
	matches := embedding.Rank(embedding.Embed(sess.Features), candidates, sess.ID, limit)

	if link {
		for _, m := range matches {
			if _, err := s.Link(ctx, store.LinkParams{FromID: sess.ID, ToID: m.Session.ID, Rel: store.RelComparesTo}); err != nil {
				exitErr("link", err)
			}
		}
	}

	if matches == nil {
		matches = []embedding.Match{}
	}
	b, _ := json.MarshalIndent(matches, "", "  ")
	fmt.Println(string(b))
}
