package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Create or remove relations between sessions",
		Run:   runLink,
	}

	cmd.Flags().String("from", "", "Source session id")
	cmd.Flags().String("to", "", "Target session id")
	cmd.Flags().StringP("rel", "r", "", "Relation: replay_of, variant_of, compares_to")
	cmd.Flags().Bool("rm", false, "Remove the link")

	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("rel")

	RootCmd.AddCommand(cmd)
}

func runLink(cmd *cobra.Command, args []string) {
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")
	rel, _ := cmd.Flags().GetString("rel")
	rm, _ := cmd.Flags().GetBool("rm")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	link, err := s.Link(cmd.Context(), store.LinkParams{
		FromID: from,
		ToID:   to,
		Rel:    rel,
		Remove: rm,
	})
	if err != nil {
		exitErr("link", err)
	}

	b, _ := json.MarshalIndent(link, "", "  ")
	fmt.Println(string(b))
}
