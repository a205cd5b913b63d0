package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/model"
	"github.com/rcliao/biosynth/internal/store"
)

// sessionView keeps the session JSON shape when embedded alongside extra fields.
type sessionView model.Session

func init() {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sessions",
		Run:   runList,
	}

	cmd.Flags().String("domain", "", "Filter by domain: eeg or ecg")
	cmd.Flags().StringP("pattern", "p", "", "Filter by pattern id")
	cmd.Flags().String("class", "", "Filter by class: normal or abnormal")
	cmd.Flags().IntP("limit", "l", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output session ids")

	RootCmd.AddCommand(cmd)
}

func runList(cmd *cobra.Command, args []string) {
	domain, _ := cmd.Flags().GetString("domain")
	pattern, _ := cmd.Flags().GetString("pattern")
	class, _ := cmd.Flags().GetString("class")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := s.List(cmd.Context(), store.ListParams{
		Domain:  model.Domain(domain),
		Pattern: pattern,
		Class:   model.Class(class),
		Limit:   limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		for _, sess := range sessions {
			fmt.Println(sess.ID)
		}
		return
	}
	if formatFlag == "text" {
		for _, sess := range sessions {
			fmt.Printf("%s\t%s/%s\t%gs@%dHz\tseed=%d\n", sess.ID, sess.Domain, sess.Pattern, sess.Duration, sess.SamplingRate, sess.Seed)
		}
		return
	}

	b, _ := json.MarshalIndent(sessions, "", "  ")
	fmt.Println(string(b))
}
