package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/csvout"
	"github.com/rcliao/biosynth/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Retrieve a session",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("data", false, "Write the samples as CSV to stdout instead of the descriptor")
	cmd.Flags().Bool("features", false, "Write the features as CSV to stdout instead of the descriptor")
	cmd.Flags().Bool("links", false, "Include related sessions")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	data, _ := cmd.Flags().GetBool("data")
	features, _ := cmd.Flags().GetBool("features")
	withLinks, _ := cmd.Flags().GetBool("links")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sess, err := s.Get(cmd.Context(), store.GetParams{ID: args[0], WithSamples: data})
	if err != nil {
		exitErr("get", err)
	}

	switch {
	case data:
		if err := csvout.WriteData(os.Stdout, sess.Signal); err != nil {
			exitErr("write csv", err)
		}
		return
	case features:
		if err := csvout.WriteFeatures(os.Stdout, sess.Features); err != nil {
			exitErr("write csv", err)
		}
		return
	}

	if !withLinks {
		b, _ := json.MarshalIndent(sess, "", "  ")
		fmt.Println(string(b))
		return
	}

	links, err := s.GetLinks(cmd.Context(), sess.ID)
	if err != nil {
		exitErr("get links", err)
	}
	b, _ := json.MarshalIndent(struct {
		*sessionView
		Links []store.Link `json:"links"`
	}{(*sessionView)(sess), links}, "", "  ")
	fmt.Println(string(b))
}
