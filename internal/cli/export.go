package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export session descriptors as JSON",
		Long:  "Export session descriptors (no samples) as a JSON array, oldest first. Feed the output to import to regenerate the sessions from their seeds.",
		Run:   runExport,
	}

	cmd.Flags().String("domain", "", "Filter by domain: eeg or ecg")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	domain, _ := cmd.Flags().GetString("domain")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sessions, err := s.ExportAll(cmd.Context(), model.Domain(domain))
	if err != nil {
		exitErr("export", err)
	}
	if sessions == nil {
		sessions = []model.Session{}
	}

	b, _ := json.MarshalIndent(sessions, "", "  ")
	fmt.Println(string(b))
}
