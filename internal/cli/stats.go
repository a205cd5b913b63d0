package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), getDBPath())
	if err != nil {
		exitErr("stats", err)
	}

	if formatFlag == "text" {
		fmt.Printf("db: %s (%d bytes)\nsessions: %d active / %d total\nsegments: %d (%d sample bytes)\n",
			stats.DBPath, stats.DBSizeBytes, stats.ActiveSessions, stats.TotalSessions, stats.TotalSegments, stats.SampleBytes)
		for _, p := range stats.Patterns {
			fmt.Printf("  %s/%s: %d\n", p.Domain, p.Pattern, p.Count)
		}
		return
	}

	b, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(b))
}
