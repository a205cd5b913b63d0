package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/biosynth/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "patterns [eeg|ecg]",
		Short: "List the pattern catalog",
		Args:  cobra.MaximumNArgs(1),
		Run:   runPatterns,
	}

	RootCmd.AddCommand(cmd)
}

func runPatterns(cmd *cobra.Command, args []string) {
	domains := []model.Domain{model.DomainEEG, model.DomainECG}
	if len(args) == 1 {
		domains = []model.Domain{model.Domain(args[0])}
	}

	engine := newEngine()
	out := make(map[model.Domain][]model.PatternInfo, len(domains))
	for _, d := range domains {
		patterns, err := engine.Patterns(d)
		if err != nil {
			exitErr("patterns", err)
		}
		out[d] = patterns
	}

	if formatFlag == "text" {
		for _, d := range domains {
			for _, p := range out[d] {
				fmt.Printf("%s\t%s\t%s\t%s\n", d, p.Class, p.ID, p.Label)
			}
		}
		return
	}

	b, _ := json.MarshalIndent(out, "", "  ")
	fmt.Println(string(b))
}
