package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vigil/internal/pipeline"
	"github.com/ppiankov/vigil/internal/precheck"
)

var precheckSnapshot string

// precheckCmd represents the precheck command
var precheckCmd = &cobra.Command{
	Use:   "precheck",
	Short: "Preview verification questions for a snapshot, offline",
	Long: `Precheck renders the verification question and any ontology warnings
for every edit in a snapshot, without touching the network or any judge.
Useful for inspecting what the judges would be asked before spending on
a verify run.

Example:
  vigil precheck --snapshot snapshots/2026-02-19-120000-patrol.yaml`,
	RunE: runPrecheck,
}

func init() {
	rootCmd.AddCommand(precheckCmd)

	precheckCmd.Flags().StringVar(&precheckSnapshot, "snapshot", "", "snapshot file to precheck (required)")
	_ = precheckCmd.MarkFlagRequired("snapshot")
}

func runPrecheck(cmd *cobra.Command, args []string) error {
	snapshot, err := pipeline.LoadSnapshot(precheckSnapshot)
	if err != nil {
		return err
	}

	warned := 0
	missing := 0
	for _, edit := range snapshot.Edits {
		fmt.Printf("%s (rcid %d)\n", edit.Title, edit.RCID)

		question := precheck.Question(edit)
		if question == "" {
			missing++
			fmt.Println("  (no question: parsed edit missing)")
			continue
		}
		if len(precheck.OntologyWarnings(edit)) > 0 {
			warned++
		}
		for _, line := range strings.Split(question, "\n") {
			if line == "" {
				continue
			}
			fmt.Printf("  %s\n", line)
		}
	}

	fmt.Printf("\n%d edits, %d with ontology warnings, %d without questions\n",
		len(snapshot.Edits), warned, missing)
	return nil
}
