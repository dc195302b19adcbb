package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vigil/internal/judge"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/pipeline"
	"github.com/ppiankov/vigil/internal/runner"
	"github.com/ppiankov/vigil/internal/tools"
	"github.com/ppiankov/vigil/internal/util"
	"github.com/ppiankov/vigil/internal/worker"
)

var (
	verifySnapshot   string
	verifyModels     []string
	verifyLimit      int
	verifyTimeout    time.Duration
	verifyPromptFile string
	verifyOutputDir  string
	verifyCheckpoint string
	verifyDryRun     bool
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Fan enriched edits out to LLM judges for verdicts",
	Long: `Verify loads a snapshot of enriched edits and runs every edit past a
panel of LLM judges over OpenRouter. Each judge may search the web and
fetch pages before committing to a structured verdict. One YAML verdict
file is written per (edit, judge) unit, and a checkpoint file makes
interrupted runs resumable.

Requires OPENROUTER_API_KEY.

Example:
  vigil verify --snapshot snapshots/2026-02-19-120000-patrol.yaml
  vigil verify --snapshot snap.yaml --models deepseek/deepseek-v3.2 --limit 5
  vigil verify --snapshot snap.yaml --dry-run`,
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().StringVar(&verifySnapshot, "snapshot", "", "snapshot file to verify (required)")
	_ = verifyCmd.MarkFlagRequired("snapshot")
	verifyCmd.Flags().StringSliceVar(&verifyModels, "models", nil, "judge models (default: config judges.models)")
	verifyCmd.Flags().IntVar(&verifyLimit, "limit", 0, "max edits to process (0 = all)")
	verifyCmd.Flags().DurationVar(&verifyTimeout, "timeout", 0, "wall clock budget per (edit, judge) unit (default: config judges.unit_timeout)")
	verifyCmd.Flags().StringVar(&verifyPromptFile, "prompt", "", "system prompt file (default: built-in prompt)")
	verifyCmd.Flags().StringVar(&verifyOutputDir, "output-dir", "", "verdict directory (default: config paths.verdict_dir)")
	verifyCmd.Flags().StringVar(&verifyCheckpoint, "checkpoint", "", "checkpoint file (default: config paths.checkpoint_file)")
	verifyCmd.Flags().BoolVar(&verifyDryRun, "dry-run", false, "list planned units without calling any judge")
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	models := verifyModels
	if len(models) == 0 {
		models = cfg.Judges.Models
	}
	unitTimeout := verifyTimeout
	if unitTimeout == 0 {
		unitTimeout = cfg.Judges.UnitTimeout
	}
	verdictDir := verifyOutputDir
	if verdictDir == "" {
		verdictDir = cfg.Paths.VerdictDir
	}
	checkpoint := verifyCheckpoint
	if checkpoint == "" {
		checkpoint = cfg.Paths.CheckpointFile
	}
	promptFile := verifyPromptFile
	if promptFile == "" {
		promptFile = cfg.Judges.PromptFile
	}

	snapshot, err := pipeline.LoadSnapshot(verifySnapshot)
	if err != nil {
		return err
	}
	edits := snapshot.Edits
	if verifyLimit > 0 && len(edits) > verifyLimit {
		edits = edits[:verifyLimit]
	}

	if verifyDryRun {
		fmt.Printf("Dry run: would process %d edits across %d models\n", len(edits), len(models))
		for _, e := range edits {
			property := ""
			if e.ParsedEdit != nil {
				property = e.ParsedEdit.Property
			}
			fmt.Printf("  %s %s\n", e.Title, property)
		}
		fmt.Printf("Models: %v\n", models)
		return nil
	}

	apiKey := os.Getenv("OPENROUTER_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("OPENROUTER_API_KEY environment variable not set")
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Vigil Verdict Fan-out\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Snapshot:     %s\n", verifySnapshot)
	fmt.Fprintf(os.Stderr, "  Edits:        %d of %d (fetched %s)\n", len(edits), snapshot.Count, snapshot.FetchDate)
	fmt.Fprintf(os.Stderr, "  Models:       %d\n", len(models))
	fmt.Fprintf(os.Stderr, "  Unit timeout: %s\n", unitTimeout)
	fmt.Fprintf(os.Stderr, "  Verdict dir:  %s\n", verdictDir)
	fmt.Fprintf(os.Stderr, "\n")

	prompt, err := judge.LoadPrompt(promptFile)
	if err != nil {
		return err
	}

	executor, err := buildToolExecutor(cfg)
	if err != nil {
		return err
	}

	j := judge.NewJudge(cfg, apiKey, executor, prompt)
	opts := runner.Options{
		Models:      models,
		UnitTimeout: unitTimeout,
		VerdictDir:  verdictDir,
		Checkpoint:  checkpoint,
	}

	stats, err := runner.NewRunner(j, os.Stdout).Run(context.Background(), edits, opts)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Run Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Completed: %d\n", stats.Completed)
	fmt.Fprintf(os.Stderr, "  Skipped:   %d\n", stats.Skipped)
	fmt.Fprintf(os.Stderr, "  Timeouts:  %d\n", stats.Timeouts)
	fmt.Fprintf(os.Stderr, "  Errors:    %d\n", stats.Errors)
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Verdicts written to: %s\n", verdictDir)
	fmt.Fprintf(os.Stderr, "\n")
	return nil
}

// buildToolExecutor wires the judges' web_search and web_fetch tools:
// shared per-domain rate limiting, the domain blocklist, and robots.txt
// checking when enabled.
func buildToolExecutor(cfg *model.Config) (*tools.Executor, error) {
	blocklist, err := tools.LoadBlocklist(cfg.Fetch.BlockedDomainsFile)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
	}
	httpClient := &http.Client{Timeout: cfg.HTTP.Timeout, Transport: transport}

	limiter := worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	var robots *util.RobotsChecker
	if cfg.Fetch.RespectRobots {
		robots = util.NewRobotsChecker(httpClient, cfg.HTTP.UserAgent)
	}

	searcher := tools.NewSearcher(cfg, httpClient, limiter, blocklist)
	fetcher := tools.NewFetcher(cfg, httpClient, limiter, robots, blocklist)
	return tools.NewExecutor(searcher, fetcher), nil
}
