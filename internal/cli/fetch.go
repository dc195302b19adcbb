package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/vigil/internal/cache"
	"github.com/ppiankov/vigil/internal/labels"
	"github.com/ppiankov/vigil/internal/model"
	"github.com/ppiankov/vigil/internal/pipeline"
	"github.com/ppiankov/vigil/internal/wikidata"
)

var (
	fetchUnpatrolled int
	fetchControl     int
	fetchTag         string
	fetchEnrich      bool
	fetchDryRun      bool
	fetchOutputDir   string
	fetchNoCache     bool
	fetchTimeout     time.Duration
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch unpatrolled statement edits and enrich them",
	Long: `Fetch lists recent statement edits by new editors from the Wikidata
recent-changes feed, optionally mixes in patrolled control edits by
established users, enriches every edit with revision diffs and
human-readable labels, and saves the batch as a YAML snapshot.

Example:
  vigil fetch -u 50 --enrich
  vigil fetch -u 30 -c 10
  vigil fetch --tag "new editor removing statement" --dry-run`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().IntVarP(&fetchUnpatrolled, "unpatrolled", "u", 10, "number of unpatrolled statement edits to fetch")
	fetchCmd.Flags().IntVarP(&fetchControl, "control", "c", 0, "number of patrolled control edits to mix in")
	fetchCmd.Flags().StringVarP(&fetchTag, "tag", "t", "", "fetch only edits carrying this recent-changes tag")
	fetchCmd.Flags().BoolVar(&fetchEnrich, "enrich", false, "enrich edits with revision diffs and labels")
	fetchCmd.Flags().BoolVar(&fetchDryRun, "dry-run", false, "list matching edits without saving a snapshot")
	fetchCmd.Flags().StringVarP(&fetchOutputDir, "output-dir", "o", "", "snapshot directory (default: config paths.snapshot_dir)")
	fetchCmd.Flags().BoolVar(&fetchNoCache, "no-cache", false, "bypass the revision cache")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Minute, "overall fetch and enrichment budget")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	cfg := loadConfig()
	if fetchOutputDir != "" {
		cfg.Paths.SnapshotDir = fetchOutputDir
	}
	if fetchNoCache {
		cfg.Cache.Enabled = false
	}

	client := wikidata.NewClient(cfg, buildCache(cfg))
	fetcher := pipeline.NewFetcher(client)

	fmt.Printf("Fetching %d unpatrolled statement edits...\n", fetchUnpatrolled)
	edits, err := fetcher.FetchUnpatrolled(ctx, fetchUnpatrolled, fetchTag)
	if err != nil {
		return fmt.Errorf("fetch unpatrolled edits: %w", err)
	}
	fmt.Printf("  Found %d edits\n", len(edits))

	label := "patrol"
	if fetchControl > 0 {
		fmt.Printf("Fetching %d patrolled control edits...\n", fetchControl)
		controls, err := fetcher.FetchControl(ctx, fetchControl)
		if err != nil {
			return fmt.Errorf("fetch control edits: %w", err)
		}
		if len(controls) < fetchControl {
			fmt.Fprintf(os.Stderr, "WARNING: requested %d control edits but only %d found\n", fetchControl, len(controls))
		}
		fmt.Printf("  Found %d control edits\n", len(controls))
		edits = append(edits, controls...)
		label = "mixed"
	}

	if fetchDryRun {
		for _, e := range edits {
			fmt.Printf("  %d %s by %s: %s\n", e.RCID, e.Title, e.User, truncateComment(e.Comment))
		}
		fmt.Printf("Dry run: %d edits, no snapshot written.\n", len(edits))
		return nil
	}

	if fetchEnrich && len(edits) > 0 {
		enrichAll(ctx, cfg, client, edits)
	}

	path, err := pipeline.SaveSnapshot(edits, label, cfg.Paths.SnapshotDir)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("Done.")
	return nil
}

// enrichAll groups edits by item and enriches group by group. A group
// whose revision fetches fail is reported and skipped; the run keeps
// going so one broken item never sinks a batch.
func enrichAll(ctx context.Context, cfg *model.Config, client *wikidata.Client, edits []*model.Edit) {
	groups := pipeline.GroupEdits(edits)
	fmt.Printf("  Enriching %d edits (%d groups) with item data...\n", len(edits), len(groups))

	resolver := labels.NewResolver(client, cfg.Wikidata.Languages)
	enricher := pipeline.NewEnricher(client, resolver)

	for i, group := range groups {
		fmt.Printf("    [group %d/%d, %d edit(s)] %s...", i+1, len(groups), len(group), group[0].Title)
		if err := enricher.EnrichGroup(ctx, group); err != nil {
			fmt.Printf(" ERROR: %v\n", err)
			continue
		}
		fmt.Println(" done")
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Label cache holds %d entities\n", resolver.Size())
	}
}

// buildCache assembles the revision cache. Nil disables caching.
func buildCache(cfg *model.Config) cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}
	dir := cfg.Cache.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cache.NewMemoryCache(cfg.Cache.TTL, 10*time.Minute)
		}
		dir = filepath.Join(home, ".vigil", "cache")
	}
	return cache.NewLayeredCache(cfg.Cache.TTL, dir, cache.NoExpiration)
}

func truncateComment(comment string) string {
	runes := []rune(comment)
	if len(runes) <= 80 {
		return comment
	}
	return string(runes[:80]) + "..."
}
