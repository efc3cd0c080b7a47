// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-fetcher/internal/archive"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

const shortIDLen = 8

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs recorded in the archive",
	Long: `History lists runs recorded with --archive, newest first. Use the show
subcommand to reprint a run, or export to write it to a YAML or JSON file.
Run IDs may be abbreviated to any unambiguous prefix.`,
	Args: cobra.NoArgs,
	RunE: runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return formatRuns(cmd.OutOrStdout(), runs)
}

func formatRuns(w io.Writer, runs []archive.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No archived runs.")
		return err
	}

	fmt.Fprintf(w, "%-8s  %-20s  %6s  %s\n", "ID", "Started", "Papers", "Query")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, r := range runs {
		id := r.ID
		if len(id) > shortIDLen {
			id = id[:shortIDLen]
		}
		query := r.Query
		if r.RefinedQuery != "" && r.RefinedQuery != r.Query {
			query += " -> " + r.RefinedQuery
		}
		fmt.Fprintf(w, "%-8s  %-20s  %6d  %s\n",
			id, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.PaperCount, query)
	}
	noun := "runs"
	if len(runs) == 1 {
		noun = "run"
	}
	_, err := fmt.Fprintf(w, "\n%d %s\n", len(runs), noun)
	return err
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Reprint an archived run",
	Long: `Show prints the papers of an archived run through the same formatters as
a live run: --format for the console, or -f for a CSV file.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	papers, err := archivedPapers(cmd.Context(), store, args[0])
	if err != nil {
		return err
	}
	return emit(cmd.OutOrStdout(), cfg.Output, papers)
}

func archivedPapers(ctx context.Context, store *archive.Store, idPrefix string) ([]types.PaperResult, error) {
	run, err := store.Find(ctx, idPrefix)
	if err != nil {
		return nil, err
	}
	logger.Debug("archived run", "id", run.ID, "query", run.Query, "started_at", run.StartedAt)
	return store.Papers(ctx, run.ID)
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export <run-id> <path>",
	Short: "Export an archived run to YAML or JSON",
	Long: `Export writes one archived run, with its papers, to path. A .json
extension selects JSON; anything else is written as YAML.`,
	Args: cobra.ExactArgs(2),
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	store, err := openArchive()
	if err != nil {
		return err
	}
	defer store.Close()

	id, path := args[0], args[1]
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = store.ExportJSON(cmd.Context(), id, path)
	default:
		err = store.ExportYAML(cmd.Context(), id, path)
	}
	if err != nil {
		return err
	}
	logger.Info("exported run", "id", id, "path", path)
	return nil
}

// --- shared helpers ---

func openArchive() (*archive.Store, error) {
	path := viper.GetString("archive.path")
	if path == "" {
		return nil, fmt.Errorf("no archive configured: pass --archive or set archive.path")
	}
	return archive.Open(path)
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum runs to list")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}
