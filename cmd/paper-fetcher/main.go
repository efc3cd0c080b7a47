// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-fetcher CLI. The root
// command runs a PubMed query end to end: LLM query refinement, search,
// per-paper metadata and abstract retrieval, the non-academic author
// heuristic, LLM summaries, and console or CSV output.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-fetcher/internal/affiliation"
	"github.com/pdiddy/paper-fetcher/internal/archive"
	"github.com/pdiddy/paper-fetcher/internal/fetch"
	"github.com/pdiddy/paper-fetcher/internal/llm"
	"github.com/pdiddy/paper-fetcher/internal/output"
	"github.com/pdiddy/paper-fetcher/internal/pubmed"
	"github.com/pdiddy/paper-fetcher/internal/secrets"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile string
	debug   bool
	logger  = slog.Default()

	// loadedSecrets holds keys read from .secrets/ at startup.
	loadedSecrets secrets.Secrets
)

// rootCmd fetches papers for the query given as positional arguments.
var rootCmd = &cobra.Command{
	Use:   "paper-fetcher [flags] <query...>",
	Short: "Fetch PubMed papers with non-academic authors",
	Long: `paper-fetcher searches PubMed for a query and reports, for each paper,
the authors whose affiliations look non-academic, their companies, a
contact email, and a short LLM summary of the abstract.

The query is refined by the LLM before searching unless --no-llm is set.
Results print to the console, or to a CSV file with -f.
Any failure is logged and exits with status 1; LLM failures never abort
a run and fall back to the original query or a placeholder summary.

Example usage:
  paper-fetcher "cancer immunotherapy antibodies"
  paper-fetcher -f results.csv crispr off-target effects
  paper-fetcher --format table --no-llm "mRNA vaccine"
  paper-fetcher --archive runs.db "antibody discovery"
  paper-fetcher history --archive runs.db`,
	Args:          queryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogging(cmd.ErrOrStderr(), debug)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}

		return initConfig(viper.GetViper(), cfgFile)
	},
	RunE: runFetch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./paper-fetcher.yaml or ~/.config/paper-fetcher/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	registerFlags(rootCmd)

	if err := bindFlags(viper.GetViper(), rootCmd); err != nil {
		panic(err)
	}
}

// setupLogging installs the process-wide text logger on w.
func setupLogging(w io.Writer, debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// queryArgs requires at least one non-blank query word.
func queryArgs(cmd *cobra.Command, args []string) error {
	if joinQuery(args) == "" {
		return fmt.Errorf("a search query is required")
	}
	return nil
}

// joinQuery joins positional words into one query string.
func joinQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	pipeline, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), joinQuery(args))
	if err != nil {
		return err
	}

	if err := emit(cmd.OutOrStdout(), cfg.Output, res.Papers); err != nil {
		return err
	}

	if cfg.Archive.Path != "" {
		return archiveRun(cmd.Context(), cfg.Archive.Path, res)
	}
	return nil
}

// newPipeline wires the stages for cfg. A missing OpenAI key is an error
// unless the LLM is disabled; no network call happens here.
func newPipeline(cfg types.Config, log *slog.Logger) (*fetch.Pipeline, error) {
	var backend llm.Backend = llm.Disabled{}
	if !cfg.LLM.Disabled {
		b, err := llm.NewOpenAIBackend(cfg.LLM, nil)
		if err != nil {
			return nil, fmt.Errorf("configuring LLM: %w (set OPENAI_API_KEY or pass --no-llm)", err)
		}
		backend = b
	}

	return &fetch.Pipeline{
		Source:     pubmed.NewClient(cfg.PubMed, nil, log),
		Enhancer:   &llm.Enhancer{Backend: backend, Logger: log},
		Summarizer: &llm.Summarizer{Backend: backend, Logger: log},
		Classifier: affiliation.NewClassifier(cfg.Affiliation.AcademicKeywords),
		Logger:     log,
	}, nil
}

// emit writes papers as CSV when a file is configured, otherwise to out in
// the configured console format.
func emit(out io.Writer, cfg types.OutputConfig, papers []types.PaperResult) error {
	if cfg.File != "" {
		if err := output.SaveCSV(cfg.File, papers); err != nil {
			return err
		}
		logger.Info("saved papers", "path", cfg.File, "count", len(papers))
		return nil
	}

	p := &output.Printer{Out: out, Format: cfg.Format, UseColors: !color.NoColor}
	return p.Print(papers)
}

func archiveRun(ctx context.Context, path string, res fetch.Result) error {
	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.Record(ctx, archive.Run{
		Query:        res.Query,
		RefinedQuery: res.RefinedQuery,
		StartedAt:    res.StartedAt,
	}, res.Papers)
	if err != nil {
		return fmt.Errorf("archiving run: %w", err)
	}
	logger.Info("archived run", "id", id, "path", path)
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}
