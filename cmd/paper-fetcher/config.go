// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-fetcher/internal/affiliation"
	"github.com/pdiddy/paper-fetcher/internal/llm"
	"github.com/pdiddy/paper-fetcher/internal/output"
	"github.com/pdiddy/paper-fetcher/internal/secrets"
	"github.com/pdiddy/paper-fetcher/pkg/types"
)

const envPrefix = "PAPER_FETCHER"

// flagKeys maps CLI flags to the config keys they override.
var flagKeys = map[string]string{
	"max-results": "pubmed.max_results",
	"model":       "llm.model",
	"no-llm":      "llm.disabled",
	"file":        "output.file",
	"format":      "output.format",
	"archive":     "archive.path",
}

// secretBindings lists config keys that may come from a .secrets/ file.
// The environment variables win over the file.
var secretBindings = []struct {
	key    string
	secret string
	env    []string
}{
	{"llm.api_key", secrets.OpenAIAPIKey, []string{envPrefix + "_LLM_API_KEY", "OPENAI_API_KEY"}},
	{"pubmed.api_key", secrets.NCBIAPIKey, []string{envPrefix + "_PUBMED_API_KEY", "NCBI_API_KEY"}},
	{"pubmed.email", secrets.NCBIEmail, []string{envPrefix + "_PUBMED_EMAIL", "NCBI_EMAIL"}},
}

// registerFlags declares the fetch flags on cmd. Output and archive flags
// are persistent so history subcommands share them.
func registerFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringP("file", "f", "", "write results to this CSV file instead of the console")
	pf.String("format", string(types.FormatText), "console format: text, table, json, yaml")
	pf.String("archive", "", "SQLite archive of past runs")

	f := cmd.Flags()
	f.Int("max-results", 100, "maximum PubMed IDs to fetch")
	f.String("model", llm.DefaultModel, "LLM model")
	f.Bool("no-llm", false, "skip LLM query enhancement and summaries")
}

// bindFlags binds the flags declared by registerFlags to their config keys.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag == nil {
			return fmt.Errorf("flag %q not registered", name)
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("binding flag %q: %w", name, err)
		}
	}
	return nil
}

// initConfig sets defaults, environment handling, and reads the config
// file. Only an explicitly named file is required to exist.
func initConfig(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("paper-fetcher")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "paper-fetcher"))
		}
	}

	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	logger.Debug("using config file", "path", v.ConfigFileUsed())
	return nil
}

// setDefaults registers every key so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("pubmed.base_url", "")
	v.SetDefault("pubmed.max_results", 100)
	v.SetDefault("pubmed.tool", "paper-fetcher")
	v.SetDefault("pubmed.email", "")
	v.SetDefault("pubmed.api_key", "")
	v.SetDefault("pubmed.timeout", 30*time.Second)
	v.SetDefault("pubmed.user_agent", "paper-fetcher/"+version)
	v.SetDefault("pubmed.requests_per_second", 0)
	v.SetDefault("pubmed.max_retries", 5)

	v.SetDefault("llm.model", llm.DefaultModel)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.disabled", false)

	v.SetDefault("affiliation.academic_keywords", affiliation.DefaultAcademicKeywords)

	v.SetDefault("output.file", "")
	v.SetDefault("output.format", string(types.FormatText))

	v.SetDefault("archive.path", "")
}

// loadConfig resolves the effective configuration. Precedence, highest
// first: flag, environment, secrets file, config file, default.
func loadConfig(v *viper.Viper, s secrets.Secrets) (types.Config, error) {
	for _, b := range secretBindings {
		if err := v.BindEnv(append([]string{b.key}, b.env...)...); err != nil {
			return types.Config{}, fmt.Errorf("binding env for %s: %w", b.key, err)
		}
		if val := s.Get(b.secret); val != "" && !anyEnvSet(b.env) {
			v.Set(b.key, val)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding config: %w", err)
	}

	format, err := output.ParseFormat(string(cfg.Output.Format))
	if err != nil {
		return types.Config{}, err
	}
	cfg.Output.Format = format

	if cfg.PubMed.MaxResults <= 0 {
		return types.Config{}, fmt.Errorf("max results must be positive, got %d", cfg.PubMed.MaxResults)
	}
	return cfg, nil
}

func anyEnvSet(names []string) bool {
	for _, n := range names {
		if os.Getenv(n) != "" {
			return true
		}
	}
	return false
}
