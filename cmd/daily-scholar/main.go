// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the daily-scholar CLI. Each pipeline
// stage is a subcommand: collect, rank, analyze, and run for the whole
// batch; serve repeats run on a daily schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"syscall"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/daily-scholar/internal/secrets"
	"github.com/pdiddy/daily-scholar/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials from .secrets/, the environment, and .env.
var loadedSecrets secrets.Set

// rootCmd is the base command for the daily-scholar CLI.
var rootCmd = &cobra.Command{
	Use:   "daily-scholar",
	Short: "Daily digest of newly submitted research papers",
	Long: `daily-scholar collects newly submitted papers from arXiv and ChemRxiv,
ranks them with a weighted quality score, asks a text-generation API to
classify, summarize and translate the top papers, and writes CSV and HTML
reports. The report can be emailed and runs are recorded in a local
history database.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.LoadAll(".secrets/", ".env")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := s.Keys()
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./daily-scholar.yaml or ~/.config/daily-scholar/daily-scholar.yaml)")
	// Flag defaults match DefaultPipelineConfig; viper falls back to them
	// when neither the file nor the environment sets the key.
	defaults := types.DefaultPipelineConfig()
	rootCmd.PersistentFlags().String("log-level", defaults.Log.Level, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", defaults.Log.Format, "log format: text or json")
	rootCmd.PersistentFlags().String("output-dir", defaults.Report.OutputDir, "directory for CSV, HTML and analysis files")

	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("report.output_dir", rootCmd.PersistentFlags().Lookup("output-dir"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("daily-scholar")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "daily-scholar"))
		}
	}

	viper.SetEnvPrefix("DAILY_SCHOLAR")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvKeys("", reflect.TypeOf(types.PipelineConfig{}))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindEnvKeys registers every mapstructure key of t with viper so that
// environment variables such as DAILY_SCHOLAR_ANALYZER_MODEL reach Unmarshal
// even when the config file does not mention the key.
func bindEnvKeys(prefix string, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == ",squash" {
			bindEnvKeys(prefix, f.Type)
			continue
		}
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() != "time" {
			bindEnvKeys(key, f.Type)
			continue
		}
		_ = viper.BindEnv(key)
	}
}

// loadConfig builds the pipeline configuration from defaults, the config
// file, environment variables, bound flags, and finally secrets for values
// that remain unset.
func loadConfig() (types.PipelineConfig, error) {
	cfg := types.DefaultPipelineConfig()
	// ZeroFields replaces default slices instead of overwriting them
	// element by element.
	zero := func(dc *mapstructure.DecoderConfig) { dc.ZeroFields = true }
	if err := viper.Unmarshal(&cfg, zero); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	applySecrets(&cfg, loadedSecrets, viper.IsSet)
	return cfg, nil
}

// applySecrets fills credentials from s. Values set explicitly in the
// config win over secrets.
func applySecrets(cfg *types.PipelineConfig, s secrets.Set, isSet func(string) bool) {
	if cfg.Analyzer.APIKey == "" {
		cfg.Analyzer.APIKey = s.Get(secrets.DeepSeekAPIKey)
	}
	if cfg.Email.Username == "" {
		cfg.Email.Username = s.Get(secrets.SMTPUsername)
	}
	if cfg.Email.Password == "" {
		cfg.Email.Password = s.Get(secrets.SMTPPassword)
	}
	if v := s.Get(secrets.SMTPServer); v != "" && !isSet("email.host") {
		cfg.Email.Host = v
	}
	if v := s.Get(secrets.SMTPRecipient); v != "" && len(cfg.Email.Recipients) == 0 {
		cfg.Email.Recipients = []string{v}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
