// Command botcoder is an interactive coding agent that edits a project
// through a language model.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/GeneralBots/botcoder/config"
)

var (
	flagConfig   string
	flagEnvFiles []string
	flagProject  string
	flagProvider string
	flagModel    string
	flagLogLevel string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "botcoder",
		Short:         "Coding agent that reads, patches and tests a project through an LLM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (.yaml, .toml or .json)")
	root.PersistentFlags().StringSliceVar(&flagEnvFiles, "env-file", nil, "Dotenv files to load (default .env)")
	root.PersistentFlags().StringVarP(&flagProject, "project", "p", "", "Project root (overrides config)")
	root.PersistentFlags().StringVar(&flagProvider, "provider", "", "LLM provider (overrides config)")
	root.PersistentFlags().StringVar(&flagModel, "model", "", "LLM model (overrides config)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")

	root.AddCommand(newChatCmd(), newApplyCmd(), newParseCmd(), newConfigCmd())
	return root
}

// loadConfig resolves the effective config from dotenv files, the config
// file, the environment and command line flags, in that order.
func loadConfig() (*config.Config, error) {
	if err := config.LoadDotEnv(flagEnvFiles...); err != nil {
		return nil, err
	}
	cfg, err := config.Resolve(flagConfig)
	if err != nil {
		return nil, err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config) {
	if flagProject != "" {
		cfg.ProjectPath = flagProject
	}
	if flagProvider != "" {
		cfg.Provider = flagProvider
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
}

func newLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := cfg.Logger(os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
