// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the kinetics-engine CLI.
// Implements: prd001-ratelaw, prd002-document, prd003-fitting,
//             prd004-results, prd005-compound (CLI surface).
// See docs/ARCHITECTURE § CLI Surface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/kinetics-engine/internal/secrets"
	"github.com/pdiddy/kinetics-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the kinetics-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "kinetics-engine",
	Short: "Infrastructure for enzyme-kinetics experiment documents",
	Long: `kinetics-engine manages enzyme-kinetics experiment documents: species,
reactions, measured time courses, and the rate-law models bound to each
reaction. Documents are stored as .omex archives that external fitting
engines consume directly.

Each concern is a subcommand: document, model, initvals, fit, results,
and compound. A typical session builds a document, binds rate-law
templates to its reactions, generates an initial-value file, runs one or
more fitting engines, and compares the recorded estimates.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./kinetics-engine.yaml or ~/.config/kinetics-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("kinetics-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "kinetics-engine"))
		}
	}

	viper.SetEnvPrefix("KINETICS_ENGINE")
	viper.AutomaticEnv()

	viper.SetDefault("archives.dir", "archives")
	viper.SetDefault("results.dir", "results")
	viper.SetDefault("results.max_results", 50)
	viper.SetDefault("fit.method", "levenberg-marquardt")
	viper.SetDefault("compound.timeout", "30s")
	viper.SetDefault("compound.user_agent", "kinetics-engine/"+version)
	viper.SetDefault("compound.max_retries", 4)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func archivesDir() string {
	return viper.GetString("archives.dir")
}

func fitConfig() types.FitConfig {
	return types.FitConfig{
		Engine:  viper.GetString("fit.engine"),
		Method:  viper.GetString("fit.method"),
		WorkDir: viper.GetString("fit.work_dir"),
	}
}

func resultsConfig() types.ResultsConfig {
	return types.ResultsConfig{
		ResultsDir: viper.GetString("results.dir"),
		MaxResults: viper.GetInt("results.max_results"),
	}
}

func compoundConfig() types.CompoundConfig {
	timeout, err := time.ParseDuration(viper.GetString("compound.timeout"))
	if err != nil {
		timeout = 30 * time.Second
	}
	return types.CompoundConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("compound.user_agent"),
		},
		APIKey:     secrets.Resolve(loadedSecrets, secrets.CompoundAPIKey),
		MaxRetries: viper.GetInt("compound.max_retries"),
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
