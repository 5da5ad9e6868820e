package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benjaminschreck/go-docmark/pkg/docmark"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "docmark",
	Short: "docmark - render .docx templates driven by comments",
	Long: `docmark fills Word documents with data. Every comment in the template
is a directive: a key path, a literal, a function call or a "path[]" that
repeats the commented range once per element.

Data is read from YAML or JSON; mappings keep the order they were written in.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: initConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (YAML); defaults to DOCMARK_* environment variables")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// initConfig installs the global configuration for the command being run.
func initConfig(cmd *cobra.Command, args []string) error {
	cfg := docmark.ConfigFromEnvironment()
	if cfgFile != "" {
		loaded, err := docmark.LoadConfigFile(cfgFile)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	docmark.SetGlobalConfig(cfg)
	return nil
}
