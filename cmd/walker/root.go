package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/revoverflow/walker/pkg/config"
	"github.com/revoverflow/walker/pkg/logging"
)

var (
	configPath string
	verbose    bool
	quiet      bool
)

// settings and logger are rebuilt before every command runs.
var (
	settings *config.Config
	logger   *logrus.Logger
)

// unboundAnnotation marks a flag that shares a name in flagKeys but is local
// to its command.
const unboundAnnotation = "walker_unbound"

// flagKeys maps command-line flags to configuration keys. Only flags present
// on the running command are bound.
var flagKeys = map[string]string{
	"log-level":        "log_level",
	"log-format":       "log_format",
	"workers":          "scan.workers",
	"byte-order":       "scan.byte_order",
	"prefilter":        "scan.prefilter",
	"max-file-size":    "scan.max_file_size",
	"include-hidden":   "scan.include_hidden",
	"follow-symlinks":  "scan.follow_symlinks",
	"extract-archives": "scan.extract_archives",
	"output":           "output.path",
	"format":           "output.format",
	"datastore":        "output.datastore",
	"color":            "output.color",
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "walker",
		Short: "Walker - structure layout scanner for raw memory and binary buffers",
		Long: `Walker slides a typed field layout over raw bytes (memory dumps, files,
archive members, capture payloads, blobs) and reports every offset where all
fields of the layout match their criteria.`,
		PersistentPreRunE: setup,
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./walker.yaml or $HOME/.walker/walker.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "text", "Log format: text, json")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode (errors only)")

	// Add subcommands
	cmd.AddCommand(newScanCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newStructuresCmd())
	cmd.AddCommand(newMergeCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration for cmd and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	v := config.New()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if err := config.ReadFile(v, configPath); err != nil {
		return err
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return err
	}

	l, err := logging.New(logging.Config{
		Level:  logging.ResolveLevel(cfg.LogLevel, verbose, quiet),
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	settings = cfg
	logger = l
	return nil
}

// localFlag excludes name from configuration binding.
func localFlag(cmd *cobra.Command, name string) {
	_ = cmd.Flags().SetAnnotation(name, unboundAnnotation, []string{"true"})
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		f := flags.Lookup(flag)
		if f == nil || len(f.Annotations[unboundAnnotation]) > 0 {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", flag, err)
		}
	}
	return nil
}
