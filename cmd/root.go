package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/surfloom-cli/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global

	// logger is replaced in PersistentPreRunE; the no-op default keeps
	// helpers usable outside a command run.
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "surfloom",
	Short: "SurfLoom CLI: fit response surfaces and chart them",
	Long: `SurfLoom fits a least-squares response plane over two predictor columns of a CSV/TSV/XLSX table,
classifies observations into response quartiles and renders the results as PNG/SVG/PDF charts with a
Markdown summary. Dashboards group several views so they can be rebuilt in one go.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "info"
		if cfg != nil && cfg.LogLevel != "" {
			level = cfg.LogLevel
		}
		l, err := newLogger(level, debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.surfloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// newLogger builds a production zap logger at level; debug forces debug level.
func newLogger(level string, debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	if debug {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}
