package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"smellsense/internal/config"
	"smellsense/internal/service"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "smellsense",
		Short:        "Code smell classifier",
		Long:         `smellsense labels a class or method with exactly one code smell by fusing heuristic detectors with an optional learned classifier`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
				color.NoColor = true
			}
		},
	}

	root.PersistentFlags().String("config", "", "path to a YAML or TOML configuration file")
	root.PersistentFlags().String("log-level", "", "override the configured log level (debug|info|warn|error)")
	root.PersistentFlags().Bool("no-color", false, "disable colored output")

	root.AddCommand(newServeCmd())
	root.AddCommand(newClassifyCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newTaxonomyCmd())
	return root
}

// loadConfig reads the --config file and applies --log-level
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.App.LogLevel = level
	}
	return cfg, nil
}

// newLogger builds a production logger writing to the given sinks
func newLogger(level string, outputs ...string) (*zap.Logger, error) {
	cfgZap := zap.NewProductionConfig()
	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfgZap.Level.SetLevel(lvl)
	}
	cfgZap.OutputPaths = outputs
	return cfgZap.Build()
}

// openService loads the configuration and starts a SmellService. The
// returned func closes both the service and the logger.
func openService(cmd *cobra.Command, outputs ...string) (*service.SmellService, *config.Config, *zap.Logger, func(), error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(outputs) == 0 {
		// stdout is reserved for results
		outputs = []string{"stderr"}
	}
	logger, err := newLogger(cfg.App.LogLevel, outputs...)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	svc, err := service.NewSmellService(cmd.Context(), cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, nil, err
	}

	closeFn := func() {
		if err := svc.Close(context.Background()); err != nil {
			logger.Warn("Failed to close service", zap.Error(err))
		}
		_ = logger.Sync()
	}
	return svc, cfg, logger, closeFn, nil
}
