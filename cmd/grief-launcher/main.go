package main

import (
	"context"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/griefbot/grief/config"
	"github.com/griefbot/grief/launcher"
)

func main() {
	var (
		configPath string
		botPath    string
	)

	rootCmd := &cobra.Command{
		Use:          "grief-launcher",
		Short:        "Runs the grief bot and restarts it on request or after a crash",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, botPath)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "path to the config file passed to the bot")
	rootCmd.Flags().StringVar(&botPath, "bot", "", "path to the grief binary (default: next to this binary, then $PATH)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, botPath string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	binary, err := findBot(botPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	l := launcher.New(&launcher.Config{
		Binary:   binary,
		Args:     []string{"--config", configPath},
		LockPath: filepath.Join(filepath.Dir(configPath), "grief.lock"),
		Log:      log,
	})
	return l.Run(ctx)
}

// findBot locates the grief binary: an explicit path wins, then a sibling
// of the launcher binary, then $PATH.
func findBot(botPath string) (string, error) {
	if botPath != "" {
		return botPath, nil
	}

	if self, err := os.Executable(); err == nil {
		sibling := filepath.Join(filepath.Dir(self), "grief")
		if _, err := os.Stat(sibling); err == nil {
			return sibling, nil
		}
	}
	return exec.LookPath("grief")
}

func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
