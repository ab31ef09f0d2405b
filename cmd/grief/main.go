package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/griefbot/grief/bot"
	"github.com/griefbot/grief/cogs/audio"
	"github.com/griefbot/grief/cogs/cleanup"
	"github.com/griefbot/grief/cogs/core"
	"github.com/griefbot/grief/cogs/economy"
	"github.com/griefbot/grief/cogs/mod"
	"github.com/griefbot/grief/cogs/serverlog"
	"github.com/griefbot/grief/cogs/warnings"
	"github.com/griefbot/grief/config"
	"github.com/griefbot/grief/database"
	"github.com/griefbot/grief/kvstore"
	"github.com/griefbot/grief/lavalink"
	"github.com/griefbot/grief/modlog"
)

func main() {
	var (
		configPath string
		debug      bool
	)

	rootCmd := &cobra.Command{
		Use:          "grief",
		Short:        "grief is a moderation and music bot for Discord",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, debug)
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "path to the config file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath string, debug bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("run `grief-setup` first: %w", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return err
	}

	log, err := newLogger(cfg.LogLevel, debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.NewSqliteDatabase(&database.Config{
		Path: cfg.DatabasePath,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	store, err := kvstore.NewStore(cfg.KVStoreDir(), log.Named("kvstore"))
	if err != nil {
		return fmt.Errorf("open kvstore: %w", err)
	}
	defer store.Close()

	b, err := bot.NewBot(&bot.Config{
		Config: cfg,
		DB:     db,
		Store:  store,
		Log:    log.Named("bot"),
	})
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	ml := modlog.New(db, log.Named("modlog"))
	cogs := []bot.Cog{
		core.New(db, log),
		serverlog.New(store, log),
		warnings.New(db, ml, log),
		mod.New(db, ml, log),
		economy.New(db, log),
		cleanup.New(log),
	}

	var node *lavalink.Client
	if cfg.Lavalink.Enabled {
		node = lavalink.NewClient(&lavalink.Config{
			Address:  cfg.Lavalink.Address,
			Password: cfg.Lavalink.Password,
			Log:      log.Named("lavalink"),
		})
		cogs = append(cogs, audio.New(node, log))
	}

	for _, cog := range cogs {
		if err := b.RegisterCog(cog); err != nil {
			return err
		}
	}

	if err := b.Run(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	defer b.Close()

	if node != nil {
		node.SetUserID(botUserID(b))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		if err := node.Connect(ctx); err != nil {
			log.Error("failed to connect to lavalink node", zap.Error(err))
		} else {
			defer node.Close()
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case code := <-b.Done():
		log.Info("exiting", zap.Int("code", code))
		closeAll(b, store, db, node)
		os.Exit(code)
	case s := <-sig:
		log.Info("received signal", zap.String("signal", s.String()))
	}
	return nil
}

// closeAll runs the shutdown sequence by hand since os.Exit skips deferred
// calls.
func closeAll(b *bot.Bot, store *kvstore.Store, db database.DB, node *lavalink.Client) {
	b.Close()
	if node != nil {
		_ = node.Close()
	}
	_ = store.Close()
	_ = db.Close()
}

func botUserID(b *bot.Bot) string {
	if u := b.Discord().Sess.State.User; u != nil {
		return u.ID
	}
	return ""
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	switch level {
	case "debug":
		lvl = zapcore.DebugLevel
	case "warn":
		lvl = zapcore.WarnLevel
	case "error":
		lvl = zapcore.ErrorLevel
	}
	if debug {
		lvl = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg.Build()
}
