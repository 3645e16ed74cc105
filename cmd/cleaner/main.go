package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	applog "telegram-cleaner/internal/log"
	"telegram-cleaner/internal/pkg/config"
	"telegram-cleaner/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:          "cleaner",
		Short:        "Bulk cleanup and backup tool for a Telegram account",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", config.DefaultConfigFile, "path to config file")

	root.AddCommand(newCleanCommand(&cfgPath))
	root.AddCommand(newBackupCommand(&cfgPath))

	return root
}

// setup загружает и проверяет конфигурацию, настраивает глобальный
// логгер с маскировкой секретов и создает клиент Telegram.
func setup(cfgPath string) (*config.Config, *telegram.Client, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	logger := applog.NewMaskedLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	client := telegram.NewClient(telegram.Config{
		APIID:       cfg.Telegram.APIID,
		APIHash:     cfg.Telegram.APIHash,
		PhoneNumber: cfg.Telegram.PhoneNumber,
		SessionPath: cfg.Telegram.SessionFile,
	},
		telegram.WithLogger(logger),
		telegram.WithDialogPageSize(cfg.Cleaning.PageSize),
		telegram.WithHistoryPageSize(cfg.Backup.PageSize),
	)

	return cfg, client, nil
}
