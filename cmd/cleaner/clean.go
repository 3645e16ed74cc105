package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"telegram-cleaner/internal/core/services"
)

// confirmPhrase — фраза, которую оператор обязан напечатать целиком
// перед запуском реальной очистки.
const confirmPhrase = "DELETE ALL"

func newCleanCommand(cfgPath *string) *cobra.Command {
	var (
		dryRun bool
		limit  int
		yes    bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Leave every group and channel and wipe every private chat",
		Long: "Iterates over all dialogs of the account and applies a destructive " +
			"action to each one: leaves channels and groups, deletes private chat " +
			"history for both sides. Run with --dry-run first.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, client, err := setup(*cfgPath)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("dry-run") {
				cfg.Cleaning.DryRun = dryRun
			}
			if cmd.Flags().Changed("limit") {
				cfg.Cleaning.DialogLimit = limit
			}

			if !cfg.Cleaning.DryRun && !yes {
				if !confirmCleanup(cmd) {
					return fmt.Errorf("cleanup not confirmed")
				}
			}

			ctx := cmd.Context()
			log := slog.Default()

			return client.Run(ctx, func(ctx context.Context) error {
				self, err := client.Self(ctx)
				if err != nil {
					return fmt.Errorf("fetch self: %w", err)
				}
				log.InfoContext(ctx, "Logged in",
					"user_id", self.ID, "username", self.Username, "dry_run", cfg.Cleaning.DryRun)

				exec := services.NewActionExecutor(client, cfg.Cleaning.DryRun,
					services.WithExecutorLogger(log))
				policy := services.NewFloodWaitPolicy(
					services.WithMaxAttempts(cfg.Cleaning.MaxRetries),
					services.WithActionPause(cfg.ActionPause()),
					services.WithPolicyLogger(log))
				cleaner := services.NewCleanerService(client, exec, policy,
					services.WithLimit(cfg.Cleaning.DialogLimit),
					services.WithCleanerLogger(log))

				processed, err := cleaner.CleanAll(ctx)
				if err != nil {
					return err
				}
				log.InfoContext(ctx, "Cleaning finished", "processed", processed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log intended actions without executing them")
	cmd.Flags().IntVar(&limit, "limit", 0, "process at most N dialogs (0 = no limit)")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the interactive confirmation")

	return cmd
}

// confirmCleanup требует от оператора напечатать подтверждающую фразу.
// Простое "y" здесь намеренно не принимается: операция необратима.
func confirmCleanup(cmd *cobra.Command) bool {
	fmt.Fprintf(cmd.OutOrStdout(),
		"This will IRREVERSIBLY leave all groups/channels and wipe all private chats.\n"+
			"Type %q to continue: ", confirmPhrase)

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil {
		return false
	}
	return strings.TrimSpace(line) == confirmPhrase
}
