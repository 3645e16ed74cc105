package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"telegram-cleaner/internal/backup"
)

func newBackupCommand(cfgPath *string) *cobra.Command {
	var (
		chat     string
		output   string
		messages bool
		members  bool
		toCloud  bool
	)

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Export a dialog to JSON files before cleaning it up",
		Long: "Resolves a dialog by @username and exports its message history " +
			"and member list to timestamped JSON files. Optionally sends the " +
			"files to the account's own cloud chat.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if chat == "" {
				return fmt.Errorf("--chat is required")
			}

			cfg, client, err := setup(*cfgPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				cfg.Backup.OutputDir = output
			}

			ctx := cmd.Context()
			log := slog.Default()

			return client.Run(ctx, func(ctx context.Context) error {
				self, err := client.Self(ctx)
				if err != nil {
					return fmt.Errorf("fetch self: %w", err)
				}
				log.InfoContext(ctx, "Logged in", "user_id", self.ID, "username", self.Username)

				exporter := backup.NewExporter(client, cfg.Backup.OutputDir,
					backup.WithLogger(log))
				res, err := exporter.Export(ctx, chat, backup.Options{
					WithMessages: messages,
					WithMembers:  members,
					ToCloud:      toCloud,
				})
				if err != nil {
					return err
				}
				log.InfoContext(ctx, "Backup finished",
					"messages", res.Messages, "members", res.Members)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&chat, "chat", "", "dialog to back up: @username, or me/self for the cloud chat")
	cmd.Flags().StringVar(&output, "output", "", "output directory (overrides config)")
	cmd.Flags().BoolVar(&messages, "messages", true, "export message history")
	cmd.Flags().BoolVar(&members, "members", false, "export the member list")
	cmd.Flags().BoolVar(&toCloud, "to-cloud", false, "send exported files to the cloud chat")

	return cmd
}
