package main

import (
	"fmt"

	"fieldpro-backend/client"
	"fieldpro-backend/collection"
	"fieldpro-backend/models"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var notificationsCmd = &cobra.Command{
	Use:               "notifications",
	Short:             "In-app notifications",
	PersistentPreRunE: requireLogin,
}

var notificationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications; --status is read or unread",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := client.NewNotificationStore(collection.WithNotifier[models.Notification](notifier()))
		if err := store.Load(cmd.Context(), api.ListNotifications); err != nil {
			return err
		}
		all := store.Items()
		shown := store.View(collection.Criteria{Status: listStatus, Search: listSearch})

		t := newTable(cmd.OutOrStdout(), "WHEN", "TYPE", "TITLE", "MESSAGE", "")
		for _, n := range shown {
			mark := ""
			if !n.IsRead {
				mark = "*"
			}
			t.row(n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Type, n.Title, n.Message, mark)
		}
		t.flush()

		unread := collection.Count(all, func(n models.Notification) bool { return !n.IsRead })
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d unread\n", unread)
		return nil
	},
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <notification-id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid notification id: %w", err)
		}
		return api.MarkNotificationRead(cmd.Context(), id)
	},
}

func init() {
	addListFlags(notificationsListCmd)

	notificationsCmd.AddCommand(notificationsListCmd, notificationsReadCmd)
	rootCmd.AddCommand(notificationsCmd)
}
