package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	dealz "github.com/collegedealz/dealz-go"
)

var (
	notificationsAll   bool
	notificationsWatch bool
)

func init() {
	rootCmd.AddCommand(notificationsCmd)
	notificationsCmd.AddCommand(notificationsReadCmd)
	notificationsCmd.Flags().BoolVar(&notificationsAll, "all", false, "include notifications already read")
	notificationsCmd.Flags().BoolVar(&notificationsWatch, "watch", false, "poll for new notifications until interrupted")
}

var notificationsCmd = &cobra.Command{
	Use:     "notifications",
	Aliases: []string{"notifs"},
	Short:   "Show your notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _ := getClient()
		if notificationsWatch {
			return watchNotifications(cmd, client)
		}
		notifs, err := client.Notifications().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}

		unread := 0
		shown := 0
		for _, n := range notifs {
			if !n.IsRead {
				unread++
			}
			if n.IsRead && !notificationsAll {
				continue
			}
			printNotification(n)
			shown++
		}
		if shown == 0 {
			fmt.Println("No notifications.")
		}
		if unread > 0 {
			fmt.Printf("\n%d unread. Mark one read with 'dealz notifications read <id>'.\n", unread)
		}
		return nil
	},
}

// watchNotifications polls on an interval and prints anything not seen yet.
// Runs until the command context is cancelled (ctrl+c).
func watchNotifications(cmd *cobra.Command, client *dealz.Client) error {
	seen := make(map[int]bool)
	report := func() error {
		notifs, err := client.Notifications().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list notifications: %w", err)
		}
		for _, n := range notifs {
			if seen[n.ID] {
				continue
			}
			seen[n.ID] = true
			printNotification(n)
		}
		return nil
	}

	if err := report(); err != nil {
		return err
	}
	fmt.Println("Watching for new notifications. Press ctrl+c to stop.")

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case <-ticker.C:
			if err := report(); err != nil {
				fmt.Println(err)
			}
		}
	}
}

func printNotification(n dealz.Notification) {
	marker := " "
	if !n.IsRead {
		marker = "*"
	}
	fmt.Printf("%s #%-4d %-24s %s\n", marker, n.ID, truncate(n.Title, 24), truncate(n.Message, 50))
}

var notificationsReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a notification as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, _ := getClient()
		if err := client.Notifications().MarkAsRead(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to mark notification: %w", err)
		}
		fmt.Printf("Notification #%d marked as read.\n", id)
		return nil
	},
}
