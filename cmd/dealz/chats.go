package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/collegedealz/dealz-go/cmd/dealz/ui"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(chatsCmd)
	chatsCmd.AddCommand(chatsStartCmd)
	rootCmd.AddCommand(chatCmd)
}

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "List your conversations",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _ := getClient()
		userID := client.Session().UserID

		chats, err := client.Chats().ListForUser(cmd.Context(), userID)
		if err != nil {
			return fmt.Errorf("failed to list chats: %w", err)
		}
		if len(chats) == 0 {
			fmt.Println("No conversations yet.")
			return nil
		}

		for _, c := range chats {
			last := c.LastMessage()
			preview := last.Content
			if preview == "" {
				preview = "(no messages)"
			}
			fmt.Printf("#%-4d %-20s", c.ChatID, truncate(c.PeerName(userID), 20))
			if c.ProductName != "" {
				fmt.Printf(" [%s]", truncate(c.ProductName, 24))
			}
			fmt.Printf("  %s\n", truncate(preview, 50))
		}
		fmt.Printf("\n%d conversation(s). Open one with 'dealz chat <id>'.\n", len(chats))
		return nil
	},
}

var chatsStartCmd = &cobra.Command{
	Use:   "start <seller-id> <product-id>",
	Short: "Start (or resume) a conversation about a listing",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sellerID, err := parseID(args[0])
		if err != nil {
			return err
		}
		productID, err := parseID(args[1])
		if err != nil {
			return err
		}

		client, _ := getClient()
		chat, err := client.Chats().FindOrCreate(cmd.Context(), client.Session().UserID, sellerID, productID)
		if err != nil {
			return fmt.Errorf("failed to start chat: %w", err)
		}
		fmt.Printf("Chat #%d with %s is ready. Open it with 'dealz chat %d'.\n",
			chat.ChatID, chat.PeerName(client.Session().UserID), chat.ChatID)
		return nil
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat <id>",
	Short: "Open a conversation",
	Long:  "Open a live conversation. Messages arrive over WebSocket when the backend is reachable and fall back to polling when it is not.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID(args[0])
		if err != nil {
			return err
		}

		client, state := getClient()
		live, err := client.OpenChat(cmd.Context(), chatID)
		if err != nil {
			return fmt.Errorf("failed to open chat: %w", err)
		}
		defer live.Close()

		ui.SetTheme(state.UI.Theme)
		model := ui.NewChatModel(live, client.Session().UserID)
		p := tea.NewProgram(model, tea.WithAltScreen())
		live.OnUpdate(func() { p.Send(ui.RefreshMsg{}) })

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("chat ui: %w", err)
		}
		return nil
	},
}
