package main

import (
	"fmt"

	dealz "github.com/collegedealz/dealz-go"
	"github.com/spf13/cobra"
)

var (
	wantlistCategory    string
	wantlistDescription string
	wantlistPriceMin    int
	wantlistPriceMax    int
	wantlistMonthsMax   int
)

func init() {
	rootCmd.AddCommand(wantlistCmd)
	wantlistCmd.AddCommand(wantlistAddCmd)
	wantlistCmd.AddCommand(wantlistRemoveCmd)

	wantlistAddCmd.Flags().StringVar(&wantlistCategory, "category", "", "product category")
	wantlistAddCmd.Flags().StringVar(&wantlistDescription, "description", "", "what exactly you are looking for")
	wantlistAddCmd.Flags().IntVar(&wantlistPriceMin, "min-price", 0, "minimum price you would pay")
	wantlistAddCmd.Flags().IntVar(&wantlistPriceMax, "max-price", 0, "maximum price you would pay")
	wantlistAddCmd.Flags().IntVar(&wantlistMonthsMax, "max-months-old", 0, "oldest acceptable age in months")
}

var wantlistCmd = &cobra.Command{
	Use:   "wantlist",
	Short: "Manage the items you are looking to buy",
	Long:  "List, add, or remove wantlist entries. Sellers matching an entry can reach out to you.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _ := getClient()
		items, err := client.Wantlist().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list wantlist: %w", err)
		}
		if len(items) == 0 {
			fmt.Println("Your wantlist is empty. Add an item with 'dealz wantlist add <name>'.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("#%-4d %-30s", item.ID, truncate(item.ProductName, 30))
			if item.PriceMax > 0 {
				fmt.Printf("  up to %d", item.PriceMax)
			}
			if item.Category != "" {
				fmt.Printf("  [%s]", item.Category)
			}
			fmt.Println()
		}
		return nil
	},
}

var wantlistAddCmd = &cobra.Command{
	Use:   "add <product-name>",
	Short: "Add an item to your wantlist",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _ := getClient()
		item, err := client.Wantlist().Add(cmd.Context(), &dealz.WantlistItem{
			ProductName:  args[0],
			Category:     wantlistCategory,
			Description:  wantlistDescription,
			PriceMin:     wantlistPriceMin,
			PriceMax:     wantlistPriceMax,
			MonthsOldMax: wantlistMonthsMax,
		})
		if err != nil {
			return fmt.Errorf("failed to add wantlist item: %w", err)
		}
		fmt.Printf("Added %q to your wantlist (#%d).\n", item.ProductName, item.ID)
		return nil
	},
}

var wantlistRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a wantlist entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, _ := getClient()
		if err := client.Wantlist().Remove(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to remove wantlist item: %w", err)
		}
		fmt.Printf("Removed wantlist entry #%d.\n", id)
		return nil
	},
}
