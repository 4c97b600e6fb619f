package main

import (
	"context"
	"fmt"
	"time"

	dealz "github.com/collegedealz/dealz-go"
	"github.com/spf13/cobra"
)

var (
	productsSearch    string
	productsCategory  string
	productsCondition string
	productsMinPrice  float64
	productsMaxPrice  float64
	productsSort      string
	productsMine      bool
)

func init() {
	rootCmd.AddCommand(productsCmd)
	rootCmd.AddCommand(productCmd)
	productsCmd.Flags().StringVar(&productsSearch, "search", "", "full-text search instead of the university feed")
	productsCmd.Flags().StringVar(&productsCategory, "category", "", "filter by category")
	productsCmd.Flags().StringVar(&productsCondition, "condition", "", "filter by condition")
	productsCmd.Flags().Float64Var(&productsMinPrice, "min-price", 0, "minimum price")
	productsCmd.Flags().Float64Var(&productsMaxPrice, "max-price", 0, "maximum price")
	productsCmd.Flags().StringVar(&productsSort, "sort", "", "sort field (price, postDate)")
	productsCmd.Flags().BoolVar(&productsMine, "mine", false, "show your own listings")
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse listings at your university",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _ := getClient()
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		var (
			products []dealz.Product
			err      error
		)
		switch {
		case productsMine:
			products, err = client.Products().ListForSeller(ctx)
		case productsSearch != "":
			products, err = client.Products().Search(ctx, productsSearch)
		default:
			products, err = client.Products().ListForUniversity(ctx, &dealz.ProductFilter{
				Category:  productsCategory,
				Condition: productsCondition,
				MinPrice:  productsMinPrice,
				MaxPrice:  productsMaxPrice,
				SortBy:    productsSort,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to list products: %w", err)
		}

		if len(products) == 0 {
			fmt.Println("No listings found.")
			return nil
		}
		for _, p := range products {
			fmt.Printf("#%-5d %-40s %8.2f  %s\n", p.ID, truncate(p.Name, 40), p.Price, p.SellerName)
			if p.Condition != "" || p.Category != "" {
				fmt.Printf("       %s · %s\n", p.Condition, p.Category)
			}
		}
		fmt.Printf("\n%d listing(s). Use 'dealz product <id>' for details.\n", len(products))
		return nil
	},
}

var productCmd = &cobra.Command{
	Use:   "product <id>",
	Short: "Show one listing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		client, _ := getClient()
		p, err := client.Products().Get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("failed to fetch product: %w", err)
		}

		fmt.Printf("%s  (#%d)\n", p.Name, p.ID)
		fmt.Printf("  Price:     %.2f\n", p.Price)
		if p.Condition != "" {
			fmt.Printf("  Condition: %s", p.Condition)
			if p.MonthsOld > 0 {
				fmt.Printf(" (%d months old)", p.MonthsOld)
			}
			fmt.Println()
		}
		if p.Category != "" {
			fmt.Printf("  Category:  %s\n", p.Category)
		}
		fmt.Printf("  Seller:    %s (#%d)\n", p.SellerName, p.SellerID)
		if p.Description != "" {
			fmt.Printf("\n%s\n", p.Description)
		}
		fmt.Printf("\nStart a chat with the seller: dealz chats start %d %d\n", p.SellerID, p.ID)
		return nil
	},
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

func parseID(s string) (int, error) {
	var id int
	if _, err := fmt.Sscanf(s, "%d", &id); err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", s)
	}
	return id, nil
}
