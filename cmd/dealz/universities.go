package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(universitiesCmd)
	rootCmd.AddCommand(whoamiCmd)
}

var universitiesCmd = &cobra.Command{
	Use:   "universities",
	Short: "List supported universities",
	Long:  "List the universities you can register under. Needed for 'dealz register --university'.",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getAnonClient()
		unis, err := client.Universities().List(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list universities: %w", err)
		}
		for _, u := range unis {
			fmt.Printf("#%-4d %-40s %s\n", u.ID, u.Name, u.Location)
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _ := getClient()
		user, err := client.Users().Get(cmd.Context(), client.Session().UserID)
		if err != nil {
			return fmt.Errorf("failed to fetch profile: %w", err)
		}
		fmt.Printf("%s <%s>\n", user.Name, user.Email)
		if user.UniversityName != "" {
			fmt.Printf("University: %s\n", user.UniversityName)
		}
		if !user.EmailVerified {
			fmt.Println("Email not verified yet. Run 'dealz verify <email> <otp>'.")
		}
		return nil
	},
}
