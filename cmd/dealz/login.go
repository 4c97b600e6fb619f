package main

import (
	"fmt"

	dealz "github.com/collegedealz/dealz-go"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(verifyCmd)

	registerCmd.Flags().StringVar(&registerName, "name", "", "display name")
	registerCmd.Flags().IntVar(&registerUniversity, "university", 0, "university id (see 'dealz universities')")
	registerCmd.MarkFlagRequired("name")
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Log in and store the session in ~/.dealz/config.toml",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getAnonClient()
		resp, err := client.Auth().Login(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		store, state, err := loadState()
		if err != nil {
			return err
		}
		state.SetSession(dealz.SessionFromAuth(resp))
		if err := store.Save(state); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (user %d)\n", args[0], resp.UserID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Discard the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, state, err := loadState()
		if err != nil {
			return err
		}
		state.SetSession(nil)
		if err := store.Save(state); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var (
	registerName       string
	registerUniversity int
)

var registerCmd = &cobra.Command{
	Use:   "register <email> <password>",
	Short: "Create an account with your university email",
	Long:  "Create an account. An OTP is mailed to the address; confirm it with 'dealz verify'.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getAnonClient()
		_, err := client.Auth().Register(cmd.Context(), &dealz.RegisterRequest{
			Name:         registerName,
			Email:        args[0],
			Password:     args[1],
			UniversityID: registerUniversity,
		})
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}
		fmt.Printf("Registered. Check %s for the verification code, then run 'dealz verify %s <otp>'.\n", args[0], args[0])
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify <email> <otp>",
	Short: "Verify your email with the mailed OTP",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := getAnonClient()
		resp, err := client.Auth().Verify(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}

		store, state, err := loadState()
		if err != nil {
			return err
		}
		state.SetSession(dealz.SessionFromAuth(resp))
		if err := store.Save(state); err != nil {
			return err
		}
		fmt.Println("Email verified. You are logged in.")
		return nil
	},
}
