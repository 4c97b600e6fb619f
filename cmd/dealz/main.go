package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dealz",
	Short: "College Dealz CLI",
	Long:  "Command-line interface for the College Dealz student marketplace.\nBrowse listings, manage your wantlist, and chat with buyers and sellers.",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
