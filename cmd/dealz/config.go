package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	dealz "github.com/collegedealz/dealz-go"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Dealz configuration",
	Long:  "View or modify the Dealz CLI configuration stored in ~/.dealz/config.toml.",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := dealz.NewStateStore("")
		if err != nil {
			return err
		}
		data, err := os.ReadFile(store.Path())
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No configuration file found. Run 'dealz login <email> <password>' to create one.")
				return nil
			}
			return fmt.Errorf("cannot read config file: %w", err)
		}
		fmt.Print(string(data))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long:  "Set a configuration value using dot notation.\nExample: dealz config set server.base_url http://localhost:8080",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		store, state, err := loadState()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := setStateValue(state, key, value); err != nil {
			return err
		}

		if err := store.Save(state); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}

		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	},
}

// setStateValue sets a state field using dot notation (e.g. "ui.theme").
func setStateValue(state *dealz.State, key, value string) error {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) != 2 {
		return fmt.Errorf("key must use dot notation: section.field (e.g. ui.theme)")
	}
	section, field := parts[0], parts[1]

	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return false, fmt.Errorf("%s expects true or false", key)
		}
		return b, nil
	}

	switch section {
	case "server":
		switch field {
		case "base_url":
			state.Server.BaseURL = value
		default:
			return fmt.Errorf("unknown field %q in section [server]", field)
		}
	case "ui":
		switch field {
		case "theme":
			if value != "dark" && value != "light" {
				return fmt.Errorf("theme must be dark or light")
			}
			state.UI.Theme = value
		case "seen_wantlist_tour":
			b, err := parseBool()
			if err != nil {
				return err
			}
			state.UI.SeenWantlistTour = b
		case "seen_wantlist_page_tour":
			b, err := parseBool()
			if err != nil {
				return err
			}
			state.UI.SeenWantlistPageTour = b
		default:
			return fmt.Errorf("unknown field %q in section [ui]", field)
		}
	case "auth":
		return fmt.Errorf("auth state is managed by 'dealz login' and 'dealz logout'")
	default:
		return fmt.Errorf("unknown config section %q (valid: server, ui)", section)
	}
	return nil
}
