package main

import (
	"fmt"
	"os"

	dealz "github.com/collegedealz/dealz-go"
)

// loadState reads ~/.dealz/config.toml, returning a zero state when the
// file does not exist yet.
func loadState() (*dealz.StateStore, *dealz.State, error) {
	store, err := dealz.NewStateStore("")
	if err != nil {
		return nil, nil, err
	}
	state, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	return store, state, nil
}

func clientOptions(state *dealz.State) []dealz.ClientOption {
	var opts []dealz.ClientOption
	if state.Server.BaseURL != "" {
		opts = append(opts, dealz.WithBaseURL(state.Server.BaseURL))
	}
	return opts
}

// getClient creates a client from the stored session. It exits when the
// user has not logged in.
func getClient() (*dealz.Client, *dealz.State) {
	_, state, err := loadState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load state: %v\n", err)
		os.Exit(1)
	}
	sess := state.Session()
	if sess == nil {
		fmt.Fprintln(os.Stderr, "Not logged in. Run 'dealz login <email> <password>' first.")
		os.Exit(1)
	}
	return dealz.NewClient(sess, clientOptions(state)...), state
}

// getAnonClient creates a sessionless client for the auth flow.
func getAnonClient() *dealz.Client {
	_, state, err := loadState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load state: %v\n", err)
		os.Exit(1)
	}
	return dealz.NewClient(nil, clientOptions(state)...)
}
