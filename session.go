package dealz

import (
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// Session carries the credentials for an authenticated user. It is built
// from a login response or loaded from a StateStore.
type Session struct {
	Token        string
	RefreshToken string
	UserID       int
}

// SessionFromAuth builds a Session from a successful auth response.
func SessionFromAuth(resp *AuthResponse) *Session {
	return &Session{
		Token:        resp.Token,
		RefreshToken: resp.RefreshToken,
		UserID:       resp.UserID,
	}
}

// ============================================================================
// State store
// ============================================================================

// State is the client state persisted between runs: the session, UI
// preferences and the server address.
type State struct {
	Auth   StateAuth   `toml:"auth"`
	UI     StateUI     `toml:"ui"`
	Server StateServer `toml:"server"`
}

// StateAuth holds the persisted session.
type StateAuth struct {
	Token        string `toml:"token"`
	RefreshToken string `toml:"refresh_token"`
	UserID       int    `toml:"user_id"`
}

// StateUI holds display preferences and one-time tour flags.
type StateUI struct {
	Theme                string `toml:"theme"`
	SeenWantlistTour     bool   `toml:"seen_wantlist_tour"`
	SeenWantlistPageTour bool   `toml:"seen_wantlist_page_tour"`
}

// StateServer holds the backend address.
type StateServer struct {
	BaseURL string `toml:"base_url"`
}

// Session returns the persisted session, or nil if none is stored.
func (s *State) Session() *Session {
	if s.Auth.Token == "" {
		return nil
	}
	return &Session{
		Token:        s.Auth.Token,
		RefreshToken: s.Auth.RefreshToken,
		UserID:       s.Auth.UserID,
	}
}

// SetSession replaces the persisted session. A nil session clears it.
func (s *State) SetSession(sess *Session) {
	if sess == nil {
		s.Auth = StateAuth{}
		return
	}
	s.Auth = StateAuth{
		Token:        sess.Token,
		RefreshToken: sess.RefreshToken,
		UserID:       sess.UserID,
	}
}

// StateStore reads and writes client state as TOML under a directory,
// ~/.dealz by default.
type StateStore struct {
	dir string
}

// NewStateStore returns a store rooted at dir. An empty dir selects
// ~/.dealz.
func NewStateStore(dir string) (*StateStore, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		dir = filepath.Join(home, ".dealz")
	}
	return &StateStore{dir: dir}, nil
}

// Path returns the full path to the state file.
func (ss *StateStore) Path() string {
	return filepath.Join(ss.dir, "config.toml")
}

// Load reads and parses the state file. If the file does not exist, it
// returns a zero-value State.
func (ss *StateStore) Load() (*State, error) {
	data, err := os.ReadFile(ss.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("cannot read state: %w", err)
	}
	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("cannot parse state: %w", err)
	}
	return &st, nil
}

// Save writes the state back to disk as TOML, creating the directory if
// needed.
func (ss *StateStore) Save(st *State) error {
	if err := os.MkdirAll(ss.dir, 0o700); err != nil {
		return fmt.Errorf("cannot create state directory: %w", err)
	}
	data, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("cannot marshal state: %w", err)
	}
	if err := os.WriteFile(ss.Path(), data, 0o600); err != nil {
		return fmt.Errorf("cannot write state: %w", err)
	}
	return nil
}
