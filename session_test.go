package dealz

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStateStoreRoundTrip(t *testing.T) {
	ss, err := NewStateStore(filepath.Join(t.TempDir(), ".dealz"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	t.Run("missing file loads zero state", func(t *testing.T) {
		st, err := ss.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if st.Session() != nil {
			t.Fatal("expected no session in zero state")
		}
	})

	t.Run("save and reload", func(t *testing.T) {
		st := &State{}
		st.SetSession(&Session{Token: "jwt", RefreshToken: "rjwt", UserID: 7})
		st.UI.Theme = "dark"
		st.UI.SeenWantlistTour = true
		st.Server.BaseURL = "http://localhost:8080"

		if err := ss.Save(st); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, err := ss.Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		sess := got.Session()
		if sess == nil || sess.Token != "jwt" || sess.UserID != 7 {
			t.Fatalf("unexpected session: %+v", sess)
		}
		if got.UI.Theme != "dark" || !got.UI.SeenWantlistTour || got.UI.SeenWantlistPageTour {
			t.Fatalf("unexpected ui state: %+v", got.UI)
		}
	})

	t.Run("clearing the session", func(t *testing.T) {
		st, _ := ss.Load()
		st.SetSession(nil)
		if err := ss.Save(st); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, _ := ss.Load()
		if got.Session() != nil {
			t.Fatal("expected session cleared")
		}
		if got.UI.Theme != "dark" {
			t.Fatal("clearing the session must not touch preferences")
		}
	})

	t.Run("file is TOML with sections", func(t *testing.T) {
		data, err := os.ReadFile(ss.Path())
		if err != nil {
			t.Fatalf("read state file: %v", err)
		}
		for _, section := range []string{"[auth]", "[ui]", "[server]"} {
			if !strings.Contains(string(data), section) {
				t.Errorf("state file missing %s section", section)
			}
		}
	})
}

func TestStateStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	ss, err := NewStateStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := os.WriteFile(ss.Path(), []byte("{not toml"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if _, err := ss.Load(); err == nil {
		t.Fatal("expected parse error")
	}
}
