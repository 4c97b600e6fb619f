//go:build integration

package dealz_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	dealz "github.com/collegedealz/dealz-go"
)

// These tests run against a real College Dealz backend:
//
//	DEALZ_BASE_URL=http://localhost:8080 \
//	DEALZ_EMAIL=you@uni.edu DEALZ_PASSWORD=... \
//	go test -tags integration ./...

var (
	baseURL = envOr("DEALZ_BASE_URL", "http://localhost:8080")
	runID   = fmt.Sprintf("%d", time.Now().UnixNano()%1000000)
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loginClient(t *testing.T) *dealz.Client {
	t.Helper()
	email := os.Getenv("DEALZ_EMAIL")
	password := os.Getenv("DEALZ_PASSWORD")
	if email == "" || password == "" {
		t.Skip("DEALZ_EMAIL and DEALZ_PASSWORD not set")
	}

	anon := dealz.NewClient(nil, dealz.WithBaseURL(baseURL))
	resp, err := anon.Auth().Login(context.Background(), email, password)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return dealz.NewClient(dealz.SessionFromAuth(resp), dealz.WithBaseURL(baseURL))
}

func TestIntegrationChatRoundTrip(t *testing.T) {
	client := loginClient(t)
	ctx := context.Background()

	chats, err := client.Chats().ListForUser(ctx, client.Session().UserID)
	if err != nil {
		t.Fatalf("list chats: %v", err)
	}
	if len(chats) == 0 {
		t.Skip("account has no conversations")
	}

	live, err := client.OpenChat(ctx, chats[0].ChatID)
	if err != nil {
		t.Fatalf("open chat: %v", err)
	}
	defer live.Close()

	before := len(live.Messages())
	content := "integration ping " + runID
	sent, err := live.Send(ctx, content)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if sent.ID == "" {
		t.Fatal("expected a server id on the confirmed message")
	}
	if got := len(live.Messages()); got != before+1 {
		t.Fatalf("expected one new message, had %d now %d", before, got)
	}

	// The refetch must agree with the local list.
	history, err := client.Messages().ListForChat(ctx, chats[0].ChatID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	found := false
	for _, m := range history {
		if m.ID == sent.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("sent message %s missing from history", sent.ID)
	}
}

func TestIntegrationWantlistLifecycle(t *testing.T) {
	client := loginClient(t)
	ctx := context.Background()

	item, err := client.Wantlist().Add(ctx, &dealz.WantlistItem{
		ProductName: "integration desk lamp " + runID,
		Category:    "Furniture",
		PriceMax:    25,
	})
	if err != nil {
		t.Fatalf("add wantlist item: %v", err)
	}

	items, err := client.Wantlist().List(ctx)
	if err != nil {
		t.Fatalf("list wantlist: %v", err)
	}
	found := false
	for _, it := range items {
		if it.ID == item.ID {
			found = true
		}
	}
	if !found {
		t.Fatalf("item %d missing from wantlist", item.ID)
	}

	if err := client.Wantlist().Remove(ctx, item.ID); err != nil {
		t.Fatalf("remove wantlist item: %v", err)
	}
}
