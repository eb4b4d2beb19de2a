package search

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/api/apitest"
)

func TestDebounceCollapsesBurst(t *testing.T) {
	srv := apitest.New(t, "me")
	srv.AddUser("alice", "Alice", true)
	srv.AddUser("alicia", "Alicia", false)
	client, err := api.NewClient(srv.BaseURL(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	coord := NewCoordinator(client, DefaultMinChars, nil)
	deb := NewDebouncer(DefaultDelay, DefaultMinChars)

	// Five keystrokes inside the delay; each schedules its own timer.
	var scheduled []Request
	for _, q := range []string{"a", "al", "ali", "alic", "alice"} {
		if req, ok := deb.Input(q); ok {
			scheduled = append(scheduled, req)
		}
	}

	// Every timer eventually fires; only the survivor may search.
	var issued []string
	for _, req := range scheduled {
		if !deb.Ready(req) {
			continue
		}
		if _, err := coord.Search(context.Background(), req.Query); err != nil {
			t.Fatalf("search: %v", err)
		}
		issued = append(issued, req.Query)
	}
	if len(issued) != 1 || issued[0] != "alice" {
		t.Fatalf("issued queries: got %q want [alice]", issued)
	}
	if hits := srv.Hits(http.MethodGet, "/search/users/"); hits != 1 {
		t.Fatalf("search requests: got %d want 1", hits)
	}
}

func TestDebounceMinimumLength(t *testing.T) {
	deb := NewDebouncer(0, 0)
	if deb.Delay() != 250*time.Millisecond {
		t.Fatalf("delay: got %v", deb.Delay())
	}
	pending, ok := deb.Input("bo")
	if !ok {
		t.Fatal("expected two characters to schedule")
	}
	if _, ok := deb.Input(" b "); ok {
		t.Fatal("expected one character to short-circuit")
	}
	if deb.Ready(pending) {
		t.Fatal("short query must cancel the pending request")
	}
}

func TestDebounceCancel(t *testing.T) {
	deb := NewDebouncer(DefaultDelay, DefaultMinChars)
	req, _ := deb.Input("carol")
	deb.Cancel()
	if deb.Current(req.Seq) {
		t.Fatal("cancelled request must not be current")
	}
}

func TestSearchShortQueryIssuesNoRequest(t *testing.T) {
	srv := apitest.New(t, "me")
	client, err := api.NewClient(srv.BaseURL(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	coord := NewCoordinator(client, 2, nil)
	if _, err := coord.Search(context.Background(), "x"); !errors.Is(err, ErrQueryTooShort) {
		t.Fatalf("expected ErrQueryTooShort, got %v", err)
	}
	if hits := srv.Hits(http.MethodGet, "/search/users/"); hits != 0 {
		t.Fatalf("search requests: got %d want 0", hits)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	srv := apitest.New(t, "me")
	srv.AddUser("bob", "Bob", false)
	client, err := api.NewClient(srv.BaseURL(), nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	coord := NewCoordinator(client, 2, nil)
	first, err := coord.Open(context.Background(), "bob")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	second, err := coord.Open(context.Background(), "bob")
	if err != nil {
		t.Fatalf("open again: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("thread id: got %d want %d", second.ID, first.ID)
	}

	if _, err := coord.Open(context.Background(), "nobody"); api.Classify(err) != api.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
