package store

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state", "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func TestSelectionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	sel := NewSelection(db, "alice")

	if _, ok, err := sel.Load(); err != nil || ok {
		t.Fatalf("expected empty selection, got ok=%v err=%v", ok, err)
	}
	if err := sel.Save(42); err != nil {
		t.Fatalf("save: %v", err)
	}
	id, ok, err := sel.Load()
	if err != nil || !ok || id != 42 {
		t.Fatalf("load: got %d %v %v want 42", id, ok, err)
	}

	raw, err := GetState(db, "alice", SelectedThreadKey)
	if err != nil {
		t.Fatalf("get state: %v", err)
	}
	if raw != "42" {
		t.Fatalf("stored value: got %q want %q", raw, "42")
	}

	if err := sel.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := sel.Load(); ok {
		t.Fatal("expected selection to be cleared")
	}
}

func TestSelectionIsScopedByAccount(t *testing.T) {
	db := openTestDB(t)
	alice := NewSelection(db, "alice")
	bob := NewSelection(db, "bob")

	if err := alice.Save(1); err != nil {
		t.Fatalf("save alice: %v", err)
	}
	if err := bob.Save(2); err != nil {
		t.Fatalf("save bob: %v", err)
	}
	if id, _, _ := alice.Load(); id != 1 {
		t.Fatalf("alice selection: got %d want 1", id)
	}
	if err := bob.Clear(); err != nil {
		t.Fatalf("clear bob: %v", err)
	}
	if id, ok, _ := alice.Load(); !ok || id != 1 {
		t.Fatalf("alice selection after bob clear: got %d %v", id, ok)
	}
}

func TestSelectionIgnoresMalformedValue(t *testing.T) {
	db := openTestDB(t)
	if err := SetState(db, "", SelectedThreadKey, "abc"); err != nil {
		t.Fatalf("set state: %v", err)
	}
	if _, ok, err := NewSelection(db, "").Load(); err != nil || ok {
		t.Fatalf("expected malformed value to read as empty, got ok=%v err=%v", ok, err)
	}
}

func TestSelectionFollowsAccountChanges(t *testing.T) {
	db := openTestDB(t)
	account := "alice"
	sel := NewAccountSelection(db, func() string { return account })

	if err := sel.Save(7); err != nil {
		t.Fatalf("save alice: %v", err)
	}

	account = "bob"
	if sel.Account() != "bob" {
		t.Fatalf("account: got %q want bob", sel.Account())
	}
	if _, ok, err := sel.Load(); err != nil || ok {
		t.Fatalf("bob must not see alice's selection: ok=%v err=%v", ok, err)
	}
	if err := sel.Save(9); err != nil {
		t.Fatalf("save bob: %v", err)
	}
	if err := sel.Clear(); err != nil {
		t.Fatalf("clear bob: %v", err)
	}

	account = "alice"
	id, ok, err := sel.Load()
	if err != nil || !ok || id != 7 {
		t.Fatalf("alice after swap: got %d %v %v want 7", id, ok, err)
	}
}
