package command

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/adamavenir/auradm/internal/api"
	"github.com/adamavenir/auradm/internal/config"
)

func signedToken(t *testing.T, username string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"username": username}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestCurrentAccountFollowsTokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte(signedToken(t, "alice")), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	tokens, err := api.NewFileToken(path, nil)
	if err != nil {
		t.Fatalf("file token: %v", err)
	}
	t.Cleanup(func() { _ = tokens.Close() })

	ctx := &CommandContext{Config: config.Default(), Tokens: tokens}
	if got := ctx.CurrentAccount(); got != "alice" {
		t.Fatalf("account: got %q want alice", got)
	}

	if err := os.WriteFile(path, []byte(signedToken(t, "bob")), 0o600); err != nil {
		t.Fatalf("rewrite token: %v", err)
	}
	if err := tokens.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got := ctx.CurrentAccount(); got != "bob" {
		t.Fatalf("account after reload: got %q want bob", got)
	}
}

func TestCurrentAccountPrefersConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Auth.Account = "configured"
	ctx := &CommandContext{Config: cfg, Tokens: api.StaticToken(signedToken(t, "alice"))}
	if got := ctx.CurrentAccount(); got != "configured" {
		t.Fatalf("account: got %q want configured", got)
	}
}
