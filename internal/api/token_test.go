package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestAccountFromToken(t *testing.T) {
	cases := []struct {
		name  string
		token string
		want  string
	}{
		{name: "username", token: signedToken(t, jwt.MapClaims{"username": "alice", "user_id": 4}), want: "alice"},
		{name: "user id", token: signedToken(t, jwt.MapClaims{"user_id": 42}), want: "42"},
		{name: "subject", token: signedToken(t, jwt.MapClaims{"sub": "u-9"}), want: "u-9"},
		{name: "opaque", token: "not-a-jwt", want: ""},
		{name: "empty", token: "", want: ""},
	}
	for _, tc := range cases {
		if got := AccountFromToken(tc.token); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestFileTokenReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("first\n"), 0o600); err != nil {
		t.Fatalf("write token: %v", err)
	}
	source, err := NewFileToken(path, nil)
	if err != nil {
		t.Fatalf("new file token: %v", err)
	}
	defer source.Close()

	if got := source.Token(); got != "first" {
		t.Fatalf("token: got %q want %q", got, "first")
	}

	if err := os.WriteFile(path, []byte("second"), 0o600); err != nil {
		t.Fatalf("rewrite token: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for source.Token() != "second" {
		if time.Now().After(deadline) {
			t.Fatalf("token not reloaded: got %q", source.Token())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFileTokenMissingFileIsAnonymous(t *testing.T) {
	source, err := NewFileToken(filepath.Join(t.TempDir(), "absent"), nil)
	if err != nil {
		t.Fatalf("new file token: %v", err)
	}
	defer source.Close()
	if source.Token() != "" {
		t.Fatalf("expected empty token, got %q", source.Token())
	}
}
