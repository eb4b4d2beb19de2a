package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "auradm.log")
	logger, err := New(ProductionMode, path)
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	logger.Info("pass complete")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"pass complete"`) {
		t.Fatalf("unexpected log contents: %s", data)
	}
}

func TestDefaultPathHonorsStateHome(t *testing.T) {
	t.Setenv("XDG_STATE_HOME", "/tmp/state-home")
	path, err := DefaultPath()
	if err != nil {
		t.Fatalf("default path: %v", err)
	}
	if path != filepath.Join("/tmp/state-home", "auradm", "auradm.log") {
		t.Fatalf("path: got %q", path)
	}
}
