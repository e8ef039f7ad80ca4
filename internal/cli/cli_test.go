package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/galvinograd/purple-titanium/internal/config"
	"github.com/galvinograd/purple-titanium/internal/store"
)

func execCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := Root()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestValidateCmd_ReportsDefaultsWhenNoConfigFile(t *testing.T) {
	workspace := t.TempDir()

	out, err := execCommand(t, "--workspace-root", workspace, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("no .titanium/config.toml found")) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestValidateCmd_ReportsParsedConfig(t *testing.T) {
	workspace := t.TempDir()
	ws, err := config.EnsureWorkspace(workspace)
	if err != nil {
		t.Fatalf("EnsureWorkspace: %v", err)
	}
	if err := os.WriteFile(ws.ConfigPath, []byte("concurrency = 2\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := execCommand(t, "--workspace-root", workspace, "validate")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("config valid")) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestStoreStatsCmd_ListsPersistedSignatures(t *testing.T) {
	workspace := t.TempDir()
	cacheRoot := filepath.Join(workspace, "cache")
	fs := store.NewFSStore(cacheRoot)
	if err := fs.Save(context.Background(), "abc123", store.Entry{TaskName: "t", Format: store.FormatOpaque, Payload: []byte("x")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := execCommand(t, "--workspace-root", workspace, "--cache-root", cacheRoot, "store", "stats")
	if err != nil {
		t.Fatalf("store stats: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("abc123")) {
		t.Fatalf("expected signature in output, got %q", out)
	}
}

func TestStoreGCCmd_InvalidatesEveryEntry(t *testing.T) {
	workspace := t.TempDir()
	cacheRoot := filepath.Join(workspace, "cache")
	fs := store.NewFSStore(cacheRoot)
	if err := fs.Save(context.Background(), "abc123", store.Entry{TaskName: "t", Format: store.FormatOpaque, Payload: []byte("x")}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := execCommand(t, "--workspace-root", workspace, "--cache-root", cacheRoot, "store", "gc")
	if err != nil {
		t.Fatalf("store gc: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("invalidated 1 entries")) {
		t.Fatalf("unexpected output: %q", out)
	}

	exists, err := fs.Exists(context.Background(), "abc123")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if exists {
		t.Fatalf("expected entry to be invalidated")
	}
}

func TestExitCode_MapsErrorTaxonomy(t *testing.T) {
	if got := ExitCode(nil); got != ExitSuccess {
		t.Fatalf("ExitCode(nil) = %d, want %d", got, ExitSuccess)
	}
	if got := ExitCode(config.ErrInvalidConfig); got != ExitValidationError {
		t.Fatalf("ExitCode(ErrInvalidConfig) = %d, want %d", got, ExitValidationError)
	}
}
