package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Workspace describes the reserved .titanium directory at a workspace
// root: isolated state (config file, default cache location, logs)
// kept out of the user's own project files.
type Workspace struct {
	Root       string
	Dir        string
	CacheDir   string
	LogsDir    string
	ConfigPath string
}

var (
	// ErrInvalidWorkspace reports a .titanium directory whose required
	// entries collide with something of the wrong kind (e.g. a plain
	// file where a directory is expected).
	ErrInvalidWorkspace = errors.New("invalid .titanium workspace")
	// ErrUnauthorizedWorkspaceEntry reports an entry under .titanium that
	// this version of titanium does not recognize, so a corrupted or
	// foreign directory is never silently adopted.
	ErrUnauthorizedWorkspaceEntry = errors.New("unauthorized entry in .titanium")
)

// EnsureWorkspace validates and zero-config-initializes the .titanium
// directory under root: missing required subdirectories are created,
// but any unrecognized top-level entry is rejected outright rather than
// silently ignored.
func EnsureWorkspace(root string) (Workspace, error) {
	dir := filepath.Join(root, ".titanium")
	ws := Workspace{
		Root:       root,
		Dir:        dir,
		CacheDir:   filepath.Join(dir, "cache"),
		LogsDir:    filepath.Join(dir, "logs"),
		ConfigPath: filepath.Join(dir, "config.toml"),
	}

	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return Workspace{}, fmt.Errorf("stat workspace dir: %w", err)
		}
		if err := os.Mkdir(dir, 0o755); err != nil {
			return Workspace{}, fmt.Errorf("create workspace dir: %w", err)
		}
	} else if !info.IsDir() {
		return Workspace{}, fmt.Errorf("%w: %s exists but is not a directory", ErrInvalidWorkspace, dir)
	}

	if err := validateTopLevel(dir); err != nil {
		return Workspace{}, err
	}
	if err := ensureDir(ws.CacheDir); err != nil {
		return Workspace{}, err
	}
	if err := ensureDir(ws.LogsDir); err != nil {
		return Workspace{}, err
	}
	return ws, nil
}

func ensureDir(path string) error {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%w: %s exists but is not a directory", ErrInvalidWorkspace, path)
		}
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat dir %s: %w", path, err)
	}
	return os.MkdirAll(path, 0o755)
}

func validateTopLevel(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read workspace dir: %w", err)
	}
	for _, entry := range entries {
		name := entry.Name()
		switch name {
		case "cache", "logs":
			if !entry.IsDir() {
				return fmt.Errorf("%w: %s must be a directory", ErrInvalidWorkspace, filepath.Join(dir, name))
			}
		case "config.toml":
			if entry.IsDir() {
				return fmt.Errorf("%w: %s must be a file", ErrInvalidWorkspace, filepath.Join(dir, name))
			}
		default:
			return fmt.Errorf("%w: %s", ErrUnauthorizedWorkspaceEntry, filepath.Join(dir, name))
		}
	}
	return nil
}
