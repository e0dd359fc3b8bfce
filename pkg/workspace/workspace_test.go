package workspace

import (
	"path/filepath"
	"testing"
)

func TestNew_UsesXDGDirectories(t *testing.T) {
	dataHome := t.TempDir()
	configHome := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dataHome)
	t.Setenv("XDG_CONFIG_HOME", configHome)

	w, err := New()
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	if w.RootPath != filepath.Join(dataHome, "nfts") {
		t.Errorf("RootPath = %q, want %q", w.RootPath, filepath.Join(dataHome, "nfts"))
	}

	if w.ConfigPath != filepath.Join(configHome, "nfts", "config.yaml") {
		t.Errorf("ConfigPath = %q", w.ConfigPath)
	}

	if w.HistoryPath() != filepath.Join(dataHome, "nfts", "history.json") {
		t.Errorf("HistoryPath() = %q", w.HistoryPath())
	}
}

func TestWorkspace_InitializeAndExists(t *testing.T) {
	root := filepath.Join(t.TempDir(), "data")
	w := &Workspace{
		RootPath:   root,
		StorePath:  filepath.Join(root, "store"),
		ConfigPath: filepath.Join(t.TempDir(), "cfg", "config.yaml"),
	}

	if w.Exists() {
		t.Fatal("workspace should not exist before Initialize")
	}

	if err := w.Initialize(); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	if !w.Exists() {
		t.Error("workspace should exist after Initialize")
	}
}

func TestWorkspace_ResolveStorePath(t *testing.T) {
	w := &Workspace{StorePath: "/data/nfts/store"}

	tests := []struct {
		name     string
		dir      string
		expected string
	}{
		{"default", "", "/data/nfts/store"},
		{"override", "/srv/blobs", "/srv/blobs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.ResolveStorePath(tt.dir); got != tt.expected {
				t.Errorf("ResolveStorePath(%q) = %q, want %q", tt.dir, got, tt.expected)
			}
		})
	}
}
