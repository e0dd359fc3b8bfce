package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

const appName = "nfts"

// Workspace holds the local paths nfts reads and writes
type Workspace struct {
	RootPath   string // Data directory (history, local store)
	StorePath  string // Blobs served by `nfts serve`
	ConfigPath string // config.yaml
}

// New creates a Workspace with XDG-compliant paths
func New() (*Workspace, error) {
	rootPath, err := getDataRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to determine data directory: %w", err)
	}
	configPath, err := getConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config path: %w", err)
	}

	return &Workspace{
		RootPath:   rootPath,
		StorePath:  filepath.Join(rootPath, "store"),
		ConfigPath: configPath,
	}, nil
}

// getDataRoot follows the XDG Base Directory specification on Unix and uses AppData on Windows
func getDataRoot() (string, error) {
	if xdgDataHome := os.Getenv("XDG_DATA_HOME"); xdgDataHome != "" {
		return filepath.Join(xdgDataHome, appName), nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", appName), nil
}

func getConfigPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.yaml"), nil
	}

	if appData := os.Getenv("APPDATA"); appData != "" {
		return filepath.Join(appData, appName+"-config", "config.yaml"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", appName, "config.yaml"), nil
}

// Initialize creates the directory structure if it doesn't exist
func (w *Workspace) Initialize() error {
	for _, dir := range []string{w.RootPath, w.StorePath, filepath.Dir(w.ConfigPath)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Exists checks if the workspace has been initialized
func (w *Workspace) Exists() bool {
	info, err := os.Stat(w.RootPath)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// HistoryPath returns the path of the upload history manifest
func (w *Workspace) HistoryPath() string {
	return filepath.Join(w.RootPath, "history.json")
}

// ResolveStorePath returns dir when set, otherwise the default store path
func (w *Workspace) ResolveStorePath(dir string) string {
	if dir != "" {
		return dir
	}
	return w.StorePath
}
