package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/logbookhq/logbook/internal/config"
)

// dataDir holds the --data-dir persistent flag value (set on root command).
var dataDir string

// resolveDataDir returns the data directory from --data-dir flag,
// LOGBOOK_DATA_DIR env var, or ~/.logbook as fallback.
func resolveDataDir() string {
	if dataDir != "" {
		return dataDir
	}
	if envDir := os.Getenv("LOGBOOK_DATA_DIR"); envDir != "" {
		return envDir
	}
	home, _ := os.UserHomeDir()
	return home + "/.logbook"
}

// loadConfig reads the config file from --config, ./logbook.yaml, or
// ~/.logbook/logbook.yaml, falling back to defaults when none exists.
// A --data-dir flag overrides the file's storage section.
func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		for _, candidate := range []string{"logbook.yaml", filepath.Join(resolveDataDir(), "logbook.yaml")} {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	var cfg *config.Config
	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
		cfg = loaded
	}

	if dataDir != "" {
		cfg.Storage.DataDir = dataDir
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = resolveDataDir()
	}
	return cfg, nil
}

// --- PID file management ---

func pidFilePath() string {
	return filepath.Join(resolveDataDir(), "logbook.pid")
}

func writePID(pid int) error {
	dir := resolveDataDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(pidFilePath(), []byte(strconv.Itoa(pid)), 0644)
}

func readPID() (int, error) {
	data, err := os.ReadFile(pidFilePath())
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePID() {
	os.Remove(pidFilePath())
}

func logFilePath() string {
	return filepath.Join(resolveDataDir(), "logbook.log")
}

// tokenFilePath is where the CLI client commands cache the session token
// returned by `logbook login`.
func tokenFilePath() string {
	return filepath.Join(resolveDataDir(), "token")
}

func saveToken(token string) error {
	if err := os.MkdirAll(resolveDataDir(), 0755); err != nil {
		return err
	}
	return os.WriteFile(tokenFilePath(), []byte(token), 0600)
}

func loadToken() (string, error) {
	data, err := os.ReadFile(tokenFilePath())
	if err != nil {
		return "", fmt.Errorf("not logged in, run `logbook login` first")
	}
	return strings.TrimSpace(string(data)), nil
}

// versionString returns a display version string.
func versionString() string {
	if appVersion == "" || appVersion == "dev" {
		return "dev"
	}
	if strings.HasPrefix(appVersion, "v") {
		return appVersion
	}
	return "v" + appVersion
}
