// Package testutil provides helpers shared by taskstack tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/Iron-Ham/taskstack/internal/config"
)

// IsolateEnv gives the test a private configuration environment: viper
// is reset before and after the test, XDG config and data homes point
// into a temp dir, and every TASKSTACK_ variable is cleared. It returns
// the temp dir.
func IsolateEnv(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg-config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "xdg-data"))

	prefix := config.EnvPrefix + "_"
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, prefix) {
			// Setenv first so the original value is restored on cleanup
			t.Setenv(k, "")
			if err := os.Unsetenv(k); err != nil {
				t.Fatalf("failed to unset %s: %v", k, err)
			}
		}
	}
	return dir
}

// WriteFile writes content to dir/name, creating parent directories,
// and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// FileStoreConfig returns config file content selecting the file backend
// in dataDir with debug logging enabled.
func FileStoreConfig(dataDir string) string {
	return "store:\n  backend: file\n  data_dir: " + dataDir + "\nlogging:\n  enabled: true\n  level: debug\n"
}
