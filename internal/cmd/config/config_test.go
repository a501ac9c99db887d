package config

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/Iron-Ham/taskstack/internal/config"
	"github.com/Iron-Ham/taskstack/internal/testutil"
)

// setup loads content (none when empty) into a fresh viper.
func setup(t *testing.T, content string) string {
	t.Helper()
	dir := testutil.IsolateEnv(t)
	if content == "" {
		require.NoError(t, appconfig.Init(""))
		return filepath.Join(dir, "config.yaml")
	}
	file := testutil.WriteFile(t, dir, "config.yaml", content)
	require.NoError(t, appconfig.Init(file))
	return file
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newConfigCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestConfigShow_MasksToken(t *testing.T) {
	file := setup(t, "github:\n  token: ghp_secret\n")

	out, err := execute(t, "show")
	require.NoError(t, err)
	assert.Contains(t, out, "# Config file: "+file)
	assert.Contains(t, out, "backend: file")
	assert.Contains(t, out, "********")
	assert.NotContains(t, out, "ghp_secret")
}

func TestConfigSet(t *testing.T) {
	file := setup(t, "engine:\n  default_user: demo\n")

	out, err := execute(t, "set", "engine.snooze_minutes", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "Set engine.snooze_minutes = 30")
	assert.Equal(t, 30, viper.GetInt("engine.snooze_minutes"))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "snooze_minutes: 30")

	_, err = execute(t, "set", "engine.strict_categories", "yes")
	assert.ErrorContains(t, err, "expected true or false")

	_, err = execute(t, "set", "store.backend", "floppy")
	assert.ErrorContains(t, err, "Valid options")

	_, err = execute(t, "set", "no.such.key", "1")
	assert.ErrorContains(t, err, "unknown configuration key")
}

func TestConfigSet_RevertsInvalidValue(t *testing.T) {
	setup(t, "engine:\n  snooze_minutes: 20\n")

	_, err := execute(t, "set", "engine.snooze_minutes", "0")
	require.Error(t, err)
	assert.Equal(t, 20, viper.GetInt("engine.snooze_minutes"))
}

func TestConfigReset(t *testing.T) {
	file := setup(t, "engine:\n  default_user: alice\n  snooze_minutes: 30\n")

	out, err := execute(t, "reset", "engine.default_user")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset engine.default_user to default")
	assert.Equal(t, "demo", viper.GetString("engine.default_user"))
	assert.Equal(t, 30, viper.GetInt("engine.snooze_minutes"))

	out, err = execute(t, "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset all configuration to defaults")
	assert.Equal(t, 15, viper.GetInt("engine.snooze_minutes"))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "snooze_minutes: 15")

	_, err = execute(t, "reset", "bogus")
	assert.ErrorContains(t, err, "unknown configuration key")
}

func TestConfigInit(t *testing.T) {
	setup(t, "")

	out, err := execute(t, "init")
	require.NoError(t, err)
	assert.Contains(t, out, "Created config file at "+appconfig.ConfigFile())

	data, err := os.ReadFile(appconfig.ConfigFile())
	require.NoError(t, err)
	assert.Equal(t, defaultConfigContent, string(data))

	// The written defaults must load cleanly
	viper.Reset()
	require.NoError(t, appconfig.Init(appconfig.ConfigFile()))
	_, err = appconfig.Load()
	require.NoError(t, err)

	_, err = execute(t, "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestConfigPath(t *testing.T) {
	setup(t, "")
	out, err := execute(t, "path")
	require.NoError(t, err)
	assert.Contains(t, out, "Default path: "+appconfig.ConfigFile())
	assert.Contains(t, out, "TASKSTACK_STORE_BACKEND")
}

func TestConfigEdit(t *testing.T) {
	file := setup(t, "")
	t.Setenv("EDITOR", "myeditor")

	var gotName string
	var gotArgs []string
	origCommand := execCommand
	execCommand = func(name string, args ...string) *exec.Cmd {
		gotName, gotArgs = name, args
		return exec.Command("true")
	}
	t.Cleanup(func() { execCommand = origCommand })

	out, err := execute(t, "edit")
	require.NoError(t, err)
	assert.Contains(t, out, "creating with defaults")
	assert.Equal(t, "myeditor", gotName)
	assert.Equal(t, []string{appconfig.ConfigFile()}, gotArgs)
	assert.FileExists(t, appconfig.ConfigFile())
	assert.NoFileExists(t, file)
}

func TestFindEditor_Fallback(t *testing.T) {
	t.Setenv("EDITOR", "")
	t.Setenv("VISUAL", "")

	origLookPath := execLookPath
	execLookPath = func(file string) (string, error) {
		if file == "nano" {
			return "/usr/bin/nano", nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { execLookPath = origLookPath })

	assert.Equal(t, "nano", findEditor())

	execLookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	assert.Equal(t, "", findEditor())
}

func TestConfigInteractive(t *testing.T) {
	file := setup(t, "engine:\n  default_user: demo\n")

	var opened string
	orig := runInteractive
	runInteractive = func(path string) error {
		opened = path
		return nil
	}
	t.Cleanup(func() { runInteractive = orig })

	_, err := execute(t)
	require.NoError(t, err)
	assert.Equal(t, file, opened)
}

func TestSettableKeys(t *testing.T) {
	keys := settableKeys()
	for _, k := range []string{"store.backend", "engine.snooze_minutes", "logging.max_backups", "github.token", "github.query"} {
		assert.Contains(t, keys, k)
	}
	assert.True(t, strings.Contains(keyHelp(), "memory, file, sqlite"))
}
