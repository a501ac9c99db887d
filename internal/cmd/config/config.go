// Package config provides CLI commands for managing taskstack configuration.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	appconfig "github.com/Iron-Ham/taskstack/internal/config"
	tuiconfig "github.com/Iron-Ham/taskstack/internal/tui/config"
)

// Wrapper functions for exec to allow testing
var execLookPath = exec.LookPath
var execCommand = exec.Command

// runInteractive opens the config editor. Replaced in tests.
var runInteractive = tuiconfig.Run

// Register adds the config command tree to parent.
func Register(parent *cobra.Command) {
	parent.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "View or modify taskstack configuration",
		Long: `View or modify taskstack configuration.

Without arguments, opens an interactive configuration UI.
Use 'config show' to display configuration non-interactively.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInteractive(targetFile())
		},
	}

	configCmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration",
			Args:  cobra.NoArgs,
			RunE:  runConfigShow,
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a configuration value",
			Long:  "Set a configuration value in the config file.\n\nValid keys:\n" + keyHelp(),
			Args:  cobra.ExactArgs(2),
			RunE:  runConfigSet,
		},
		&cobra.Command{
			Use:   "init",
			Short: "Create a commented default config file",
			Args:  cobra.NoArgs,
			RunE:  runConfigInit,
		},
		&cobra.Command{
			Use:   "path",
			Short: "Show the config file path",
			Args:  cobra.NoArgs,
			RunE:  runConfigPath,
		},
		&cobra.Command{
			Use:   "edit",
			Short: "Open the config file in your editor",
			Long: `Open the config file in $EDITOR (or $VISUAL, vim, nano, vi).
If no config file exists, one is created with default values first.`,
			Args: cobra.NoArgs,
			RunE: runConfigEdit,
		},
		&cobra.Command{
			Use:   "reset [key]",
			Short: "Reset configuration to defaults",
			Long: `Reset configuration values to their defaults.

Without arguments, resets every key. With a key, resets only that key.`,
			Args: cobra.MaximumNArgs(1),
			RunE: runConfigReset,
		},
	)
	return configCmd
}

// settableKeys maps each key accepted by set to its item.
func settableKeys() map[string]tuiconfig.ConfigItem {
	keys := map[string]tuiconfig.ConfigItem{
		"github.token": {Key: "github.token", Label: "GitHub Token", Description: "Personal access token for import --github", Type: tuiconfig.TypeString},
	}
	for _, cat := range tuiconfig.Categories() {
		for _, item := range cat.Items {
			keys[item.Key] = item
		}
	}
	return keys
}

func keyHelp() string {
	items := settableKeys()
	names := make([]string, 0, len(items))
	for k := range items {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		item := items[k]
		fmt.Fprintf(&b, "  %-33s %s", k, item.Description)
		if len(item.Options) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(item.Options, ", "))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// targetFile is where changes are written: the file in use, or the default path.
func targetFile() string {
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	return appconfig.ConfigFile()
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	settings := viper.AllSettings()
	if gh, ok := settings["github"].(map[string]any); ok {
		if tok, _ := gh["token"].(string); tok != "" {
			gh["token"] = "********"
		}
	}
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func parseValue(item tuiconfig.ConfigItem, value string) (any, error) {
	switch item.Type {
	case tuiconfig.TypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected true or false", item.Key)
		}
		return b, nil
	case tuiconfig.TypeInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: expected integer", item.Key)
		}
		return n, nil
	case tuiconfig.TypeSelect:
		if !slices.Contains(item.Options, value) {
			return nil, fmt.Errorf("invalid value for %s: %s\nValid options: %s",
				item.Key, value, strings.Join(item.Options, ", "))
		}
		return value, nil
	default:
		return value, nil
	}
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	item, ok := settableKeys()[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'taskstack config set --help' to see valid keys", key)
	}
	typed, err := parseValue(item, value)
	if err != nil {
		return err
	}

	previous := viper.Get(key)
	viper.Set(key, typed)
	if _, err := appconfig.Load(); err != nil {
		viper.Set(key, previous)
		return err
	}

	file := targetFile()
	if err := writeConfig(file); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %v\n", key, typed)
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", file)
	return nil
}

func writeConfig(file string) error {
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(file); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

const defaultConfigContent = `# taskstack configuration
# Every key can also be set with a TASKSTACK_ environment variable,
# e.g. TASKSTACK_STORE_BACKEND=sqlite for store.backend.

store:
  # Where tasks and slices are kept: memory, file or sqlite
  backend: file
  # State file, default database and log location
  # (empty uses $XDG_DATA_HOME/taskstack or ~/.local/share/taskstack)
  data_dir: ""
  # Database file for the sqlite backend (empty uses <data_dir>/taskstack.db)
  sqlite_path: ""

engine:
  # User that owns tasks captured without one
  default_user: demo
  # Snooze length when none is given
  snooze_minutes: 15
  # Reject categories that are not in the template catalog
  strict_categories: false

server:
  # Listen address for taskstack serve
  addr: 127.0.0.1:8080
  # gin mode: debug, release or test
  mode: release
  # Grace period for in-flight requests on shutdown
  shutdown_timeout_seconds: 10

logging:
  # Write taskstack.log to the data directory
  enabled: true
  # debug, info, warn or error
  level: info
  # Rotate at this size; 0 disables rotation
  max_size_mb: 10
  # Rotated files to keep
  max_backups: 3

github:
  # Prefer TASKSTACK_GITHUB_TOKEN over storing the token here
  token: ""
  # Issue search for import --github (empty: open issues assigned to you)
  query: ""
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	file := appconfig.ConfigFile()
	if _, err := os.Stat(file); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'taskstack config set' to modify values", file)
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(file, []byte(defaultConfigContent), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created config file at %s\n", file)
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		fmt.Fprintf(out, "Default path: %s (not created)\n", appconfig.ConfigFile())
	}

	fmt.Fprintln(out, "\nSearch paths:")
	fmt.Fprintf(out, "  1. %s\n", appconfig.ConfigFile())
	fmt.Fprintln(out, "  2. ./config.yaml (current directory)")
	fmt.Fprintf(out, "\nEnvironment variables: %s_* (e.g., %s_STORE_BACKEND), also read from ./.env\n",
		appconfig.EnvPrefix, appconfig.EnvPrefix)
	return nil
}

func findEditor() string {
	if e := os.Getenv("EDITOR"); e != "" {
		return e
	}
	if e := os.Getenv("VISUAL"); e != "" {
		return e
	}
	for _, e := range []string{"vim", "nano", "vi"} {
		if _, err := execLookPath(e); err == nil {
			return e
		}
	}
	return ""
}

func runConfigEdit(cmd *cobra.Command, args []string) error {
	file := targetFile()

	if _, err := os.Stat(file); os.IsNotExist(err) {
		fmt.Fprintln(cmd.OutOrStdout(), "Config file doesn't exist, creating with defaults...")
		if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		if err := os.WriteFile(file, []byte(defaultConfigContent), 0644); err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}
	}

	editor := findEditor()
	if editor == "" {
		return fmt.Errorf("no editor found. Set $EDITOR environment variable")
	}

	editorCmd := execCommand(editor, file)
	editorCmd.Stdin = os.Stdin
	editorCmd.Stdout = os.Stdout
	editorCmd.Stderr = os.Stderr
	if err := editorCmd.Run(); err != nil {
		return fmt.Errorf("editor exited with error: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Config file saved: %s\n", file)
	return nil
}

func defaultFor(key string) (any, bool) {
	v, ok := tuiconfig.DefaultValues()[key]
	return v, ok
}

func runConfigReset(cmd *cobra.Command, args []string) error {
	var keys []string
	if len(args) == 1 {
		if _, ok := defaultFor(args[0]); !ok {
			return fmt.Errorf("unknown configuration key: %s", args[0])
		}
		keys = []string{args[0]}
	} else {
		for k := range settableKeys() {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	for _, k := range keys {
		v, _ := defaultFor(k)
		viper.Set(k, v)
	}

	file := targetFile()
	if err := writeConfig(file); err != nil {
		return err
	}

	if len(args) == 1 {
		fmt.Fprintf(cmd.OutOrStdout(), "Reset %s to default\n", args[0])
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Reset all configuration to defaults")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config saved to %s\n", file)
	return nil
}
