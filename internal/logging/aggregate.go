package logging

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// LogEntry represents a parsed log entry with all structured fields.
type LogEntry struct {
	Timestamp time.Time      `json:"time"`
	Level     string         `json:"level"`
	Message   string         `json:"msg"`
	UserID    string         `json:"user_id,omitempty"`
	TaskID    string         `json:"task_id,omitempty"`
	SliceID   string         `json:"slice_id,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
}

// LogFilter selects entries. Zero fields match everything; set fields are
// combined with AND.
type LogFilter struct {
	// Level keeps entries at or above this level.
	Level string
	Since time.Time
	Until time.Time

	UserID  string
	TaskID  string
	SliceID string

	MessageContains string
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Export formats accepted by ExportLogEntries.
const (
	ExportJSON = "json"
	ExportText = "text"
	ExportCSV  = "csv"
)

// ReadLogs parses taskstack.log in dir together with its rotated backups.
// Lines that are not JSON are skipped. Entries come back oldest first.
func ReadLogs(dir string) ([]LogEntry, error) {
	live := filepath.Join(dir, LogFileName)
	if _, err := os.Stat(live); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file found in %s: %w", dir, err)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	paths := []string{live}
	for i := 1; ; i++ {
		p := BackupPath(live, i)
		if _, err := os.Stat(p); err != nil {
			break
		}
		paths = append(paths, p)
	}

	var entries []LogEntry
	for _, p := range paths {
		got, err := readLogFile(p)
		if err != nil {
			return nil, err
		}
		entries = append(entries, got...)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.Before(entries[j].Timestamp)
	})
	return entries, nil
}

func readLogFile(path string) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	const maxLine = 1024 * 1024
	scanner.Buffer(make([]byte, 64*1024), maxLine)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseLogEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

func parseLogEntry(line string) (LogEntry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return LogEntry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := LogEntry{Attrs: make(map[string]any)}
	str := func(key string) string {
		s, _ := raw[key].(string)
		delete(raw, key)
		return s
	}

	if t, err := time.Parse(time.RFC3339Nano, str("time")); err == nil {
		entry.Timestamp = t
	}
	entry.Level = str("level")
	entry.Message = str("msg")
	entry.UserID = str("user_id")
	entry.TaskID = str("task_id")
	entry.SliceID = str("slice_id")

	for k, v := range raw {
		entry.Attrs[k] = v
	}
	return entry, nil
}

// FilterLogs returns the entries matching filter.
func FilterLogs(entries []LogEntry, filter LogFilter) []LogEntry {
	if filter == (LogFilter{}) {
		return entries
	}

	var filtered []LogEntry
	for _, entry := range entries {
		if matchesFilter(entry, filter) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

func matchesFilter(entry LogEntry, filter LogFilter) bool {
	if filter.Level != "" {
		want, ok1 := levelOrder[strings.ToUpper(filter.Level)]
		got, ok2 := levelOrder[entry.Level]
		if ok1 && ok2 && got < want {
			return false
		}
	}
	if !filter.Since.IsZero() && entry.Timestamp.Before(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && entry.Timestamp.After(filter.Until) {
		return false
	}
	if filter.UserID != "" && entry.UserID != filter.UserID {
		return false
	}
	if filter.TaskID != "" && entry.TaskID != filter.TaskID {
		return false
	}
	if filter.SliceID != "" && entry.SliceID != filter.SliceID {
		return false
	}
	if filter.MessageContains != "" && !strings.Contains(entry.Message, filter.MessageContains) {
		return false
	}
	return true
}

// ExportLogEntries writes entries to w as json, text or csv.
func ExportLogEntries(w io.Writer, entries []LogEntry, format string) error {
	switch strings.ToLower(format) {
	case ExportJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case ExportText, "":
		return exportText(w, entries)
	case ExportCSV:
		return exportCSV(w, entries)
	default:
		return fmt.Errorf("unsupported export format: %s (supported: json, text, csv)", format)
	}
}

// exportText writes one line per entry:
// [TIMESTAMP] LEVEL - MESSAGE (user=..., task=...) {attrs}
func exportText(w io.Writer, entries []LogEntry) error {
	for _, entry := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "[%s] %s - %s", entry.Timestamp.Format("2006-01-02 15:04:05.000"), entry.Level, entry.Message)

		var ctx []string
		if entry.UserID != "" {
			ctx = append(ctx, "user="+entry.UserID)
		}
		if entry.TaskID != "" {
			ctx = append(ctx, "task="+entry.TaskID)
		}
		if entry.SliceID != "" {
			ctx = append(ctx, "slice="+entry.SliceID)
		}
		if len(ctx) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(ctx, ", "))
		}
		if len(entry.Attrs) > 0 {
			attrs, _ := json.Marshal(entry.Attrs)
			b.WriteString(" ")
			b.Write(attrs)
		}
		b.WriteString("\n")

		if _, err := io.WriteString(w, b.String()); err != nil {
			return fmt.Errorf("failed to write text entry: %w", err)
		}
	}
	return nil
}

func exportCSV(w io.Writer, entries []LogEntry) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"timestamp", "level", "message", "user_id", "task_id", "slice_id", "attrs"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, entry := range entries {
		attrs := ""
		if len(entry.Attrs) > 0 {
			if b, err := json.Marshal(entry.Attrs); err == nil {
				attrs = string(b)
			}
		}
		record := []string{
			entry.Timestamp.Format(time.RFC3339Nano),
			entry.Level,
			entry.Message,
			entry.UserID,
			entry.TaskID,
			entry.SliceID,
			attrs,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
