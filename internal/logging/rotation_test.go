package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestNewRotatingWriter(t *testing.T) {
	t.Run("creates nested directories", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "nested", "dir", "test.log")

		rw, err := NewRotatingWriter(logPath, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		defer func() { _ = rw.Close() }()

		if _, err := os.Stat(logPath); err != nil {
			t.Errorf("log file was not created: %v", err)
		}
		if rw.FilePath() != logPath {
			t.Errorf("FilePath() = %q", rw.FilePath())
		}
	})

	t.Run("appends to existing file", func(t *testing.T) {
		logPath := filepath.Join(t.TempDir(), "test.log")
		if err := os.WriteFile(logPath, []byte("initial\n"), 0644); err != nil {
			t.Fatal(err)
		}

		rw, err := NewRotatingWriter(logPath, DefaultRotationConfig())
		if err != nil {
			t.Fatalf("NewRotatingWriter failed: %v", err)
		}
		if rw.CurrentSize() != int64(len("initial\n")) {
			t.Errorf("CurrentSize() = %d, want existing size", rw.CurrentSize())
		}
		if _, err := rw.Write([]byte("more\n")); err != nil {
			t.Fatal(err)
		}
		_ = rw.Close()

		if got := readFile(t, logPath); got != "initial\nmore\n" {
			t.Errorf("content = %q", got)
		}
	})
}

// smallWriter rotates after roughly 100 bytes.
func smallWriter(t *testing.T, backups int) (*RotatingWriter, string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	rw, err := NewRotatingWriter(logPath, RotationConfig{MaxBackups: backups})
	if err != nil {
		t.Fatal(err)
	}
	rw.maxSizeB = 100
	t.Cleanup(func() { _ = rw.Close() })
	return rw, logPath
}

func TestRotatingWriter_Rotates(t *testing.T) {
	rw, logPath := smallWriter(t, 2)
	line := strings.Repeat("x", 59) + "\n" // 60 bytes

	for i := 0; i < 4; i++ {
		if _, err := rw.Write([]byte(line)); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
	}

	// Each write after the first overflows, so every line ends up alone.
	for _, p := range []string{logPath, BackupPath(logPath, 1), BackupPath(logPath, 2)} {
		if got := readFile(t, p); got != line {
			t.Errorf("%s = %q, want one line", filepath.Base(p), got)
		}
	}
	if _, err := os.Stat(BackupPath(logPath, 3)); !os.IsNotExist(err) {
		t.Error("backups beyond MaxBackups should be removed")
	}
	if rw.CurrentSize() != int64(len(line)) {
		t.Errorf("CurrentSize() = %d after rotation", rw.CurrentSize())
	}
}

func TestRotatingWriter_NoBackups(t *testing.T) {
	rw, logPath := smallWriter(t, 0)
	line := strings.Repeat("y", 79) + "\n"

	_, _ = rw.Write([]byte(line))
	_, _ = rw.Write([]byte(line))

	if got := readFile(t, logPath); got != line {
		t.Errorf("live file = %q", got)
	}
	if _, err := os.Stat(BackupPath(logPath, 1)); !os.IsNotExist(err) {
		t.Error("no backup should be kept")
	}
}

func TestRotatingWriter_OversizedEntry(t *testing.T) {
	rw, logPath := smallWriter(t, 1)
	big := strings.Repeat("z", 250)

	if _, err := rw.Write([]byte(big)); err != nil {
		t.Fatal(err)
	}
	if got := readFile(t, logPath); got != big {
		t.Error("an oversized first entry should still be written")
	}
}

func TestRotatingWriter_RotationDisabled(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")
	rw, err := NewRotatingWriter(logPath, RotationConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = rw.Close() }()

	for _i := 0; _i < 50; _i++ {
		_, _ = rw.Write([]byte(strings.Repeat("a", 1024)))
	}
	if _, err := os.Stat(BackupPath(logPath, 1)); !os.IsNotExist(err) {
		t.Error("MaxSizeMB 0 should never rotate")
	}
}

func TestRotatingWriter_Close(t *testing.T) {
	rw, _ := smallWriter(t, 1)
	if err := rw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := rw.Close(); err != nil {
		t.Errorf("second Close() = %v", err)
	}
	if _, err := rw.Write([]byte("late")); err == nil {
		t.Error("write after Close should fail")
	}
	if err := rw.Sync(); err != nil {
		t.Errorf("Sync() after Close = %v", err)
	}
}

func TestRotatingWriter_Concurrent(t *testing.T) {
	rw, logPath := smallWriter(t, 50)
	rw.maxSizeB = 1000
	line := strings.Repeat("c", 19) + "\n"

	var wg sync.WaitGroup
	for _i := 0; _i < 10; _i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _i := 0; _i < 20; _i++ {
				_, _ = rw.Write([]byte(line))
			}
		}()
	}
	wg.Wait()
	_ = rw.Sync()

	total := len(readFile(t, logPath))
	for i := 1; i <= 50; i++ {
		data, err := os.ReadFile(BackupPath(logPath, i))
		if err != nil {
			break
		}
		total += len(data)
	}
	if total != 200*len(line) {
		t.Errorf("total bytes = %d, want %d", total, 200*len(line))
	}
}
