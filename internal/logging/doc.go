// Package logging provides structured logging for taskstack.
//
// It wraps log/slog to write one JSON object per line, tagging entries with
// the user, task and slice they concern so a single capture or action can
// be followed through the log afterwards.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dataDir, "INFO", logging.DefaultRotationConfig())
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.WithUser("alice").WithTask(task.ID).Info("captured task", "slices", 4)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"captured task","user_id":"alice","task_id":"...","slices":4}
//
// The level of a logger and all of its children can be changed at runtime
// with [Logger.SetLevel]; `taskstack serve` does this when the config file
// is edited.
//
// # Rotation
//
// The log file is rotated by size. Rotated copies are named taskstack.log.1
// (newest) through taskstack.log.N.
//
// # Reading Logs
//
// [ReadLogs] loads the live file and its backups, [FilterLogs] narrows them
// by level, time range, user, task, slice or message text, and
// [ExportLogEntries] renders them as text, JSON or CSV. These back the
// `taskstack logs` command.
//
// # Testing
//
// Use [NopLogger] to discard output, or [NewWriterLogger] with a
// bytes.Buffer to assert on what was logged.
package logging
