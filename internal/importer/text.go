// Package importer turns external task lists into capture inputs: pasted
// plain text, structured YAML files, and GitHub issues.
package importer

import (
	"bufio"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Iron-Ham/taskstack/internal/breakdown"
	"github.com/Iron-Ham/taskstack/internal/errors"
)

// Format names an input format accepted by Parse.
type Format string

const (
	FormatText Format = "text"
	FormatYAML Format = "yaml"
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{FormatText, FormatYAML}
}

// FormatFromPath picks a format from a file extension. Anything that is
// not .yaml or .yml is read as text.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatText
}

// Parse reads r in the given format.
func Parse(format Format, r io.Reader) ([]breakdown.Input, error) {
	switch Format(strings.ToLower(string(format))) {
	case FormatText, "":
		return ParseText(r)
	case FormatYAML, "yml":
		return ParseYAML(r)
	default:
		return nil, errors.NewValidationError("unsupported import format").
			WithField("format").WithValue(string(format))
	}
}

var (
	bulletPrefix = regexp.MustCompile(`^[-*•]\s*`)
	numberPrefix = regexp.MustCompile(`^\d+\.\s*`)
	todoPrefix   = regexp.MustCompile(`(?i)^TODO:\s*`)
)

// ParseText reads one task per line. Blank lines and lines starting with
// "#" or "//" are skipped. A leading bullet, list number and "TODO:" are
// stripped, in that order.
func ParseText(r io.Reader) ([]breakdown.Input, error) {
	var inputs []breakdown.Input
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if title, ok := lineTitle(scanner.Text()); ok {
			inputs = append(inputs, breakdown.Input{Title: title})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read task list")
	}
	return inputs, nil
}

func lineTitle(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
		return "", false
	}
	title := bulletPrefix.ReplaceAllString(line, "")
	title = numberPrefix.ReplaceAllString(title, "")
	title = todoPrefix.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	return title, title != ""
}
