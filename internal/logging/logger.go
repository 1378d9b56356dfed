package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Logger appends timestamped lines to <run-dir>/pipeline.log so a run can be
// inspected after the fact. It may optionally mirror lines to a writer
// (typically stderr) for live output.
type Logger struct {
	file *os.File
	echo io.Writer
}

// New creates (or appends to) the pipeline log inside the run directory.
func New(runDir string) (*Logger, error) {
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure run dir: %w", err)
	}
	path := filepath.Join(runDir, "pipeline.log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}
	return &Logger{file: f}, nil
}

// EchoTo mirrors every logged line to w in addition to the log file.
func (l *Logger) EchoTo(w io.Writer) {
	if l != nil {
		l.echo = w
	}
}

// Close releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Printf writes a single timestamped line.
func (l *Logger) Printf(format string, args ...any) {
	if l == nil {
		return
	}
	line := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if l.file != nil {
		timestamp := time.Now().Format(time.RFC3339)
		fmt.Fprintf(l.file, "[%s] %s\n", timestamp, line)
	}
	if l.echo != nil {
		fmt.Fprintln(l.echo, line)
	}
}
