package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/rpggio/courses/internal/config"
)

// newLogger builds the process logger. When cfg.Path is set logs go to that
// file instead of out.
func newLogger(cfg config.LogConfig, out io.Writer) (*slog.Logger, func(), error) {
	closeFn := func() {}
	if cfg.Path != "" {
		f, err := openLogFile(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("log file error: %w", err)
		}
		out = f
		closeFn = func() { _ = f.Close() }
	}

	handlerOpts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(out, handlerOpts)
	} else {
		handler = slog.NewTextHandler(out, handlerOpts)
	}
	return slog.New(handler), closeFn, nil
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Once a log file grows past maxLogSizeBytes it is cut back to its newest
// keepLogSizeBytes.
const (
	maxLogSizeBytes  = 6 * 1024 * 1024
	keepLogSizeBytes = 5 * 1024 * 1024
)

type logFile struct {
	mu   sync.Mutex
	file *os.File
	max  int64
	keep int64
}

func openLogFile(path string) (*logFile, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	lf := &logFile{file: file, max: maxLogSizeBytes, keep: keepLogSizeBytes}
	if err := lf.trim(); err != nil {
		_ = file.Close()
		return nil, err
	}
	return lf, nil
}

func (l *logFile) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	n, err := l.file.Write(p)
	if err != nil {
		return n, err
	}
	return n, l.trim()
}

func (l *logFile) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

// trim keeps the tail of the file once it exceeds the size limit. The file is
// in append mode, so after truncation Write lands at offset zero.
func (l *logFile) trim() error {
	info, err := l.file.Stat()
	if err != nil {
		return err
	}
	size := info.Size()
	if size <= l.max {
		return nil
	}

	tail := make([]byte, l.keep)
	n, err := l.file.ReadAt(tail, size-l.keep)
	if err != nil && err != io.EOF {
		return err
	}
	if err := l.file.Truncate(0); err != nil {
		return err
	}
	_, err = l.file.Write(tail[:n])
	return err
}
