package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05"

// New returns a logger writing entries below error to stdout and the rest to stderr
func New(level string) (*logrus.Logger, error) {
	return NewWithWriters(os.Stdout, os.Stderr, level)
}

// NewWithWriters is New with explicit destinations
func NewWithWriters(stdout, stderr io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	log.SetLevel(lvl)
	log.SetReportCaller(true)
	log.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		FullTimestamp:    true,
		TimestampFormat:  timestampFormat,
		CallerPrettyfier: prettyCaller,
	})
	log.AddHook(&splitHook{stdout: stdout, stderr: stderr})
	return log, nil
}

// splitHook routes formatted entries by severity
type splitHook struct {
	mu     sync.Mutex
	stdout io.Writer
	stderr io.Writer
}

func (h *splitHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *splitHook) Fire(entry *logrus.Entry) error {
	line, err := entry.Logger.Formatter.Format(entry)
	if err != nil {
		return err
	}

	out := h.stdout
	if entry.Level <= logrus.ErrorLevel {
		out = h.stderr
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = out.Write(line)
	return err
}

// prettyCaller renders the origin as "pkg.Func" and "file.go:42"
func prettyCaller(frame *runtime.Frame) (string, string) {
	return path.Base(frame.Function), fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
}
