package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes to stdout and a rotating file under the log directory.
type Logger struct {
	entry *logrus.Entry
	file  io.Closer
}

// New creates the log directory and opens sensor-dashboard.log inside it.
// An unknown level falls back to info.
func New(dir, level string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create logs folder failed: %v", err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "sensor-dashboard.log"),
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
	}
	return newLogger(io.MultiWriter(file, os.Stdout), file, level), nil
}

// NewWriter logs to w only. Used by tests and tools.
func NewWriter(w io.Writer, level string) *Logger {
	return newLogger(w, nil, level)
}

func newLogger(w io.Writer, closer io.Closer, level string) *Logger {
	base := logrus.New()
	base.SetOutput(w)
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   true,
	})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
	return &Logger{entry: logrus.NewEntry(base), file: closer}
}

// WithField returns a child logger carrying key=value on every line.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return &Logger{entry: l.entry.WithField(key, value), file: l.file}
}

func (l *Logger) Debugf(msg string, args ...interface{}) {
	l.entry.Debugf(msg, args...)
}

func (l *Logger) Infof(msg string, args ...interface{}) {
	l.entry.Infof(msg, args...)
}

func (l *Logger) Warnf(msg string, args ...interface{}) {
	l.entry.Warnf(msg, args...)
}

func (l *Logger) Errorf(msg string, args ...interface{}) {
	l.entry.Errorf(msg, args...)
}

func (l *Logger) Fatalf(msg string, args ...interface{}) {
	l.entry.Fatalf(msg, args...)
}

func (l *Logger) Close() {
	if l.file == nil {
		return
	}
	if err := l.file.Close(); err != nil {
		return
	}
}
