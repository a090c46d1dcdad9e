package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config controls how the application logger is built.
type Config struct {
	Level   string
	Format  string
	Output  io.Writer
	Service string
}

// New builds a logrus logger. Unknown levels fall back to info.
func New(cfg Config) *logrus.Entry {
	l := logrus.New()

	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	l.SetOutput(cfg.Output)

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if cfg.Format == FormatText {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	entry := logrus.NewEntry(l)
	if cfg.Service != "" {
		entry = entry.WithField("service", cfg.Service)
	}
	return entry
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}
