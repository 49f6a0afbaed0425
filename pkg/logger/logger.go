// Package logger builds the application's zerolog loggers.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0664

// Build configures a logger. Exactly one output is used: an explicit
// writer, a log file path, or stdout by default.
type Build struct {
	writer io.Writer
	path   string
	level  zerolog.Level
	pretty bool
}

// New starts a logger build at info level writing to stdout.
func New() *Build {
	return &Build{level: zerolog.InfoLevel}
}

// ToWriter directs log output to w.
func (b *Build) ToWriter(w io.Writer) *Build {
	b.writer = w
	return b
}

// ToPath appends log output to the file at path, creating it if needed.
func (b *Build) ToPath(path string) *Build {
	b.path = path
	return b
}

// Level sets the minimum level. Unknown names fall back to info.
func (b *Build) Level(name string) *Build {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	b.level = lvl
	return b
}

// Pretty switches output to the human-readable console format. Ignored
// when logging to a file.
func (b *Build) Pretty() *Build {
	b.pretty = true
	return b
}

// Make constructs the logger. The returned closer is non-nil when a log
// file was opened.
func (b *Build) Make() (zerolog.Logger, io.Closer, error) {
	var (
		w      io.Writer = os.Stdout
		closer io.Closer
	)
	if b.writer != nil {
		w = b.writer
	}
	if b.path != "" {
		f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		w = zerolog.SyncWriter(f)
		closer = f
	} else if b.pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	log := zerolog.New(w).Level(b.level).With().Timestamp().Logger()
	return log, closer, nil
}
