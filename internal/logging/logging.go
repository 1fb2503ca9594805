// Package logging configures the process-wide zerolog logger: level, console
// format, and the optional rotating file sink.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"
)

// Options selects the log outputs.
type Options struct {
	Level  string
	Pretty bool

	// File enables a rotating JSON file next to the console output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// SetLogLevel configures the global zerolog level based on a string value.
// Supported values (case-insensitive): debug, info, warn, error, fatal, panic.
func SetLogLevel(lvl string) {
	switch strings.ToLower(strings.TrimSpace(lvl)) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "fatal":
		zerolog.SetGlobalLevel(zerolog.FatalLevel)
	case "panic":
		zerolog.SetGlobalLevel(zerolog.PanicLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// Writer builds the combined output for o. The returned closer flushes and
// closes the file sink, if any.
func Writer(o Options, stdout io.Writer) (io.Writer, io.Closer) {
	var console io.Writer = stdout
	if o.Pretty {
		console = zerolog.ConsoleWriter{Out: stdout, TimeFormat: time.RFC3339}
	}
	if o.File == "" {
		return console, nopCloser{}
	}
	if dir := filepath.Dir(o.File); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	lj := &lumberjack.Logger{
		Filename:   o.File,
		MaxSize:    nz(o.MaxSizeMB, 100), // megabytes
		MaxBackups: nz(o.MaxBackups, 3),
		MaxAge:     nz(o.MaxAgeDays, 7), // days
		Compress:   true,
	}
	return zerolog.MultiLevelWriter(console, lj), lj
}

// Setup installs the global logger and returns a closer for the file sink.
func Setup(o Options) io.Closer {
	SetLogLevel(o.Level)
	zerolog.TimeFieldFormat = time.RFC3339Nano
	w, closer := Writer(o, os.Stdout)
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
	return closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func nz(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
