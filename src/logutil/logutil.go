package logutil

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logFileName = "region_select_debug.log"
	maxSizeMB   = 10
	maxBackups  = 3
)

// Options selects where log output goes.
type Options struct {
	Level zerolog.Level
	// FileLogging tees every record into a size-rotated file in Dir.
	FileLogging bool
	// Dir defaults to the working directory.
	Dir string
	// Console receives human-readable output; os.Stderr when nil.
	Console io.Writer
}

var file *lumberjack.Logger

// Setup configures the global zerolog logger. stdout is never written so
// the selection result stays machine-readable.
func Setup(opts Options) {
	zerolog.SetGlobalLevel(opts.Level)
	_ = Close()

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	var out io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: time.RFC3339}

	if opts.FileLogging {
		file = newFileWriter(opts.Dir)
		out = zerolog.MultiLevelWriter(out, file)
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	if file != nil {
		log.Debug().Str("file", file.Filename).Msg("file logging enabled")
	}
}

// Close closes the debug log file opened by Setup, if any.
func Close() error {
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	return err
}

func newFileWriter(dir string) *lumberjack.Logger {
	if dir == "" {
		dir = "."
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, logFileName),
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
	}
}
