// Package logger provides a zerolog backed implementation of the SDK logger interface
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/splitio/go-toolkit/v5/logging"
)

// Options configures the zerolog logger
type Options struct {
	// Output defaults to os.Stdout
	Output io.Writer
	// Level is a zerolog level name, info when empty or unknown
	Level string
	// Pretty switches to the human readable console writer
	Pretty bool
}

// Logger forwards SDK log messages to a zerolog logger. Verbose maps to the trace level.
type Logger struct {
	zl zerolog.Logger
}

var _ logging.LoggerInterface = (*Logger)(nil)

// New wraps an existing zerolog logger
func New(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl.With().Str("component", "glsdk").Logger()}
}

// NewFromOptions builds the zerolog logger and wraps it
func NewFromOptions(options Options) *Logger {
	output := options.Output
	if output == nil {
		output = os.Stdout
	}
	if options.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	level := zerolog.InfoLevel
	if v := strings.TrimSpace(options.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}
	return New(zerolog.New(output).Level(level).With().Timestamp().Logger())
}

func message(msg []interface{}) string {
	if len(msg) == 1 {
		if s, ok := msg[0].(string); ok {
			return s
		}
	}
	return strings.TrimSuffix(fmt.Sprintln(msg...), "\n")
}

// Error logs a message with Error level
func (l *Logger) Error(msg ...interface{}) {
	l.zl.Error().Msg(message(msg))
}

// Warning logs a message with Warning level
func (l *Logger) Warning(msg ...interface{}) {
	l.zl.Warn().Msg(message(msg))
}

// Info logs a message with Info level
func (l *Logger) Info(msg ...interface{}) {
	l.zl.Info().Msg(message(msg))
}

// Debug logs a message with Debug level
func (l *Logger) Debug(msg ...interface{}) {
	l.zl.Debug().Msg(message(msg))
}

// Verbose logs a message with Trace level
func (l *Logger) Verbose(msg ...interface{}) {
	l.zl.Trace().Msg(message(msg))
}
