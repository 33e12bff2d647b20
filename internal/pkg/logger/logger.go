package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var defaultLogger zerolog.Logger

// Config represents logger configuration
type Config struct {
	// Level is one of trace, debug, info, warn, error, fatal
	Level string
	// Pretty enables human-readable console output
	Pretty bool
	// Output defaults to os.Stdout
	Output io.Writer
}

// Configure configures the global logger with the provided config
func Configure(config Config) zerolog.Logger {
	if config.Output == nil {
		config.Output = os.Stdout
	}

	zerolog.TimeFieldFormat = time.RFC3339

	lvl, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil || config.Level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	var writer io.Writer = config.Output
	if config.Pretty {
		writer = zerolog.ConsoleWriter{
			Out:        config.Output,
			TimeFormat: time.RFC3339,
		}
	}

	defaultLogger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = defaultLogger
	return defaultLogger
}

// Get returns the configured global logger
func Get() zerolog.Logger {
	return defaultLogger
}

// Debug logs a debug message
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info logs an informational message
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn logs a warning message
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error logs an error message
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Fatal logs a fatal message and then exits
func Fatal() *zerolog.Event {
	return defaultLogger.Fatal()
}

// WithField adds a field to the logger
func WithField(key string, value interface{}) zerolog.Logger {
	return defaultLogger.With().Interface(key, value).Logger()
}

func init() {
	Configure(Config{
		Level:  "info",
		Pretty: true,
		Output: os.Stdout,
	})
}
