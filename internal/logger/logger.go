// Package logger provides structured logging for the parameter crawler.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Level represents log levels.
type Level = zerolog.Level

// Log levels.
const (
	DebugLevel = zerolog.DebugLevel
	InfoLevel  = zerolog.InfoLevel
	WarnLevel  = zerolog.WarnLevel
	ErrorLevel = zerolog.ErrorLevel
)

// Logger wraps zerolog for structured logging.
type Logger struct {
	zl zerolog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level     Level
	Pretty    bool // Use console writer (colored output)
	Output    io.Writer
	Component string // Component name (e.g., "engine", "fetch", "dispatch")
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Level:  WarnLevel,
		Pretty: true,
		Output: os.Stderr,
	}
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	output := cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{
			Out:        cfg.Output,
			TimeFormat: "15:04:05",
		}
	}

	zl := zerolog.New(output).
		With().
		Timestamp().
		Logger().
		Level(cfg.Level)

	if cfg.Component != "" {
		zl = zl.With().Str("component", cfg.Component).Logger()
	}

	return &Logger{zl: zl}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// LevelFor maps the CLI verbosity switches onto a level.
func LevelFor(verbose, debug bool) Level {
	switch {
	case debug:
		return DebugLevel
	case verbose:
		return InfoLevel
	default:
		return WarnLevel
	}
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{zl: l.zl.With().Str("component", component).Logger()}
}

// WithSeed returns a new logger bound to a traversal run's seed URL.
func (l *Logger) WithSeed(seed string) *Logger {
	return &Logger{zl: l.zl.With().Str("seed", seed).Logger()}
}

// WithDepth returns a new logger with depth field.
func (l *Logger) WithDepth(depth int) *Logger {
	return &Logger{zl: l.zl.With().Int("depth", depth).Logger()}
}

// Debugf logs a formatted debug message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string) {
	l.zl.Info().Msg(msg)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Errorf logs a formatted error message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// FetchEvent logs a completed page fetch.
func (l *Logger) FetchEvent(url string, depth, attempts int, duration time.Duration) {
	l.zl.Info().
		Str("url", url).
		Int("depth", depth).
		Int("attempts", attempts).
		Dur("duration", duration).
		Msg("Fetched page")
}

// RetryEvent logs a failed attempt that will be retried after wait.
func (l *Logger) RetryEvent(err error, url string, attempt int, wait time.Duration) {
	l.zl.Warn().
		Err(err).
		Str("url", url).
		Int("attempt", attempt).
		Dur("backoff", wait).
		Msg("Retrying request")
}

// ErrorEvent logs an error event with context.
func (l *Logger) ErrorEvent(err error, url string, operation string) {
	l.zl.Error().
		Err(err).
		Str("url", url).
		Str("operation", operation).
		Msg("Operation failed")
}

// WarnEvent logs a recoverable failure with context.
func (l *Logger) WarnEvent(err error, url string, operation string) {
	l.zl.Warn().
		Err(err).
		Str("url", url).
		Str("operation", operation).
		Msg("Operation failed")
}

// StatsEvent logs statistics.
func (l *Logger) StatsEvent(stats map[string]interface{}) {
	event := l.zl.Info()
	for k, v := range stats {
		event = event.Interface(k, v)
	}
	event.Msg("Crawl statistics")
}
