// Package stdlogger adapts the global zerolog logger to the printf style
// logger interface used by embedded libraries such as BadgerDB.
package stdlogger

import (
	"strings"

	"github.com/rs/zerolog/log"
)

// Logger forwards printf style calls to zerolog.
type Logger struct {
	component string
}

// Option configures a Logger.
type Option func(*Logger)

// WithComponent tags every line with a "component" field.
func WithComponent(name string) Option {
	return func(l *Logger) {
		l.component = name
	}
}

// New creates a logger writing to the global zerolog logger.
func New(opts ...Option) *Logger {
	l := &Logger{}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// libraries terminate their messages with a newline, zerolog adds its own.
func trim(format string) string {
	return strings.TrimSuffix(format, "\n")
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...interface{}) {
	log.Error().Str("component", l.component).Msgf(trim(format), args...)
}

// Warningf logs at warn level.
func (l *Logger) Warningf(format string, args ...interface{}) {
	log.Warn().Str("component", l.component).Msgf(trim(format), args...)
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...interface{}) {
	log.Info().Str("component", l.component).Msgf(trim(format), args...)
}

// Debugf logs at debug level.
func (l *Logger) Debugf(format string, args ...interface{}) {
	log.Debug().Str("component", l.component).Msgf(trim(format), args...)
}
