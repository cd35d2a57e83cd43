// Package logger wraps zerolog behind the handful of calls the rest of the
// code uses, with a pretty console mode for interactive use.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Logger is the process-wide logger instance.
var Logger zerolog.Logger

type LogLevel string

const (
	LevelDebug LogLevel = "debug"
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

func init() {
	Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// Configure sets the global level and output format. Pretty output is for
// humans at a terminal; the server logs JSON.
func Configure(level LogLevel, pretty bool) {
	zeroLevel := zerolog.InfoLevel
	switch level {
	case LevelDebug:
		zeroLevel = zerolog.DebugLevel
	case LevelWarn:
		zeroLevel = zerolog.WarnLevel
	case LevelError:
		zeroLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(zeroLevel)

	var writer io.Writer = os.Stderr
	if pretty {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		}
	}

	Logger = zerolog.New(writer).With().Timestamp().Logger()
	log.Logger = Logger
}

// LevelFromEnv reads the log level from DEBUG, defaulting to info.
func LevelFromEnv() LogLevel {
	debug := strings.ToLower(os.Getenv("DEBUG"))
	if debug == "true" || debug == "1" {
		return LevelDebug
	}
	return LevelInfo
}

func Debug(msg string)                          { Logger.Debug().Msg(msg) }
func Debugf(format string, args ...interface{}) { Logger.Debug().Msgf(format, args...) }
func Info(msg string)                           { Logger.Info().Msg(msg) }
func Infof(format string, args ...interface{})  { Logger.Info().Msgf(format, args...) }
func Warn(msg string)                           { Logger.Warn().Msg(msg) }
func Warnf(format string, args ...interface{})  { Logger.Warn().Msgf(format, args...) }
func Error(msg string)                          { Logger.Error().Msg(msg) }
func Errorf(format string, args ...interface{}) { Logger.Error().Msgf(format, args...) }

// WithField creates a child logger carrying one structured field.
func WithField(key string, value interface{}) zerolog.Logger {
	return Logger.With().Interface(key, value).Logger()
}
