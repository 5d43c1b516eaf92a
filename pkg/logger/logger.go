// Package logger is the process-wide structured logger.
//
// Call sites pass a message followed by key/value pairs:
//
//	logger.Info("server starting", "address", addr)
//	logger.Error("failed to save profile", "user_id", id, "error", err)
//
// A trailing value without a key is logged under "error" when it is an
// error and under "arg" otherwise.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu  sync.RWMutex
	log = zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger()
)

// Init configures the logger for env. "development" logs to a console writer
// at debug level; anything else logs JSON at info. LOG_LEVEL overrides the level.
func Init(env string) {
	InitWithWriter(env, os.Stderr)
}

func InitWithWriter(env string, w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.MessageFieldName = "message"

	level := zerolog.InfoLevel
	out := w
	if strings.EqualFold(env, "development") {
		level = zerolog.DebugLevel
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	if lv, err := zerolog.ParseLevel(strings.ToLower(os.Getenv("LOG_LEVEL"))); err == nil && lv != zerolog.NoLevel {
		level = lv
	}

	log = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

func Debug(msg string, keyvals ...any) { emit(current().Debug(), msg, keyvals) }
func Info(msg string, keyvals ...any) { emit(current().Info(), msg, keyvals) }
func Warn(msg string, keyvals ...any) { emit(current().Warn(), msg, keyvals) }
func Error(msg string, keyvals ...any) { emit(current().Error(), msg, keyvals) }

// Fatal logs and exits the process.
func Fatal(msg string, keyvals ...any) { emit(current().Fatal(), msg, keyvals) }

func emit(e *zerolog.Event, msg string, keyvals []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok || i+1 >= len(keyvals) {
			loose(e, keyvals[i])
			if !ok {
				i--
			}
			continue
		}
		switch v := keyvals[i+1].(type) {
		case error:
			e.AnErr(key, v)
		case string:
			e.Str(key, v)
		case int:
			e.Int(key, v)
		case uint:
			e.Uint(key, v)
		case float64:
			e.Float64(key, v)
		case bool:
			e.Bool(key, v)
		case time.Duration:
			e.Dur(key, v)
		default:
			e.Interface(key, v)
		}
	}
	e.Msg(msg)
}

func loose(e *zerolog.Event, v any) {
	if err, ok := v.(error); ok {
		e.Err(err)
		return
	}
	e.Interface("arg", v)
}
