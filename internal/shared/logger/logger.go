package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the field-pair calling convention used across
// the service: log.Info("msg", "key", value, "key2", value2).
type Logger struct {
	zl zerolog.Logger
}

// New builds a logger for the given service name and minimum level.
// When filePath is non-empty, output is duplicated into a rotating file.
func New(service, level, filePath string) *Logger {
	writers := []io.Writer{ConsoleWriter()}
	if filePath != "" {
		writers = append(writers, FileWriter(filePath))
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}

	zl := zerolog.New(io.MultiWriter(writers...)).
		Level(lvl).
		With().
		Timestamp().
		Str("service", service).
		Logger()

	return &Logger{zl: zl}
}

// NewNop returns a logger that discards everything. For tests.
func NewNop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// ConsoleWriter returns a human-readable stdout writer.
func ConsoleWriter() io.Writer {
	return zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
}

// FileWriter returns a rotating file writer.
func FileWriter(path string) io.Writer {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     30, // days
		Compress:   true,
	}
}

func (l *Logger) Debug(msg string, fields ...any) { logWithFields(l.zl.Debug(), msg, fields...) }
func (l *Logger) Info(msg string, fields ...any)  { logWithFields(l.zl.Info(), msg, fields...) }
func (l *Logger) Warn(msg string, fields ...any)  { logWithFields(l.zl.Warn(), msg, fields...) }
func (l *Logger) Error(msg string, fields ...any) { logWithFields(l.zl.Error(), msg, fields...) }
func (l *Logger) Fatal(msg string, fields ...any) { logWithFields(l.zl.Fatal(), msg, fields...) }

func logWithFields(ev *zerolog.Event, msg string, fields ...any) {
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, fields[i+1])
	}
	ev.Msg(msg)
}
