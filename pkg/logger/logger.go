package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

type LogLevel string

const (
	DEBUG LogLevel = "debug"
	INFO  LogLevel = "info"
	WARN  LogLevel = "warn"
	ERROR LogLevel = "error"
)

// Logger is a leveled key/value logger. Fields attached with WithContext
// are carried by every event the child logger emits.
type Logger struct {
	entry *logrus.Entry
}

var (
	global *Logger
	mu     sync.RWMutex
)

// New builds a standalone logger. A nil writer discards output.
func New(level LogLevel, jsonFormat bool, w io.Writer) *Logger {
	l := logrus.New()
	if w == nil {
		w = io.Discard
	}
	l.SetOutput(w)
	l.SetLevel(parseLevel(level))
	if jsonFormat {
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
			DisableColors:   true,
		})
	}
	return &Logger{entry: logrus.NewEntry(l)}
}

// Init replaces the process-wide logger.
func Init(level LogLevel, jsonFormat bool, w io.Writer) {
	l := New(level, jsonFormat, w)
	mu.Lock()
	global = l
	mu.Unlock()
}

func GetLogger() *Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = New(INFO, false, os.Stdout)
	}
	return global
}

func parseLevel(level LogLevel) logrus.Level {
	switch LogLevel(strings.ToLower(string(level))) {
	case DEBUG:
		return logrus.DebugLevel
	case WARN, "warning":
		return logrus.WarnLevel
	case ERROR:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// WithContext returns a child logger carrying the given key/value pairs.
func (l *Logger) WithContext(kv ...interface{}) *Logger {
	return &Logger{entry: l.entry.WithFields(fields(kv))}
}

func (l *Logger) Debug(msg string, kv ...interface{}) {
	l.entry.WithFields(fields(kv)).Debug(msg)
}

func (l *Logger) Info(msg string, kv ...interface{}) {
	l.entry.WithFields(fields(kv)).Info(msg)
}

func (l *Logger) Warn(msg string, kv ...interface{}) {
	l.entry.WithFields(fields(kv)).Warn(msg)
}

func (l *Logger) Error(msg string, kv ...interface{}) {
	l.entry.WithFields(fields(kv)).Error(msg)
}

func (l *Logger) IsDebug() bool {
	return l.entry.Logger.IsLevelEnabled(logrus.DebugLevel)
}

func WithContext(kv ...interface{}) *Logger { return GetLogger().WithContext(kv...) }

func Debug(msg string, kv ...interface{}) { GetLogger().Debug(msg, kv...) }
func Info(msg string, kv ...interface{})  { GetLogger().Info(msg, kv...) }
func Warn(msg string, kv ...interface{})  { GetLogger().Warn(msg, kv...) }
func Error(msg string, kv ...interface{}) { GetLogger().Error(msg, kv...) }

// fields turns alternating key/value arguments into logrus fields.
// A trailing key without value is recorded under "extra".
func fields(kv []interface{}) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i < len(kv); i += 2 {
		if i+1 >= len(kv) {
			f["extra"] = kv[i]
			break
		}
		if m, ok := kv[i].(map[string]interface{}); ok {
			for k, v := range m {
				f[k] = v
			}
			i--
			continue
		}
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}
