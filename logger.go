package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

type Logger struct {
	mu     sync.Mutex
	level  LogLevel
	format string
	output io.Writer
}

func NewLogger(level, format string) *Logger {
	var logLevel LogLevel
	switch strings.ToLower(level) {
	case "debug":
		logLevel = LogLevelDebug
	case "warn":
		logLevel = LogLevelWarn
	case "error":
		logLevel = LogLevelError
	default:
		logLevel = LogLevelInfo
	}

	return &Logger{
		level:  logLevel,
		format: format,
		output: os.Stderr,
	}
}

func (l *Logger) log(level LogLevel, fields map[string]interface{}, format string, args ...interface{}) {
	if level < l.level {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	msg := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("2006-01-02T15:04:05.000Z07:00")

	if l.format == "json" {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level.String(),
			"message":   msg,
		}
		for k, v := range fields {
			entry[k] = v
		}
		jsonBytes, _ := json.Marshal(entry)
		fmt.Fprintln(l.output, string(jsonBytes))
	} else {
		fieldStr := ""
		for k, v := range fields {
			fieldStr += fmt.Sprintf(" %s=%v", k, v)
		}
		fmt.Fprintf(l.output, "[%s] [%s]%s %s\n", timestamp, level.String(), fieldStr, msg)
	}
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LogLevelDebug, nil, format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LogLevelInfo, nil, format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LogLevelWarn, nil, format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LogLevelError, nil, format, args...)
}

func (l *Logger) WithFields(fields map[string]interface{}) *LogEntry {
	return &LogEntry{logger: l, fields: fields}
}

func (l *Logger) WithField(key string, value interface{}) *LogEntry {
	return l.WithFields(map[string]interface{}{key: value})
}

type LogEntry struct {
	logger *Logger
	fields map[string]interface{}
}

func (e *LogEntry) Debug(format string, args ...interface{}) {
	e.logger.log(LogLevelDebug, e.fields, format, args...)
}

func (e *LogEntry) Info(format string, args ...interface{}) {
	e.logger.log(LogLevelInfo, e.fields, format, args...)
}

func (e *LogEntry) Warn(format string, args ...interface{}) {
	e.logger.log(LogLevelWarn, e.fields, format, args...)
}

func (e *LogEntry) Error(format string, args ...interface{}) {
	e.logger.log(LogLevelError, e.fields, format, args...)
}
