// Copyright 2024 Google Inc. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger is the VFS's leveled logger. It mirrors the six-level
// scheme named in the source (CRITICAL, ERROR, WARN, INFO, DEBUG, TRACE)
// on top of log/slog, with the level held in a single slog.LevelVar so it
// can be changed at any time from configuration without touching call
// sites — the one piece of global mutable state the VFS owns.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// The six severities the source's logmsg() distinguishes, mapped onto
// slog's int-ordered Level space. slog's built-ins (Debug/Info/Warn/Error)
// cover the middle four; Trace and Critical extend below and above them.
const (
	LevelTrace    = slog.Level(-8)
	LevelDebug    = slog.LevelDebug
	LevelInfo     = slog.LevelInfo
	LevelWarn     = slog.LevelWarn
	LevelError    = slog.LevelError
	LevelCritical = slog.Level(12)
	// LevelOff disables all logging; no message's level is ever >= it.
	LevelOff = slog.Level(1 << 20)
)

var levelNames = map[slog.Level]string{
	LevelTrace:    "TRACE",
	LevelDebug:    "DEBUG",
	LevelInfo:     "INFO",
	LevelWarn:     "WARN",
	LevelError:    "ERROR",
	LevelCritical: "CRITICAL",
}

// Severity names accepted by SetLoggingLevel, matching spec's enumeration.
const (
	Trace    = "TRACE"
	Debug    = "DEBUG"
	Info     = "INFO"
	Warn     = "WARN"
	Error    = "ERROR"
	Critical = "CRITICAL"
	Off      = "OFF"
)

func severityToLevel(severity string) slog.Level {
	switch strings.ToUpper(severity) {
	case Trace:
		return LevelTrace
	case Debug:
		return LevelDebug
	case Info:
		return LevelInfo
	case Warn:
		return LevelWarn
	case Error:
		return LevelError
	case Critical:
		return LevelCritical
	default:
		return LevelOff
	}
}

// loggerFactory remembers enough to rebuild the handler when the format or
// destination changes after InitLogger has already run.
type loggerFactory struct {
	writer io.Writer
	format string // "text" or "json"
	level  *slog.LevelVar
	prefix string
}

func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				lvl, _ := a.Value.Any().(slog.Level)
				name, ok := levelNames[lvl]
				if !ok {
					name = lvl.String()
				}
				return slog.String("severity", name)
			case slog.MessageKey:
				return slog.String("message", prefix+a.Value.String())
			case slog.TimeKey:
				if f.format == "json" {
					t := a.Value.Time()
					return slog.Group("timestamp",
						slog.Int64("seconds", t.Unix()),
						slog.Int64("nanos", int64(t.Nanosecond())))
				}
				return slog.String(slog.TimeKey, a.Value.Time().Format("02/01/2006 15:04:05.000000"))
			}
			return a
		},
	}
	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

var (
	defaultLevel         = new(slog.LevelVar)
	defaultLoggerFactory = &loggerFactory{writer: os.Stderr, format: "text", level: defaultLevel}
	defaultLogger        = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, defaultLevel, ""))
)

func setLoggingLevel(severity string, level *slog.LevelVar) {
	level.Set(severityToLevel(severity))
}

// SetLoggingLevel changes the process-wide log level. Safe to call at any
// time; readable from any goroutine via the underlying atomic LevelVar.
func SetLoggingLevel(severity string) {
	setLoggingLevel(severity, defaultLoggerFactory.level)
}

// SetLogFormat switches between "text" and "json" rendering. Anything
// other than "json" yields text, except the empty string, which defaults
// to json for parity with InitLogger's default.
func SetLogFormat(format string) {
	if format == "" {
		format = "json"
	}
	defaultLoggerFactory.format = format
	rebuild()
}

// InitLogger (re)points the default logger at w, in the given format and
// severity. Used by cmd/ after parsing configuration.
func InitLogger(w io.Writer, format string, severity string) {
	if format == "" {
		format = "json"
	}
	defaultLoggerFactory = &loggerFactory{writer: w, format: format, level: new(slog.LevelVar)}
	setLoggingLevel(severity, defaultLoggerFactory.level)
	rebuild()
}

func rebuild() {
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(defaultLoggerFactory.writer, defaultLoggerFactory.level, defaultLoggerFactory.prefix))
}

func logf(level slog.Level, format string, v ...interface{}) {
	if !defaultLogger.Enabled(context.Background(), level) {
		return
	}
	msg := format
	if len(v) > 0 {
		msg = fmt.Sprintf(format, v...)
	}
	defaultLogger.Log(context.Background(), level, msg)
}

func Tracef(format string, v ...interface{})    { logf(LevelTrace, format, v...) }
func Debugf(format string, v ...interface{})    { logf(LevelDebug, format, v...) }
func Infof(format string, v ...interface{})     { logf(LevelInfo, format, v...) }
func Warnf(format string, v ...interface{})     { logf(LevelWarn, format, v...) }
func Errorf(format string, v ...interface{})    { logf(LevelError, format, v...) }
func Criticalf(format string, v ...interface{}) { logf(LevelCritical, format, v...) }

// Now lets callers record a timestamped heartbeat without pulling in the
// time package themselves.
func Now() time.Time { return time.Now() }
