// Copyright 2025 Google LLC
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

// Package logger provides the process-wide leveled logger used across the
// command and bundle packages. It wraps log/slog with the
// severity vocabulary and text/json framing this project has always used,
// and with file rotation via lumberjack.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/google/sparsebundle/cfg"
)

// Severity levels, ordered the same as slog's but extended with TRACE below
// DEBUG and OFF above ERROR so logging can be disabled entirely.
const (
	LevelTrace = slog.Level(-8)
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
	LevelOff   = slog.Level(12)
)

// Severity name strings accepted in configuration.
const (
	Trace   = "TRACE"
	Debug   = "DEBUG"
	Info    = "INFO"
	Warning = "WARNING"
	Error   = "ERROR"
	Off     = "OFF"
)

type loggerFactory struct {
	file      *lumberjack.Logger
	sysWriter io.Writer
	format    string
	level     string
}

var (
	defaultLoggerFactory = &loggerFactory{sysWriter: os.Stderr, format: "text", level: Info}
	programLevel         = new(slog.LevelVar)
	defaultLogger        = slog.New(defaultLoggerFactory.createJsonOrTextHandler(os.Stderr, programLevel, ""))
)

func init() {
	setLoggingLevel(Info, programLevel)
}

// InitLogFile redirects the default logger to the rotated file described by
// cfg, or back to stderr when cfg.FilePath is empty.
func InitLogFile(lcfg cfg.LoggingConfig) error {
	factory := &loggerFactory{format: lcfg.Format, level: lcfg.Severity}

	var w io.Writer
	if lcfg.FilePath == "" {
		factory.sysWriter = os.Stderr
		w = os.Stderr
	} else {
		lj := &lumberjack.Logger{
			Filename:   string(lcfg.FilePath),
			MaxSize:    lcfg.LogRotate.MaxFileSizeMB,
			MaxBackups: lcfg.LogRotate.BackupFileCount,
			Compress:   lcfg.LogRotate.Compress,
		}
		factory.file = lj
		w = NewAsyncLogger(lj, 1024)
		factory.sysWriter = w
	}

	defaultLoggerFactory = factory
	programLevel = new(slog.LevelVar)
	defaultLogger = slog.New(factory.createJsonOrTextHandler(w, programLevel, ""))
	setLoggingLevel(lcfg.Severity, programLevel)
	return nil
}

// SetLogFormat switches the active logger between "text" and "json"
// framing without touching its destination or level.
func SetLogFormat(format string) {
	defaultLoggerFactory.format = format
	w := defaultLoggerFactory.sysWriter
	if w == nil {
		w = os.Stderr
	}
	defaultLogger = slog.New(defaultLoggerFactory.createJsonOrTextHandler(w, programLevel, ""))
}

func setLoggingLevel(level string, v *slog.LevelVar) {
	switch level {
	case Trace:
		v.Set(LevelTrace)
	case Debug:
		v.Set(LevelDebug)
	case Info:
		v.Set(LevelInfo)
	case Warning:
		v.Set(LevelWarn)
	case Error:
		v.Set(LevelError)
	case Off:
		v.Set(LevelOff)
	default:
		v.Set(LevelInfo)
	}
}

// createJsonOrTextHandler renames slog's level/msg attributes to the
// severity/message vocabulary this project has always emitted, and prints
// the extended TRACE/OFF levels by name instead of slog's default
// "DEBUG-4"/"ERROR+4" rendering.
func (f *loggerFactory) createJsonOrTextHandler(w io.Writer, level *slog.LevelVar, prefix string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			switch a.Key {
			case slog.LevelKey:
				a.Key = "severity"
				a.Value = slog.StringValue(severityName(a.Value.Any().(slog.Level)))
			case slog.MessageKey:
				a.Key = "message"
				if prefix != "" {
					a.Value = slog.StringValue(prefix + a.Value.String())
				}
			case slog.TimeKey:
				a.Value = slog.StringValue(a.Value.Time().Format(time.RFC3339Nano))
			}
			return a
		},
	}

	if f.format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func severityName(l slog.Level) string {
	switch {
	case l < LevelDebug:
		return Trace
	case l < LevelInfo:
		return Debug
	case l < LevelWarn:
		return Info
	case l < LevelError:
		return Warning
	case l < LevelOff:
		return Error
	default:
		return Off
	}
}

func log(ctx context.Context, level slog.Level, format string, args ...any) {
	if !defaultLogger.Enabled(ctx, level) {
		return
	}
	defaultLogger.Log(ctx, level, sprintf(format, args...))
}

func sprintf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func Tracef(format string, args ...any) { log(context.Background(), LevelTrace, format, args...) }
func Debugf(format string, args ...any) { log(context.Background(), LevelDebug, format, args...) }
func Infof(format string, args ...any)  { log(context.Background(), LevelInfo, format, args...) }
func Warnf(format string, args ...any)  { log(context.Background(), LevelWarn, format, args...) }
func Errorf(format string, args ...any) { log(context.Background(), LevelError, format, args...) }
