// Copyright 2018 ETH Zurich
// Copyright 2019 ETH Zurich, Anapaya Systems
// Copyright 2026 The sStreaming Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package log is the logging facade of the controller. It is a thin wrapper
// around zap that accepts alternating key value pairs as log context:
//
//	log.Info("Switch connected", "dpid", dpid, "ports", len(ports))
//
// Components that need a scoped logger derive one with New or carry it in a
// context with CtxWith and FromCtx.
package log

import (
	"fmt"
	"net/http"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sstreaming/sstreaming/pkg/private/serrors"
)

// Level is the log level.
type Level zapcore.Level

// The different log levels.
const (
	DebugLevel = Level(zapcore.DebugLevel)
	InfoLevel  = Level(zapcore.InfoLevel)
	ErrorLevel = Level(zapcore.ErrorLevel)
)

// Logger describes the logger interface.
type Logger interface {
	New(ctx ...any) Logger
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	Enabled(lvl Level) bool
}

// ConsoleLevel allows to interact with the logging level at runtime. It is
// only initialized after a successful call to Setup.
var ConsoleLevel httpLevel

type httpLevel struct {
	a zap.AtomicLevel
}

// ServeHTTP serves the current level as JSON and allows changing it with PUT.
func (l httpLevel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	l.a.ServeHTTP(w, r)
}

// Setup configures the logging library with the given config.
func Setup(cfg Config, opts ...Option) error {
	o := applyOptions(opts)
	cfg.InitDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return setupConsole(cfg.Console, o)
}

func setupConsole(cfg ConsoleConfig, opts options) error {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return serrors.Wrap("parsing console level", err, "level", cfg.Level)
	}
	stackLevel, err := stacktraceLevel(cfg.StacktraceLevel)
	if err != nil {
		return serrors.Wrap("parsing stacktrace level", err, "level", cfg.StacktraceLevel)
	}
	encoding := "console"
	if cfg.Format == "json" {
		encoding = "json"
	}
	zCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Development:       false,
		DisableCaller:     cfg.DisableCaller,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	zOpts := append(opts.zapOptions(), zap.AddStacktrace(stackLevel))
	logger, err := zCfg.Build(zOpts...)
	if err != nil {
		return serrors.Wrap("creating logger", err)
	}
	zap.ReplaceGlobals(logger)
	ConsoleLevel = httpLevel{a: zCfg.Level}
	return nil
}

// stacktraceLevel maps the configured level to a zap level enabler. "none"
// disables stack traces altogether.
func stacktraceLevel(lvl string) (zapcore.LevelEnabler, error) {
	if lvl == "none" {
		return zap.LevelEnablerFunc(func(zapcore.Level) bool { return false }), nil
	}
	return parseLevel(lvl)
}

func parseLevel(lvl string) (zapcore.Level, error) {
	var l zapcore.Level
	if err := l.UnmarshalText([]byte(lvl)); err != nil {
		return l, err
	}
	return l, nil
}

// HandlePanic catches panics and logs them. It re-panics after logging so
// that the process terminates with the original stack.
func HandlePanic() {
	if msg := recover(); msg != nil {
		zap.L().Error("Panic", zap.Any("msg", msg), zap.Stack("stack"))
		zap.L().Error("=====================> Service panicked!")
		Flush()
		panic(msg)
	}
}

// Flush writes the logs to the underlying buffer.
func Flush() {
	_ = zap.L().Sync()
}

// Discard sets the logger up to discard all log entries. This is useful for
// testing.
func Discard() {
	zap.ReplaceGlobals(zap.NewNop())
}

// Root returns the root logger. It's a logger without any context.
func Root() Logger {
	return &logger{logger: zap.L()}
}

// New creates a logger with the given context.
func New(ctx ...any) Logger {
	return &logger{logger: zap.L().With(convertCtx(ctx)...)}
}

// Debug logs at debug level.
func Debug(msg string, ctx ...any) {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, convertCtx(ctx)...)
}

// Info logs at info level.
func Info(msg string, ctx ...any) {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Info(msg, convertCtx(ctx)...)
}

// Error logs at error level.
func Error(msg string, ctx ...any) {
	zap.L().WithOptions(zap.AddCallerSkip(1)).Error(msg, convertCtx(ctx)...)
}

// SafeNewLogger creates a new logger as a child of l only if l is not nil. If l is nil,
// then nil is returned.
func SafeNewLogger(l Logger, fields ...any) Logger {
	if l != nil {
		return l.New(fields...)
	}
	return nil
}

// SafeDebug logs to l only if l is not nil.
func SafeDebug(l Logger, msg string, fields ...any) {
	if l != nil {
		l.Debug(msg, fields...)
	}
}

// SafeInfo logs to l only if l is not nil.
func SafeInfo(l Logger, msg string, fields ...any) {
	if l != nil {
		l.Info(msg, fields...)
	}
}

// SafeError logs to l only if l is not nil.
func SafeError(l Logger, msg string, fields ...any) {
	if l != nil {
		l.Error(msg, fields...)
	}
}

type logger struct {
	logger *zap.Logger
}

func (l *logger) New(ctx ...any) Logger {
	return &logger{logger: l.logger.With(convertCtx(ctx)...)}
}

func (l *logger) Debug(msg string, ctx ...any) {
	l.logger.Debug(msg, convertCtx(ctx)...)
}

func (l *logger) Info(msg string, ctx ...any) {
	l.logger.Info(msg, convertCtx(ctx)...)
}

func (l *logger) Error(msg string, ctx ...any) {
	l.logger.Error(msg, convertCtx(ctx)...)
}

func (l *logger) Enabled(lvl Level) bool {
	return l.logger.Core().Enabled(zapcore.Level(lvl))
}

func convertCtx(ctx []any) []zap.Field {
	fields := make([]zap.Field, 0, len(ctx)/2)
	for i := 0; i+1 < len(ctx); i += 2 {
		key, ok := ctx[i].(string)
		if !ok {
			key = fmt.Sprint(ctx[i])
		}
		fields = append(fields, zap.Any(key, ctx[i+1]))
	}
	if len(ctx)%2 != 0 {
		fields = append(fields, zap.Any("LOG_MISSING_VALUE", ctx[len(ctx)-1]))
	}
	return fields
}

func init() {
	// Until Setup is called, log to stderr at info level so that early errors
	// are not lost.
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	if l, err := cfg.Build(); err == nil {
		zap.ReplaceGlobals(l)
	} else {
		fmt.Fprintf(os.Stderr, "initializing logger: %v\n", err)
	}
}
