// Package logger wraps a process-wide zap sugared logger.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar = zap.NewNop().Sugar()

func Init(level string) {
	lvl := zap.NewAtomicLevel()
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl.SetLevel(zapcore.InfoLevel)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = lvl
	cfg.OutputPaths = []string{"stdout"}

	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	sugar = l.Sugar()
}

func Info(msg string)                                 { sugar.Info(msg) }
func Infof(template string, args ...interface{})      { sugar.Infof(template, args...) }
func Infow(msg string, keysAndValues ...interface{})  { sugar.Infow(msg, keysAndValues...) }
func Warnf(template string, args ...interface{})      { sugar.Warnf(template, args...) }
func Warnw(msg string, keysAndValues ...interface{})  { sugar.Warnw(msg, keysAndValues...) }
func Errorf(template string, args ...interface{})     { sugar.Errorf(template, args...) }
func Errorw(msg string, keysAndValues ...interface{}) { sugar.Errorw(msg, keysAndValues...) }
func Fatalf(template string, args ...interface{})     { sugar.Fatalf(template, args...) }

// Sync flushes buffered entries; call before exit.
func Sync() { _ = sugar.Sync() }
