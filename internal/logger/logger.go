package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ZapLogger        *zap.Logger
	SugaredZapLogger *zap.SugaredLogger
)

func init() {
	ZapLogger, _ = zap.NewDevelopment(zap.AddCaller(), zap.AddCallerSkip(1))
	SugaredZapLogger = ZapLogger.Sugar()
}

// Init replaces the global loggers. Lambda gets the JSON production encoder so
// CloudWatch can index the fields, local runs keep the console encoder.
func Init(level string, production bool) error {
	lvl := zapcore.InfoLevel
	if level != "" {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return err
		}
	}
	cfg := zap.NewDevelopmentConfig()
	if production {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	l, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		return err
	}
	ZapLogger = l
	SugaredZapLogger = l.Sugar()
	return nil
}

func Sync() {
	_ = ZapLogger.Sync()
}

func Debug(msg string, fields ...zap.Field) {
	ZapLogger.Debug(msg, fields...)
}

func Debugf(template string, args ...interface{}) {
	SugaredZapLogger.Debugf(template, args...)
}

func Info(msg string, fields ...zap.Field) {
	ZapLogger.Info(msg, fields...)
}

func Infof(template string, args ...interface{}) {
	SugaredZapLogger.Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	SugaredZapLogger.Warnf(template, args...)
}

func Error(msg string, fields ...zap.Field) {
	ZapLogger.Error(msg, fields...)
}

func Errorf(template string, args ...interface{}) {
	SugaredZapLogger.Errorf(template, args...)
}

// Panicf logs at error level, flushes, then panics so deferred calls in
// main still run.
func Panicf(template string, args ...interface{}) {
	msg := fmt.Sprintf(template, args...)
	SugaredZapLogger.Error(msg)
	Sync()
	panic(msg)
}
