package logger

import "go.uber.org/zap"

// CustomLogger carries per-request fields on top of the global sugared logger.
type CustomLogger struct {
	sugaredZapLogger *zap.SugaredLogger
}

func NewCustomLogger() *CustomLogger {
	return &CustomLogger{
		sugaredZapLogger: SugaredZapLogger,
	}
}

// With returns a child logger, the receiver is left untouched.
func (l *CustomLogger) With(args ...interface{}) *CustomLogger {
	return &CustomLogger{sugaredZapLogger: l.sugaredZapLogger.With(args...)}
}

func (l *CustomLogger) Debugf(template string, args ...interface{}) {
	l.sugaredZapLogger.Debugf(template, args...)
}

func (l *CustomLogger) Infof(template string, args ...interface{}) {
	l.sugaredZapLogger.Infof(template, args...)
}

func (l *CustomLogger) Warnf(template string, args ...interface{}) {
	l.sugaredZapLogger.Warnf(template, args...)
}

func (l *CustomLogger) Errorf(template string, args ...interface{}) {
	l.sugaredZapLogger.Errorf(template, args...)
}
