package utils

import "go.uber.org/zap"

type Logger struct {
	s *zap.SugaredLogger
}

func NewLogger() *Logger {
	l, _ := zap.NewProduction()
	return &Logger{s: l.Sugar()}
}

// NewNopLogger discards everything. Used in tests.
func NewNopLogger() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

func (lg *Logger) Info(msg string, kv ...any)  { lg.s.Infow(msg, kv...) }
func (lg *Logger) Warn(msg string, kv ...any)  { lg.s.Warnw(msg, kv...) }
func (lg *Logger) Error(msg string, kv ...any) { lg.s.Errorw(msg, kv...) }

func (lg *Logger) Sync() { _ = lg.s.Sync() }
