// Package log builds the engine's shared zap logger: a rotating file sink
// via lumberjack, optionally silenced entirely per spec.md §6's LOG flag.
package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a zap.Logger writing JSON lines to path, rotated by lumberjack
// at 100MB per file, keeping at most 3 backups for up to 28 days. When
// enabled is false, it returns zap.NewNop() so every call site can log
// unconditionally without branching on the config flag.
func New(enabled bool, path string) *zap.Logger {
	if !enabled {
		return zap.NewNop()
	}

	sink := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     28,
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(sink),
		zap.InfoLevel,
	)
	return zap.New(core)
}
