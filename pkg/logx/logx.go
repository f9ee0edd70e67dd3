package logx

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity that gets written
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
)

var (
	level  = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger = newLogger()
)

func newLogger() *zap.SugaredLogger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)
	return zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Sugar()
}

// SetLevel changes the minimum level at runtime
func SetLevel(l Level) {
	level.SetLevel(zapcore.Level(l))
}

// ParseLevel maps "debug", "info", "warn" and "error" to a Level; anything else is info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// With returns a logger carrying structured key/value fields
func With(keysAndValues ...any) *zap.SugaredLogger {
	return logger.Desugar().WithOptions(zap.AddCallerSkip(-1)).Sugar().With(keysAndValues...)
}

func Debug(args ...any)                 { logger.Debug(args...) }
func Debugf(format string, args ...any) { logger.Debugf(format, args...) }
func Info(args ...any)                  { logger.Info(args...) }
func Infof(format string, args ...any)  { logger.Infof(format, args...) }
func Warn(args ...any)                  { logger.Warn(args...) }
func Warnf(format string, args ...any)  { logger.Warnf(format, args...) }
func Error(args ...any)                 { logger.Error(args...) }
func Errorf(format string, args ...any) { logger.Errorf(format, args...) }
func Fatalf(format string, args ...any) { logger.Fatalf(format, args...) }

// Sync flushes buffered entries; call before exit
func Sync() {
	_ = logger.Sync()
}
