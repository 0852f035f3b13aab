package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

func init() {
	base = build(os.Getenv("ENVIRONMENT"))
	sugar = base.Sugar()
}

func build(environment string) *zap.Logger {
	var cfg zap.Config
	if environment == "development" || environment == "" {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
	}

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return zap.NewNop()
	}
	return l
}

// Init rebuilds the package logger for the given environment.
func Init(environment string) {
	base = build(environment)
	sugar = base.Sugar()
}

// L returns the structured logger for callers that want typed fields.
func L() *zap.Logger {
	return base.WithOptions(zap.AddCallerSkip(-1))
}

func Info(format string, v ...interface{}) {
	sugar.Infof(format, v...)
}

func Error(format string, v ...interface{}) {
	sugar.Errorf(format, v...)
}

func Debug(format string, v ...interface{}) {
	sugar.Debugf(format, v...)
}

func Warn(format string, v ...interface{}) {
	sugar.Warnf(format, v...)
}

func Sync() {
	_ = base.Sync()
}
