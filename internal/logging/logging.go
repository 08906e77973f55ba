package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger struct {
	LogToFile bool
	sugar     *zap.SugaredLogger
}

func NewLogger() *Logger {
	logFile := os.Getenv("GALAXY_LOG")

	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true

	if logFile != "" {
		dir := filepath.Dir(logFile)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			panic(err)
		}
		cfg.OutputPaths = []string{logFile}
		cfg.ErrorOutputPaths = []string{logFile}
	} else {
		cfg.OutputPaths = []string{"stderr"}
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(err)
	}

	return &Logger{
		LogToFile: logFile != "",
		sugar:     logger.Sugar(),
	}
}

func (l *Logger) Debug(message string) {
	l.sugar.Debug(message)
}

func (l *Logger) Info(message string) {
	l.sugar.Info(message)
}

func (l *Logger) Warn(message string) {
	l.sugar.Warn(message)
}

func (l *Logger) Error(message string) {
	l.sugar.Error(message)
}

// Fatal logs and exits.
func (l *Logger) Fatal(message string) {
	l.sugar.Fatal(message)
}

var GlobalLogger = NewLogger()
