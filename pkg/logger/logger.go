package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls where and how verbosely the process logs.
type Config struct {
	Level      string // debug, info, warn, error
	Output     string // console, file, both
	FilePath   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// New builds a zap logger per cfg. File output rotates via lumberjack.
func New(cfg Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleEnc := zapcore.NewConsoleEncoder(encCfg)
	fileEnc := zapcore.NewJSONEncoder(encCfg)

	var core zapcore.Core
	switch cfg.Output {
	case "file":
		w, err := fileWriter(cfg)
		if err != nil {
			return nil, err
		}
		core = zapcore.NewCore(fileEnc, zapcore.AddSync(w), level)
	case "both":
		w, err := fileWriter(cfg)
		if err != nil {
			return nil, err
		}
		core = zapcore.NewTee(
			zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), level),
			zapcore.NewCore(fileEnc, zapcore.AddSync(w), level),
		)
	default:
		core = zapcore.NewCore(consoleEnc, zapcore.AddSync(os.Stdout), level)
	}

	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func fileWriter(cfg Config) (*lumberjack.Logger, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("log output %q requires a file path", cfg.Output)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	return &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}, nil
}
