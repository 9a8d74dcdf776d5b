package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type LoggerConfig struct {
	Level string
	// Dir, when set, receives a timestamped log file per process in
	// addition to stdout.
	Dir  string
	Name string
}

// RunLogger wraps a zap logger and the optional log file behind it.
type RunLogger struct {
	*zap.Logger
	file *os.File
}

func NewLogger(cfg LoggerConfig) (*RunLogger, error) {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg LoggerConfig, stdout io.Writer) (*RunLogger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)
	level := zap.NewAtomicLevelAt(ParseLevel(cfg.Level))

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.AddSync(stdout), level),
	}

	var file *os.File
	if cfg.Dir != "" {
		name := cfg.Name
		if name == "" {
			name = "sitemap"
		}
		sanitized := strings.ReplaceAll(strings.ToLower(name), " ", "_")

		if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create logs directory: %w", err)
		}

		timestamp := time.Now().Format("2006-01-02_15-04-05")
		logPath := filepath.Join(cfg.Dir, fmt.Sprintf("%s_%s.log", sanitized, timestamp))

		f, err := os.Create(logPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		file = f
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), level))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())

	return &RunLogger{Logger: logger, file: file}, nil
}

// ParseLevel converts a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *RunLogger) Close() error {
	_ = l.Logger.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
