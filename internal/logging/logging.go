package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"codesight/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

func ParseLevel(s string) (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return lvl, nil
}

// DefaultFile returns <user cache dir>/codesight/codesight.log.
func DefaultFile() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "codesight.log"
	}
	return filepath.Join(dir, "codesight", "codesight.log")
}

func rotating(cfg config.LoggingConfig, fallback string) *lumberjack.Logger {
	name := cfg.File
	if name == "" {
		name = fallback
	}
	return &lumberjack.Logger{
		Filename:   name,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   true,
	}
}

// NewServer logs JSON to stdout, also writing to a rotating file when
// cfg.File is set.
func NewServer(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.File == "" {
		return logger, nil
	}

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(rotating(cfg, "")),
		zc.Level,
	)
	return logger.WithOptions(zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, fileCore)
	})), nil
}

// NewFile logs only to a rotating file. The terminal UI owns stdout.
func NewFile(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	w := rotating(cfg, DefaultFile())
	if err := os.MkdirAll(filepath.Dir(w.Filename), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(w), lvl)
	return zap.New(core, zap.AddCaller()), nil
}
