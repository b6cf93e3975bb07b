// Package logger builds the zap logger shared by the application. The
// terminal belongs to the UI, so output goes to a file.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls where and how much is logged
type Options struct {
	Env   string // "production" selects JSON output
	Level string // debug, info, warn, error; empty picks by Env
	File  string // empty discards everything
}

// New creates the root logger tagged with serviceName. The returned close
// func flushes and closes the log file.
func New(serviceName string, opts Options) (*zap.Logger, func(), error) {
	if opts.File == "" {
		return zap.NewNop(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}

	level, err := parseLevel(opts)
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	core := zapcore.NewCore(encoder(opts.Env), zapcore.AddSync(f), zap.NewAtomicLevelAt(level))
	log := zap.New(core, zap.AddCaller()).With(zap.String("service", serviceName))

	return log, func() {
		_ = log.Sync()
		f.Close()
	}, nil
}

func parseLevel(opts Options) (zapcore.Level, error) {
	if opts.Level == "" {
		if opts.Env == "production" {
			return zap.InfoLevel, nil
		}
		return zap.DebugLevel, nil
	}
	return zapcore.ParseLevel(opts.Level)
}

func encoder(env string) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if env == "production" {
		return zapcore.NewJSONEncoder(cfg)
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// DefaultFile is the log file under the XDG state directory
func DefaultFile() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "synergy", "synergy.log")
}
