// Package logger wraps zap with the conventions used across the service.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options configures NewLogger. Zero values mean info level, JSON encoding and stdout.
type Options struct {
	Level      string
	Format     string
	OutputFile string
}

// ZapLevel parses Level, falling back to info for empty or unknown values.
func (o Options) ZapLevel() zapcore.Level {
	lvl, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(o.Level)))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func (o Options) outputPaths() (out, errOut []string) {
	switch o.OutputFile {
	case "", "stdout":
		return []string{"stdout"}, []string{"stderr"}
	case "stderr":
		return []string{"stderr"}, []string{"stderr"}
	}
	dir := filepath.Dir(o.OutputFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "logger: cannot create %s, using stdout: %v\n", dir, err)
		return []string{"stdout"}, []string{"stderr"}
	}
	return []string{o.OutputFile, "stdout"}, []string{o.OutputFile, "stderr"}
}

// Logger embeds *zap.Logger; Named and With keep the wrapper type.
type Logger struct {
	*zap.Logger
}

func NewLogger(opts Options) *Logger {
	level := opts.ZapLevel()

	zapConfig := zap.NewProductionConfig()
	if level == zapcore.DebugLevel {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.OutputPaths, zapConfig.ErrorOutputPaths = opts.outputPaths()

	switch strings.ToLower(opts.Format) {
	case "console", "text":
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		zapConfig.Encoding = "json"
	}

	zl, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v, falling back to zap production defaults\n", err)
		zl, _ = zap.NewProduction()
	}
	zl.Debug("Logger initialized",
		zap.Stringer("level", level),
		zap.String("encoding", zapConfig.Encoding),
		zap.Strings("output_paths", zapConfig.OutputPaths))
	return &Logger{Logger: zl}
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

func (l *Logger) Named(name string) *Logger {
	return &Logger{Logger: l.Logger.Named(name)}
}

func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}
