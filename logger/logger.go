package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	mu       sync.Mutex
	root     *slog.Logger
	base     *zap.Logger
	file     *lumberjack.Logger
	level    = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	initDone bool
)

// Options configures the log file.
type Options struct {
	Path         string // Log file path (required)
	Debug        bool   // Enable debug level
	InvocationID string // Attached to every entry when non-empty
	MaxSizeMB    int    // Rotate after this size (default 5)
	MaxBackups   int    // Rotated files to keep (default 3)
	MaxAgeDays   int    // Days to keep rotated files (default 14)
}

// Init opens the log file and installs the root logger. Until Init is
// called every logger returned by this package discards its output.
// Calling Init again without Reset is a no-op.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if initDone {
		return nil
	}
	if opts.Path == "" {
		return fmt.Errorf("log path is required")
	}
	if opts.MaxSizeMB == 0 {
		opts.MaxSizeMB = 5
	}
	if opts.MaxBackups == 0 {
		opts.MaxBackups = 3
	}
	if opts.MaxAgeDays == 0 {
		opts.MaxAgeDays = 14
	}

	dir := filepath.Dir(opts.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	file = &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
	}

	if opts.Debug {
		level.SetLevel(zapcore.DebugLevel)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.LowercaseLevelEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), zapcore.AddSync(file), level)
	base = zap.New(core)

	root = slog.New(&zapHandler{zap: base})
	if opts.InvocationID != "" {
		root = root.With("invocation", opts.InvocationID)
	}
	initDone = true

	root.Debug("logger initialized", "path", opts.Path)
	return nil
}

// SetDebug enables or disables debug level logging
func SetDebug(enabled bool) {
	if enabled {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(zapcore.InfoLevel)
	}
}

// Get returns the root logger.
func Get() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()

	if root == nil {
		return slog.New(slog.DiscardHandler)
	}
	return root
}

// WithComponent returns a logger with the component name attached.
//
// Example:
//
//	log := logger.WithComponent("git")
//	log.Info("worktree added", "path", path)
//	// {"level":"info","msg":"worktree added","component":"git","path":"/..."}
func WithComponent(component string) *slog.Logger {
	return Get().With("component", component)
}

// Close flushes and closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if base != nil {
		_ = base.Sync()
	}
	if file != nil {
		_ = file.Close()
	}
	root = nil
	base = nil
	file = nil
}

// Reset clears all logger state so Init can run again. Intended for tests.
func Reset() {
	Close()

	mu.Lock()
	defer mu.Unlock()
	initDone = false
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
}

// zapHandler adapts a zap.Logger to slog.Handler.
type zapHandler struct {
	zap    *zap.Logger
	fields []zap.Field
}

func (h *zapHandler) Enabled(_ context.Context, l slog.Level) bool {
	return h.zap.Core().Enabled(toZapLevel(l))
}

func (h *zapHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]zap.Field, 0, len(h.fields)+r.NumAttrs())
	fields = append(fields, h.fields...)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, toZapField(a))
		return true
	})

	if ce := h.zap.Check(toZapLevel(r.Level), r.Message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

func (h *zapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	fields := make([]zap.Field, 0, len(h.fields)+len(attrs))
	fields = append(fields, h.fields...)
	for _, a := range attrs {
		fields = append(fields, toZapField(a))
	}
	return &zapHandler{zap: h.zap, fields: fields}
}

func (h *zapHandler) WithGroup(name string) slog.Handler {
	return &zapHandler{zap: h.zap.Named(name), fields: h.fields}
}

func toZapField(a slog.Attr) zap.Field {
	v := a.Value.Resolve()
	if err, ok := v.Any().(error); ok {
		return zap.NamedError(a.Key, err)
	}
	return zap.Any(a.Key, v.Any())
}

func toZapLevel(l slog.Level) zapcore.Level {
	switch {
	case l >= slog.LevelError:
		return zapcore.ErrorLevel
	case l >= slog.LevelWarn:
		return zapcore.WarnLevel
	case l >= slog.LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
