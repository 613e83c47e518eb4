// Package logging provides config-driven categorized logging for aoedash.
// Each category is a named child of one zap logger. Logging is controlled by
// debug_mode in the config file: when false, every category is a no-op.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and config loading
	CategoryFetch   Category = "fetch"   // Snapshot downloads
	CategoryCache   Category = "cache"   // Memoized datasets and the sqlite snapshot cache
	CategorySession Category = "session" // Filter registry, reconciliation
	CategoryRender  Category = "render"  // Render loop passes
	CategoryUI      Category = "ui"      // Terminal dashboard events
	CategoryChart   Category = "chart"   // Chart export
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	DebugMode  bool
	Level      string // debug, info, warn, error
	Format     string // json, text
	File       string // empty writes to stderr
	Categories map[string]bool
}

var (
	mu      sync.RWMutex
	base    = zap.NewNop()
	opts    Options
	loggers = make(map[Category]*zap.SugaredLogger)
	nop     = zap.NewNop().Sugar()
	logFile *os.File
)

// Initialize builds the root logger. It may be called again to reconfigure;
// loggers handed out before the call become no-ops once the old file closes.
func Initialize(o Options) error {
	mu.Lock()
	defer mu.Unlock()

	closeLocked()
	opts = o
	loggers = make(map[Category]*zap.SugaredLogger)

	if !o.DebugMode {
		base = zap.NewNop()
		return nil
	}

	sink := zapcore.Lock(os.Stderr)
	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		logFile = f
		sink = zapcore.AddSync(f)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if strings.EqualFold(o.Format, "json") {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	base = zap.New(zapcore.NewCore(enc, sink, ParseLevel(o.Level)))
	return nil
}

// ParseLevel maps a config level string to a zap level. Unknown strings
// fall back to info.
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

// IsDebugMode returns whether logging is enabled at all
func IsDebugMode() bool {
	mu.RLock()
	defer mu.RUnlock()
	return opts.DebugMode
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	return categoryEnabledLocked(category)
}

func categoryEnabledLocked(category Category) bool {
	if !opts.DebugMode {
		return false
	}
	if opts.Categories == nil {
		return true
	}
	enabled, exists := opts.Categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Get returns (or creates) the logger for a category. Disabled categories
// get a no-op logger.
func Get(category Category) *zap.SugaredLogger {
	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	l := nop
	if categoryEnabledLocked(category) {
		l = base.Named(string(category)).Sugar()
	}
	loggers[category] = l
	return l
}

// Sync flushes buffered entries. Call at shutdown.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	return base.Sync()
}

// Close flushes and closes the log file, leaving every category a no-op.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeLocked()
	opts = Options{}
	loggers = make(map[Category]*zap.SugaredLogger)
}

func closeLocked() {
	_ = base.Sync()
	base = zap.NewNop()
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// =============================================================================
// CONVENIENCE FUNCTIONS
// =============================================================================

// Boot logs to the boot category
func Boot(format string, args ...interface{}) {
	Get(CategoryBoot).Infof(format, args...)
}

// Fetch logs to the fetch category
func Fetch(format string, args ...interface{}) {
	Get(CategoryFetch).Infof(format, args...)
}

// FetchWarn logs a warning to the fetch category
func FetchWarn(format string, args ...interface{}) {
	Get(CategoryFetch).Warnf(format, args...)
}

// Cache logs debug to the cache category
func Cache(format string, args ...interface{}) {
	Get(CategoryCache).Debugf(format, args...)
}

// CacheWarn logs a warning to the cache category
func CacheWarn(format string, args ...interface{}) {
	Get(CategoryCache).Warnf(format, args...)
}

// Session logs debug to the session category
func Session(format string, args ...interface{}) {
	Get(CategorySession).Debugf(format, args...)
}

// Render logs debug to the render category
func Render(format string, args ...interface{}) {
	Get(CategoryRender).Debugf(format, args...)
}

// RenderError logs an error to the render category
func RenderError(format string, args ...interface{}) {
	Get(CategoryRender).Errorf(format, args...)
}

// UI logs debug to the ui category
func UI(format string, args ...interface{}) {
	Get(CategoryUI).Debugf(format, args...)
}

// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{
		category: category,
		op:       operation,
		start:    time.Now(),
	}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warnf("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debugf("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
