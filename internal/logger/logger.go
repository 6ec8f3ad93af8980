// Package logger provides structured logging with file rotation support.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Output formats for the log file.
const (
	FormatJSON  = "json"
	FormatFixed = "fixed"
)

// asyncWriter decouples callers from a slow writer. A blocked console (for
// example Quick Edit mode in a Windows console) must never stall the status
// reporting path, so writes are queued and dropped when the queue is full.
type asyncWriter struct {
	ch     chan []byte
	w      io.Writer
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func newAsyncWriter(w io.Writer, bufSize int) *asyncWriter {
	aw := &asyncWriter{
		ch:   make(chan []byte, bufSize),
		w:    w,
		done: make(chan struct{}),
	}
	go aw.drain()
	return aw
}

func (aw *asyncWriter) Write(p []byte) (int, error) {
	aw.mu.RLock()
	defer aw.mu.RUnlock()
	if aw.closed {
		return len(p), nil
	}
	cp := make([]byte, len(p))
	copy(cp, p)
	select {
	case aw.ch <- cp:
	default:
	}
	return len(p), nil
}

func (aw *asyncWriter) drain() {
	defer close(aw.done)
	for p := range aw.ch {
		aw.w.Write(p)
	}
}

// Close flushes queued records and stops the drain goroutine.
func (aw *asyncWriter) Close() {
	aw.once.Do(func() {
		aw.mu.Lock()
		aw.closed = true
		aw.mu.Unlock()
		close(aw.ch)
		<-aw.done
	})
}

// Config holds the logger configuration.
type Config struct {
	Level      string `json:"Level"`
	FilePath   string `json:"FilePath"`
	MaxSizeMB  int    `json:"MaxSizeMB"`
	MaxBackups int    `json:"MaxBackups"`
	MaxAgeDays int    `json:"MaxAgeDays"`
	Compress   bool   `json:"Compress"`
	Console    bool   `json:"Console"`
	Format     string `json:"Format"` // FormatJSON or FormatFixed, file output only
}

// DefaultConfig returns sensible defaults for logging.
func DefaultConfig() Config {
	return Config{
		Level:      "info",
		FilePath:   "log/service.log",
		MaxSizeMB:  10,
		MaxBackups: 5,
		MaxAgeDays: 30,
		Compress:   true,
		Format:     FormatJSON,
	}
}

// globalLogger is swapped whole by Init and Close; readers never take mu.
var globalLogger atomic.Pointer[zerolog.Logger]

// mu guards the writers and serviceMode.
var (
	mu           sync.Mutex
	serviceMode  bool
	fileWriter   io.Closer
	consoleAsync *asyncWriter
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	store(zerolog.Nop())
}

func store(l zerolog.Logger) {
	globalLogger.Store(&l)
}

// SetServiceMode suppresses console output. A process started by the service
// manager has no console to write to.
func SetServiceMode(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	serviceMode = enabled
}

// Init (re)initializes the global logger. Writers from a previous call are
// closed first, so Init doubles as the hot-reload entry point.
func Init(cfg Config) error {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(level)
	closeWritersLocked()

	var writers []io.Writer

	if cfg.FilePath != "" {
		w, err := openFile(cfg)
		if err != nil {
			return err
		}
		writers = append(writers, w)
	}

	if cfg.Console && !serviceMode {
		aw := newAsyncWriter(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}, 1000)
		consoleAsync = aw
		writers = append(writers, aw)
	}

	var output io.Writer
	switch len(writers) {
	case 0:
		if serviceMode {
			output = io.Discard
		} else {
			output = os.Stdout
		}
	case 1:
		output = writers[0]
	default:
		output = zerolog.MultiLevelWriter(writers...)
	}

	store(zerolog.New(output).With().Timestamp().Caller().Logger())
	return nil
}

func openFile(cfg Config) (io.Writer, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0755); err != nil {
		return nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	fileWriter = lj

	if cfg.Format == FormatFixed {
		return NewFixedFormatWriter(lj), nil
	}
	return lj, nil
}

// Close flushes and closes the writers opened by Init.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	closeWritersLocked()
	store(zerolog.Nop())
}

func closeWritersLocked() {
	if consoleAsync != nil {
		consoleAsync.Close()
		consoleAsync = nil
	}
	if fileWriter != nil {
		fileWriter.Close()
		fileWriter = nil
	}
}

// Logger returns the global logger instance.
func Logger() *zerolog.Logger {
	return globalLogger.Load()
}

// Debug logs a debug message.
func Debug() *zerolog.Event {
	return globalLogger.Load().Debug()
}

// Info logs an info message.
func Info() *zerolog.Event {
	return globalLogger.Load().Info()
}

// Warn logs a warning message.
func Warn() *zerolog.Event {
	return globalLogger.Load().Warn()
}

// Error logs an error message.
func Error() *zerolog.Event {
	return globalLogger.Load().Error()
}

// WithComponent returns a logger with component field.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.Load().With().Str("component", component).Logger()
}
