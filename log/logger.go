// Package log provides structured logging with run context.
//
// Logger carries structured fields for the pipeline. Logger.Sugar() gives
// the printf-style variant the run command uses for post-run notes.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/justapithecus/sigsplit/types"
)

// Logger provides structured logging with run context.
// Entries carry run_id, organism and input when built from a RunMeta.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger provides printf-style logging for CLI surfaces.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// Option configures a Logger.
type Option func(*options)

type options struct {
	w     io.Writer
	level zapcore.Level
}

// WithWriter sends log output to w instead of os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.w = w }
}

// WithLevel sets the minimum level.
func WithLevel(level zapcore.Level) Option {
	return func(o *options) { o.level = level }
}

// NewLogger creates a logger with run context. Output defaults to os.Stderr
// at info level. runMeta may be nil for surfaces outside a run.
func NewLogger(runMeta *types.RunMeta, opts ...Option) *Logger {
	o := options{w: os.Stderr, level: zapcore.InfoLevel}
	for _, opt := range opts {
		opt(&o)
	}

	var fields []zap.Field
	if runMeta != nil {
		fields = []zap.Field{
			zap.String("run_id", runMeta.RunID),
			zap.String("organism", string(runMeta.Organism)),
			zap.String("input", runMeta.InputPath),
		}
	}
	return build(o.w, o.level, fields)
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// With returns a logger with extra context fields.
func (l *Logger) With(fields map[string]any) *Logger {
	extra := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		extra = append(extra, zap.Any(k, v))
	}
	return &Logger{zap: l.zap.With(extra...)}
}

func build(w io.Writer, level zapcore.Level, fields []zap.Field) *Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)
	return &Logger{zap: zap.New(core).With(fields...)}
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.zap.Debug(message, zap.Any("fields", fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields map[string]any) {
	l.zap.Info(message, zap.Any("fields", fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.zap.Warn(message, zap.Any("fields", fields))
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// Sugar returns a SugaredLogger for printf-style logging.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

// Infof logs an info message with printf-style formatting.
func (s *SugaredLogger) Infof(template string, args ...any) {
	s.sugar.Infof(template, args...)
}
