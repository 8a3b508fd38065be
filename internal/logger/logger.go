package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Options yapılandırılmış logger ayarları.
type Options struct {
	ServiceName string
	Level       zerolog.Level
	Format      string // "json" | "console"
	Output      io.Writer
}

type Logger struct {
	base *zerolog.Logger
}

type ctxKey struct{}

var (
	defaultOnce   sync.Once
	defaultLogger *Logger
)

func New(opts Options) *Logger {
	if opts.Level == zerolog.NoLevel {
		opts.Level = zerolog.InfoLevel
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}
	if opts.Format == "console" {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: "15:04:05"}
	}

	zerolog.TimeFieldFormat = time.RFC3339Nano

	l := zerolog.New(output).
		With().
		Timestamp().
		Str("service", opts.ServiceName).
		Logger().
		Level(opts.Level)

	return &Logger{base: &l}
}

// Nop hiçbir şey yazmayan logger (testler için).
func Nop() *Logger {
	l := zerolog.Nop()
	return &Logger{base: &l}
}

// Default stderr'e yazan paylaşılan logger.
func Default() *Logger {
	defaultOnce.Do(func() {
		defaultLogger = New(Options{ServiceName: "restoran-bilanco", Output: os.Stderr})
	})
	return defaultLogger
}

func ParseLevel(value string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(value)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// from context'teki alanları taşıyan logger'ı döner. Seviye her zaman
// alıcınınkidir; Nop bir logger istek context'iyle de sessiz kalır.
func (l *Logger) from(ctx context.Context) *zerolog.Logger {
	if ctx != nil {
		if entry, ok := ctx.Value(ctxKey{}).(*zerolog.Logger); ok {
			scoped := entry.Level(l.base.GetLevel())
			return &scoped
		}
	}
	return l.base
}

func (l *Logger) WithField(ctx context.Context, key string, value any) context.Context {
	return l.WithFields(ctx, map[string]any{key: value})
}

func (l *Logger) WithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	entry := l.from(ctx).With().Fields(fields).Logger()
	return context.WithValue(ctx, ctxKey{}, &entry)
}

func (l *Logger) WithRequestID(ctx context.Context, requestID string) context.Context {
	return l.WithField(ctx, "request_id", requestID)
}

func (l *Logger) WithBranchID(ctx context.Context, branchID uint) context.Context {
	return l.WithField(ctx, "branch_id", branchID)
}

func (l *Logger) Debug(ctx context.Context, msg string) {
	l.from(ctx).Debug().Msg(msg)
}

func (l *Logger) Info(ctx context.Context, msg string) {
	l.from(ctx).Info().Msg(msg)
}

// Warn ek alanlarla birlikte uyarı yazar.
func (l *Logger) Warn(ctx context.Context, msg string, fields map[string]any) {
	l.from(ctx).Warn().Fields(fields).Msg(msg)
}

func (l *Logger) Error(ctx context.Context, msg string, err error) {
	event := l.from(ctx).Error()
	if err != nil {
		event = event.Err(err)
	}
	event.Msg(msg)
}
