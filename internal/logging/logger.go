package logging

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logger. Init configures it once at startup.
var Logger = logrus.New()

var once sync.Once

type Options struct {
	Level       string
	Environment string
	// File enables size-based rotation to the given path in addition to stdout.
	File string
}

// Init configures the process logger. Only the first call has any effect.
func Init(opt Options) {
	once.Do(func() {
		lvl, err := logrus.ParseLevel(opt.Level)
		if err != nil {
			lvl = logrus.InfoLevel
		}
		Logger.SetLevel(lvl)

		if opt.Environment == "production" {
			Logger.SetFormatter(&logrus.JSONFormatter{})
		} else {
			Logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}

		if opt.File != "" {
			Logger.SetOutput(io.MultiWriter(os.Stdout, &lumberjack.Logger{
				Filename:   opt.File,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}))
		}

		if err != nil && opt.Level != "" {
			Logger.Warnf("invalid LOG_LEVEL %q, using info", opt.Level)
		}
	})
}

type requestIDKey struct{}

// WithRequestID stores the request ID so FromContext can tag log entries.
func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, rid)
}

// RequestID extracts the request ID stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey{}).(string); ok {
		return rid
	}
	return ""
}

// FromContext returns an entry tagged with the request ID carried by ctx.
func FromContext(ctx context.Context) *logrus.Entry {
	rid := RequestID(ctx)
	if rid == "" {
		rid = "unknown"
	}
	return Logger.WithField("request_id", rid)
}

// Op returns an entry tagged with the request ID and operation name.
func Op(ctx context.Context, operation string) *logrus.Entry {
	return FromContext(ctx).WithField("operation", operation)
}
