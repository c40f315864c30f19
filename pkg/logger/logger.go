// Package logger provides a structured, levelled logger built on log/slog.
//
// WithCtx returns the per-request logger installed by middleware.Logger, so
// every line written while serving a request carries its request_id:
//
//	log := logger.WithCtx(r.Context())
//	log.Info("order created", "order_number", o.OrderNumber)
//	// → time=... level=INFO msg="order created" request_id=a1b2c3d4 order_number=ORD-1a2b3c4d
package logger

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/shashiranjanraj/bazaar/config"
)

var L *slog.Logger

var (
	sinkMu sync.Mutex
	sink   *MongoHandler
)

func init() {
	L = slog.New(baseHandler())
	slog.SetDefault(L)
}

func baseHandler() slog.Handler {
	if config.IsProduction() {
		return slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

// AttachMongo fans every record out to a MongoDB collection in addition to
// stdout. Call Close on shutdown to flush the sink.
func AttachMongo(uri, database, collection string) error {
	h, err := NewMongoHandler(uri, database, collection)
	if err != nil {
		return err
	}

	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink != nil {
		sink.Close()
	}
	sink = h

	L = slog.New(NewMultiHandler(baseHandler(), h))
	slog.SetDefault(L)
	return nil
}

// Close flushes and detaches the MongoDB sink, if any.
func Close() {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if sink == nil {
		return
	}
	sink.Close()
	sink = nil

	L = slog.New(baseHandler())
	slog.SetDefault(L)
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by the Logger middleware, or the
// base logger when there is none.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores log in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}

func Debug(msg string, args ...any) { L.Debug(msg, args...) }
func Info(msg string, args ...any)  { L.Info(msg, args...) }
func Warn(msg string, args ...any)  { L.Warn(msg, args...) }
func Error(msg string, args ...any) { L.Error(msg, args...) }
