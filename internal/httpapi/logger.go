package httpapi

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// logFormatter writes one slog record per request.
type logFormatter struct {
	log *slog.Logger
}

func (l *logFormatter) NewLogEntry(r *http.Request) middleware.LogEntry {
	attrs := []any{}
	if reqID := middleware.GetReqID(r.Context()); reqID != "" {
		attrs = append(attrs, slog.String("request", reqID))
	}
	attrs = append(attrs, slog.String("from", r.RemoteAddr))

	return &logEntry{
		log:   l.log,
		attrs: attrs,
		msg:   fmt.Sprintf("%s %s %s", r.Method, r.RequestURI, r.Proto),
	}
}

type logEntry struct {
	log   *slog.Logger
	attrs []any
	msg   string
}

func (l *logEntry) Write(status, bytes int, _ http.Header, elapsed time.Duration, _ interface{}) {
	attrs := append(l.attrs,
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.String("elapsed", elapsed.String()),
	)
	if status >= 500 {
		l.log.Error(l.msg, attrs...)
		return
	}
	l.log.Debug(l.msg, attrs...)
}

func (l *logEntry) Panic(v interface{}, stack []byte) {
	l.log.Error("handler panic", "panic", v, "stack", string(stack))
}
