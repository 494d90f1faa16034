package logging

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"bqdigital/housekeeper/pkg/cms"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestContextKey is the context key for the caller's request metadata.
	RequestContextKey contextKey = "request_context"

	// TaskKey is the context key for the running task name.
	TaskKey contextKey = "task"

	// RunIDKey is the context key for the task run identifier.
	RunIDKey contextKey = "run_id"
)

// WithRequestContext attaches request metadata to the context.
func WithRequestContext(ctx context.Context, rc cms.RequestContext) context.Context {
	return context.WithValue(ctx, RequestContextKey, rc)
}

// GetRequestContext retrieves request metadata from the context.
func GetRequestContext(ctx context.Context) (cms.RequestContext, bool) {
	if ctx == nil {
		return cms.RequestContext{}, false
	}
	rc, ok := ctx.Value(RequestContextKey).(cms.RequestContext)
	return rc, ok
}

// RequestContextFromHTTP extracts request metadata from an HTTP request.
func RequestContextFromHTTP(r *http.Request) cms.RequestContext {
	if r == nil {
		return cms.RequestContext{}
	}
	return cms.RequestContext{
		URL:       r.URL.RequestURI(),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}
}

// clientIP prefers the first X-Forwarded-For hop over the socket address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// WithTask adds the running task name to the context.
func WithTask(ctx context.Context, task string) context.Context {
	return context.WithValue(ctx, TaskKey, task)
}

// GetTask retrieves the running task name from the context.
func GetTask(ctx context.Context) string {
	if task, ok := ctx.Value(TaskKey).(string); ok {
		return task
	}
	return ""
}

// WithRunID adds a task run identifier to the context.
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, RunIDKey, runID)
}

// GetRunID retrieves the task run identifier from the context.
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// Attrs returns the context's log fields as slog attributes.
func Attrs(ctx context.Context) []any {
	var attrs []any
	if task := GetTask(ctx); task != "" {
		attrs = append(attrs, slog.String("task", task))
	}
	if runID := GetRunID(ctx); runID != "" {
		attrs = append(attrs, slog.String("run_id", runID))
	}
	if rc, ok := GetRequestContext(ctx); ok && rc.IPAddress != "" {
		attrs = append(attrs, slog.String("client_ip", rc.IPAddress))
	}
	return attrs
}
