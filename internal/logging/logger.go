// Package logging provides the structured field-map Logger used across the
// ranking engine's services and HTTP middleware.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
)

type requestIDKey struct{}

// WithRequestID attaches a request id to ctx so Logger calls downstream
// automatically tag their output with it.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext extracts the request id set by WithRequestID, if any.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(requestIDKey{}).(string)
	return v, ok && v != ""
}

// Fields is a structured field map attached to a log line.
type Fields map[string]interface{}

// Logger is the structured logging capability used throughout
// internal/domain/services and internal/httpapi.
type Logger interface {
	Debug(ctx context.Context, msg string, fields Fields)
	Info(ctx context.Context, msg string, fields Fields)
	Warn(ctx context.Context, msg string, fields Fields)
	Error(ctx context.Context, msg string, err error, fields Fields)
}

// StdLogger is the process-default Logger: structured JSON field output
// over the standard library's log package.
type StdLogger struct{}

// NewStdLogger constructs a StdLogger.
func NewStdLogger() *StdLogger {
	return &StdLogger{}
}

func (l *StdLogger) Debug(ctx context.Context, msg string, fields Fields) {
	l.print(ctx, "DEBUG", msg, fields, nil)
}

func (l *StdLogger) Info(ctx context.Context, msg string, fields Fields) {
	l.print(ctx, "INFO", msg, fields, nil)
}

func (l *StdLogger) Warn(ctx context.Context, msg string, fields Fields) {
	l.print(ctx, "WARN", msg, fields, nil)
}

func (l *StdLogger) Error(ctx context.Context, msg string, err error, fields Fields) {
	l.print(ctx, "ERROR", msg, fields, err)
}

func (l *StdLogger) print(ctx context.Context, level, msg string, fields Fields, err error) {
	fields = ensureRequestID(ctx, fields)
	encoded := encodeFields(fields)
	switch {
	case err != nil && encoded != "":
		log.Printf("[%s] %s error=%q fields=%s", level, msg, err.Error(), encoded)
	case err != nil:
		log.Printf("[%s] %s error=%q", level, msg, err.Error())
	case encoded != "":
		log.Printf("[%s] %s %s", level, msg, encoded)
	default:
		log.Printf("[%s] %s", level, msg)
	}
}

func ensureRequestID(ctx context.Context, fields Fields) Fields {
	rid, ok := RequestIDFromContext(ctx)
	if !ok {
		return fields
	}
	if fields == nil {
		fields = Fields{}
	}
	if _, exists := fields["request_id"]; !exists {
		fields["request_id"] = rid
	}
	return fields
}

func encodeFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf("%v", fields)
	}
	return string(b)
}
