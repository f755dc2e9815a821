// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// SessionIDKey is the context key for chat session ID
	SessionIDKey contextKey = "session_id"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSession stores the chat session ID in the context so downstream
// loggers pick it up via WithContext.
func WithSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, SessionIDKey, sessionID)
}

// WithContext returns a logger with context values extracted.
// Supports request_id and session_id from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{Logger: newLogger.With(slog.String("request_id", requestID))}
	}

	if sessionID, ok := ctx.Value(SessionIDKey).(string); ok && sessionID != "" {
		newLogger = newLogger.WithSessionID(sessionID)
	}

	return newLogger
}

// WithSessionID returns a logger bound to a chat session.
func (l *Logger) WithSessionID(sessionID string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("session_id", sessionID)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// ToolCall logs a single agent tool invocation.
func (l *Logger) ToolCall(sessionID, tool string, latencyMs float64, err error) {
	if err != nil {
		l.Warn("tool_call",
			slog.String("session_id", sessionID),
			slog.String("tool", tool),
			slog.Float64("latency_ms", latencyMs),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Info("tool_call",
		slog.String("session_id", sessionID),
		slog.String("tool", tool),
		slog.Float64("latency_ms", latencyMs),
	)
}

// AgentTurn logs one request/response cycle through the agent shell.
func (l *Logger) AgentTurn(sessionID string, inputLen, outputLen int, latencyMs float64) {
	l.Info("agent_turn",
		slog.String("session_id", sessionID),
		slog.Int("input_chars", inputLen),
		slog.Int("output_chars", outputLen),
		slog.Float64("latency_ms", latencyMs),
	)
}

// RemoteAPIError logs a failed call against the blanes API.
func (l *Logger) RemoteAPIError(operation string, status int, err error) {
	l.Error("blanes_api_error",
		slog.String("operation", operation),
		slog.Int("status", status),
		slog.String("error", err.Error()),
	)
}

// WhatsAppEvent logs inbound/outbound WhatsApp traffic.
func (l *Logger) WhatsAppEvent(direction, waID string, success bool, reason string) {
	if success {
		l.Info("whatsapp_event",
			slog.String("direction", direction),
			slog.String("wa_id", waID),
		)
		return
	}
	l.Warn("whatsapp_event",
		slog.String("direction", direction),
		slog.String("wa_id", waID),
		slog.String("reason", reason),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}
