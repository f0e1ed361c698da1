package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// LoggingMiddleware returns middleware that logs all incoming method calls,
// naming the tool or resource a call addresses. Each call gets a request_id
// so the client and session log lines of one call can be grouped.
func LoggingMiddleware() sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			start := time.Now()
			requestID := uuid.NewString()
			ctx = withRequestID(ctx, requestID)

			result, err := next(ctx, method, req)

			duration := time.Since(start)
			attrs := []slog.Attr{
				slog.String("method", method),
				slog.String("request_id", requestID),
				slog.Int64("duration_ms", duration.Milliseconds()),
			}
			attrs = append(attrs, targetAttrs(req)...)

			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
				slog.LogAttrs(ctx, slog.LevelError, "method call failed", attrs...)
				return result, err
			}

			// Tool failures travel in the result, not as a protocol error.
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res != nil && res.IsError {
				slog.LogAttrs(ctx, slog.LevelWarn, "tool call returned error", attrs...)
				return result, err
			}

			slog.LogAttrs(ctx, slog.LevelInfo, "method call completed", attrs...)
			return result, err
		}
	}
}

func targetAttrs(req sdkmcp.Request) []slog.Attr {
	switch r := req.(type) {
	case *sdkmcp.CallToolRequest:
		if r.Params != nil {
			return []slog.Attr{slog.String("tool", r.Params.Name)}
		}
	case *sdkmcp.ReadResourceRequest:
		if r.Params != nil {
			return []slog.Attr{slog.String("uri", r.Params.URI)}
		}
	case *sdkmcp.GetPromptRequest:
		if r.Params != nil {
			return []slog.Attr{slog.String("prompt", r.Params.Name)}
		}
	}
	return nil
}

type requestIDKey struct{}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id LoggingMiddleware assigned to the call in ctx.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
