// Package requestctx carries request-scoped correlation data used by logging
// and the audit trail.
package requestctx

import (
	"context"
	"strings"
)

type requestIDKey struct{}
type ipAddressKey struct{}
type userAgentKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, strings.TrimSpace(requestID))
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

func WithIPAddress(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, ipAddressKey{}, strings.TrimSpace(ip))
}

func IPAddressFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ipAddressKey{}).(string); ok {
		return v
	}
	return ""
}

func WithUserAgent(ctx context.Context, ua string) context.Context {
	return context.WithValue(ctx, userAgentKey{}, strings.TrimSpace(ua))
}

func UserAgentFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(userAgentKey{}).(string); ok {
		return v
	}
	return ""
}
