// Package auditcontext carries request metadata for audit trails.
package auditcontext

import (
	"context"
	"strings"
)

type requestMetaKey struct{}

type requestMeta struct {
	RequestID string
	IPAddress string
	UserAgent string
}

// WithRequestMeta attaches request identifiers used when writing audit entries.
func WithRequestMeta(ctx context.Context, requestID, ipAddress, userAgent string) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, requestMeta{
		RequestID: strings.TrimSpace(requestID),
		IPAddress: strings.TrimSpace(ipAddress),
		UserAgent: strings.TrimSpace(userAgent),
	})
}

func metaFromContext(ctx context.Context) (requestMeta, bool) {
	if ctx == nil {
		return requestMeta{}, false
	}
	meta, ok := ctx.Value(requestMetaKey{}).(requestMeta)
	return meta, ok
}

func RequestIDFromContext(ctx context.Context) string {
	meta, _ := metaFromContext(ctx)
	return meta.RequestID
}

func IPAddressFromContext(ctx context.Context) string {
	meta, _ := metaFromContext(ctx)
	return meta.IPAddress
}

func UserAgentFromContext(ctx context.Context) string {
	meta, _ := metaFromContext(ctx)
	return meta.UserAgent
}
