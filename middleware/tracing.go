package middleware

import (
	"context"

	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// Tracing returns middleware that records the running analyzer's name in the
// analysis context.
func Tracing() Middleware {
	return func(next Handler) Handler {
		return func(name string, ac *treesitter.AnalysisContext) []protocol.Diagnostic {
			traced := *ac
			traced.Context = context.WithValue(ac.Context, traceAnalyzerKey{}, name)
			return next(name, &traced)
		}
	}
}

type traceAnalyzerKey struct{}

// TraceAnalyzer returns the analyzer name from the context, if set by Tracing
// middleware.
func TraceAnalyzer(ctx context.Context) string {
	if v, ok := ctx.Value(traceAnalyzerKey{}).(string); ok {
		return v
	}
	return ""
}
