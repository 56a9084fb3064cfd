// Package middleware provides composable middleware for analyzers. Middleware
// wraps an analyzer's Run function, allowing cross-cutting concerns like
// logging, panic recovery and timing to be applied to every analyzer a
// workspace runs.
package middleware

import (
	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// Handler runs the analyzer registered under name.
type Handler func(name string, ac *treesitter.AnalysisContext) []protocol.Diagnostic

// Middleware wraps a Handler to add cross-cutting behavior.
type Middleware func(Handler) Handler

// Chain composes multiple middleware into a single middleware.
// Middleware is applied in the order given: the first middleware in the slice
// is the outermost wrapper (executes first).
func Chain(mws ...Middleware) Middleware {
	return func(next Handler) Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			next = mws[i](next)
		}
		return next
	}
}

// Wrap applies mw to the analyzer a registered under name and returns the
// wrapped analyzer.
func Wrap(name string, a treesitter.Analyzer, mw Middleware) treesitter.Analyzer {
	if mw == nil || a.Run == nil {
		return a
	}
	run := a.Run
	h := mw(func(_ string, ac *treesitter.AnalysisContext) []protocol.Diagnostic {
		return run(ac)
	})
	a.Run = func(ac *treesitter.AnalysisContext) []protocol.Diagnostic {
		return h(name, ac)
	}
	return a
}
