package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// Recovery returns middleware that recovers from panics in analyzers, logs
// the stack trace and keeps the analyzer's previous diagnostics.
func Recovery(logger ...*slog.Logger) Middleware {
	var log *slog.Logger
	if len(logger) > 0 && logger[0] != nil {
		log = logger[0]
	} else {
		log = slog.Default()
	}

	return func(next Handler) Handler {
		return func(name string, ac *treesitter.AnalysisContext) (diags []protocol.Diagnostic) {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic recovered in analyzer",
						"analyzer", name,
						"path", ac.Snapshot.Path(),
						"panic", fmt.Sprint(r),
						"stack", string(debug.Stack()),
					)
					diags = ac.Previous
				}
			}()
			return next(name, ac)
		}
	}
}
