package middleware

import (
	"log/slog"
	"time"

	"github.com/gossip-lsp/scripthost/protocol"
	"github.com/gossip-lsp/scripthost/treesitter"
)

// Logging returns middleware that logs each analyzer run's path, version,
// duration and result count.
func Logging(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(name string, ac *treesitter.AnalysisContext) []protocol.Diagnostic {
			start := time.Now()
			diags := next(name, ac)

			logger.LogAttrs(ac, slog.LevelDebug, "analyzer ran",
				slog.String("analyzer", name),
				slog.String("path", ac.Snapshot.Path()),
				slog.Int("version", ac.Snapshot.Version()),
				slog.Duration("duration", time.Since(start)),
				slog.Int("diagnostics", len(diags)),
			)
			return diags
		}
	}
}
