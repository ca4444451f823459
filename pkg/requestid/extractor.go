package requestid

import (
	"context"
	"log/slog"

	"github.com/ferdaws-ahmed/wisdomvault/pkg/logger"
)

// LoggerExtractor returns a logger.ContextExtractor for the request id.
func LoggerExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id := FromContext(ctx); id != "" {
			return logger.RequestID(id), true
		}
		return slog.Attr{}, false
	}
}
