package logging

import (
	"io"
	"log/slog"
)

// SafeClose closes closer and logs a failure instead of returning it.
func SafeClose(closer io.Closer, logger *slog.Logger, operation string) {
	if closer == nil {
		return
	}

	if err := closer.Close(); err != nil {
		LogError(logger, "failed to close resource", err, slog.String("operation", operation))
	}
}
