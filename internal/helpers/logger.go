package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger creates a properly configured logger for engine implementations.
// If the provided handler is nil, it creates a default handler with appropriate
// grouping.
//
// Parameters:
//   - handler: The slog.Handler to use, or nil for defaults
//   - machineName: The name of the machine (e.g., "goja", "quickjs")
//   - groupName: Optional additional group name within the machine
//
// Returns:
//   - The configured handler
//   - A logger created from the handler
func SetupLogger(handler slog.Handler, machineName string, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		defaultHandler := slog.NewTextHandler(os.Stdout, nil)
		handler = defaultHandler.WithGroup(machineName)
		// Create a logger from the handler
		defaultLogger := slog.New(handler)
		defaultLogger.Warn("Handler is nil, using the default logger configuration.")
	}

	var logger *slog.Logger
	if groupName != "" {
		logger = slog.New(handler.WithGroup(groupName))
	} else {
		logger = slog.New(handler)
	}

	return handler, logger
}
