// Package logging builds the arbor logger shared by the server and CLI.
package logging

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// New returns a console logger at the given level ("debug", "info", ...)
func New(level string) arbor.ILogger {
	logger := arbor.NewLogger().WithConsoleWriter(models.WriterConfiguration{
		Type:             models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})

	if level != "" {
		logger = logger.WithLevelFromString(level)
	}
	return logger
}
