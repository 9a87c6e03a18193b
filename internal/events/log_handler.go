package events

import (
	"context"

	"github.com/rayanlekkat/brio-lead-scraper/internal/logger"
)

// LogHandler writes events to the structured log. It is the default sink.
type LogHandler struct {
	log logger.Interface
}

// NewLogHandler creates a handler that logs every event.
func NewLogHandler(log logger.Interface) *LogHandler {
	return &LogHandler{log: log.WithComponent("pipeline")}
}

// Handle logs the event.
func (h *LogHandler) Handle(ctx context.Context, event Event) error {
	h.log.Info(event.Message,
		"event_type", string(event.Type),
		"category", string(event.Category),
		"payload", event.Payload,
	)
	return nil
}

// Ensure LogHandler implements Handler.
var _ Handler = (*LogHandler)(nil)
