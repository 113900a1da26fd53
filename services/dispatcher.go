package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// MatchResultDispatcher feeds completed match ids to the rating pipeline
// on a background goroutine. Enqueue never blocks the caller and never
// reports processing failures back; they are logged and dropped, matching
// the fire-and-forget contract of score submission.
type MatchResultDispatcher struct {
	jobs      chan uuid.UUID
	processor MatchResultProcessor
	logger    *slog.Logger
}

func NewMatchResultDispatcher(processor MatchResultProcessor, logger *slog.Logger, buffer int) *MatchResultDispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &MatchResultDispatcher{
		jobs:      make(chan uuid.UUID, buffer),
		processor: processor,
		logger:    logger,
	}
}

// Run drains the queue until Stop is called. Start it like the websocket
// hub: `go dispatcher.Run()`.
func (d *MatchResultDispatcher) Run() {
	for matchID := range d.jobs {
		if err := d.processor.ProcessMatchResult(context.Background(), matchID); err != nil {
			d.logger.Error("match result processing failed",
				slog.String("match_id", matchID.String()),
				slog.Any("error", err))
		}
	}
}

func (d *MatchResultDispatcher) Stop() {
	close(d.jobs)
}

func (d *MatchResultDispatcher) Enqueue(matchID uuid.UUID) {
	select {
	case d.jobs <- matchID:
	default:
		// Queue full; hand off from a goroutine so the scoring request
		// still returns immediately.
		go func() { d.jobs <- matchID }()
	}
}
