package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/biblioteca/loan-system/internal/core/domain"
)

// LogSink writes loan events to the application log. It is used when no
// broker is configured.
type LogSink struct {
	log zerolog.Logger
}

func NewLogSink(log zerolog.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Deliver(_ context.Context, e domain.LoanEvent) error {
	s.log.Info().
		Str("event_id", e.ID).
		Str("type", string(e.Type)).
		Str("loan_id", e.LoanID).
		Str("book_id", e.BookID).
		Str("user_id", e.UserID).
		Time("due_date", e.DueDate).
		Msg("loan event")
	return nil
}
