package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// SubjectSubmissionGraded is the subject submission lifecycle events are
// published on.
const SubjectSubmissionGraded = "praxis.submissions.graded"

// SubmissionGraded is the payload emitted after a grading cycle finishes,
// whatever the verdict.
type SubmissionGraded struct {
	SubmissionID uint      `json:"submission_id"`
	UserID       uint      `json:"user_id"`
	ProblemID    *uint     `json:"problem_id,omitempty"`
	TestID       *uint     `json:"test_id,omitempty"`
	Status       string    `json:"status"`
	Score        int       `json:"score"`
	MaxScore     int       `json:"max_score"`
	GradedAt     time.Time `json:"graded_at"`
}

// Publisher emits submission lifecycle events. Publishing is best-effort;
// a broker outage never fails a grading cycle.
type Publisher interface {
	PublishSubmissionGraded(ctx context.Context, event SubmissionGraded) error
}

// NATSPublisher implements Publisher on a NATS connection.
type NATSPublisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// Connect dials the NATS server and returns a publisher bound to it.
func Connect(url string, logger zerolog.Logger) (*NATSPublisher, error) {
	if url == "" {
		return nil, fmt.Errorf("nats url must not be empty")
	}

	conn, err := nats.Connect(url,
		nats.Name("praxis-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}

	return &NATSPublisher{
		conn:   conn,
		logger: logger.With().Str("component", "events_publisher").Logger(),
	}, nil
}

// PublishSubmissionGraded emits a graded event for one submission.
func (p *NATSPublisher) PublishSubmissionGraded(_ context.Context, event SubmissionGraded) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := p.conn.Publish(SubjectSubmissionGraded, payload); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

// Close drains and closes the underlying connection.
func (p *NATSPublisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to drain nats connection")
	}
}
