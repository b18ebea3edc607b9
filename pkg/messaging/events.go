package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	EventReviewFileCompleted  = "review.file.completed"
	EventReviewFileFailed     = "review.file.failed"
	EventReviewBatchCompleted = "review.batch.completed"
)

// Exchange names
const (
	ExchangeReviewEvents = "review.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// ReviewFileCompletedEvent is emitted after one file finishes the full
// extract → review → validate pipeline.
type ReviewFileCompletedEvent struct {
	JobID          string `json:"job_id"`
	FilePath       string `json:"file_path"`
	Strategy       string `json:"strategy"`
	AcceptedIssues int    `json:"accepted_issues"`
	RejectedIssues int    `json:"rejected_issues"`
	QualityScore   int    `json:"quality_score"`
	DurationMs     int64  `json:"duration_ms"`
}

// ReviewFileFailedEvent is emitted when a file-level error was recorded.
type ReviewFileFailedEvent struct {
	JobID    string `json:"job_id"`
	FilePath string `json:"file_path"`
	Error    string `json:"error"`
}

// ReviewBatchCompletedEvent is emitted once all files in a batch are done.
type ReviewBatchCompletedEvent struct {
	JobID       string `json:"job_id"`
	TotalFiles  int    `json:"total_files"`
	FailedFiles int    `json:"failed_files"`
	DurationMs  int64  `json:"duration_ms"`
}
