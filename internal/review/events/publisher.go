package events

import (
	"context"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/pkg/logger"
	"github.com/docuflow/docuflow-backend/pkg/messaging"
)

// ReviewEventPublisher publishes review lifecycle events. A nil publisher is
// valid and drops everything, so the service runs without a broker.
type ReviewEventPublisher struct {
	publisher *messaging.Publisher
	logger    *logger.Logger
}

// NewReviewEventPublisher creates a new review event publisher
func NewReviewEventPublisher(rmq *messaging.RabbitMQ, log *logger.Logger) (*ReviewEventPublisher, error) {
	publisher, err := messaging.NewPublisher(rmq, messaging.ExchangeReviewEvents, "review-service", log)
	if err != nil {
		return nil, err
	}

	return &ReviewEventPublisher{
		publisher: publisher,
		logger:    log,
	}, nil
}

// PublishFileCompleted publishes the outcome of one successfully reviewed file
func (p *ReviewEventPublisher) PublishFileCompleted(ctx context.Context, jobID string, result *domain.FileResult) {
	if p == nil {
		return
	}

	accepted := 0
	if result.Summary != nil {
		accepted = result.Summary.TotalAccepted
	}

	data := messaging.ReviewFileCompletedEvent{
		JobID:          jobID,
		FilePath:       result.Path,
		Strategy:       result.Strategy,
		AcceptedIssues: accepted,
		RejectedIssues: len(result.Issues) - accepted,
		QualityScore:   result.QualityScore,
		DurationMs:     result.DurationMs,
	}

	if err := p.publisher.Publish(ctx, messaging.EventReviewFileCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("file", result.Path).Msg("failed to publish file completed event")
	}
}

// PublishFileFailed publishes a per-file failure
func (p *ReviewEventPublisher) PublishFileFailed(ctx context.Context, jobID string, result *domain.FileResult) {
	if p == nil {
		return
	}

	data := messaging.ReviewFileFailedEvent{
		JobID:    jobID,
		FilePath: result.Path,
		Error:    result.Error,
	}

	if err := p.publisher.Publish(ctx, messaging.EventReviewFileFailed, data); err != nil {
		p.logger.Error().Err(err).Str("file", result.Path).Msg("failed to publish file failed event")
	}
}

// PublishBatchCompleted publishes the summary of a finished batch
func (p *ReviewEventPublisher) PublishBatchCompleted(ctx context.Context, job *domain.ReviewJob) {
	if p == nil {
		return
	}

	failed := 0
	var durationMs int64
	for _, r := range job.Results {
		if !r.Success {
			failed++
		}
		durationMs += r.DurationMs
	}

	data := messaging.ReviewBatchCompletedEvent{
		JobID:       job.JobID,
		TotalFiles:  job.TotalFiles,
		FailedFiles: failed,
		DurationMs:  durationMs,
	}

	if err := p.publisher.Publish(ctx, messaging.EventReviewBatchCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("job_id", job.JobID).Msg("failed to publish batch completed event")
	}
}
