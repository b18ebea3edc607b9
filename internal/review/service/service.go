// Package service runs the batch review pipeline: extraction, the model
// review call, validation, persistence and events, one file at a time under
// a shared worker limit.
package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/internal/review/events"
	"github.com/docuflow/docuflow-backend/internal/review/extract"
	"github.com/docuflow/docuflow-backend/internal/review/reviewai"
	"github.com/docuflow/docuflow-backend/internal/review/storage"
	"github.com/docuflow/docuflow-backend/internal/review/validate"
	"github.com/docuflow/docuflow-backend/pkg/errors"
	"github.com/docuflow/docuflow-backend/pkg/logger"
)

// Extractor produces one ExtractionResult per file.
type Extractor interface {
	Extract(ctx context.Context, doc domain.SourceDocument) (*domain.ExtractionResult, error)
}

// Reviewer is the model review boundary, in text or vision mode.
type Reviewer interface {
	ReviewText(ctx context.Context, text string) (*reviewai.Result, error)
	ReviewImages(ctx context.Context, images [][]byte) (*reviewai.Result, error)
}

// AuditWriter persists per-file outcomes. May be nil when no database is
// configured.
type AuditWriter interface {
	Create(ctx context.Context, audit *domain.ReviewAudit) error
}

// Service coordinates batch review jobs
type Service struct {
	extractor   Extractor
	reviewer    Reviewer
	store       *storage.JobStore
	audits      AuditWriter
	publisher   *events.ReviewEventPublisher
	workers     int
	fileTimeout time.Duration
	log         *logger.Logger
}

// NewService creates a new review service
func NewService(
	extractor Extractor,
	reviewer Reviewer,
	store *storage.JobStore,
	audits AuditWriter,
	publisher *events.ReviewEventPublisher,
	workers int,
	fileTimeout time.Duration,
	log *logger.Logger,
) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		extractor:   extractor,
		reviewer:    reviewer,
		store:       store,
		audits:      audits,
		publisher:   publisher,
		workers:     workers,
		fileTimeout: fileTimeout,
		log:         log,
	}
}

// StartBatch registers a review job for the given files and processes them
// asynchronously. Returns the job immediately so the caller can poll.
func (s *Service) StartBatch(ctx context.Context, paths []string) (*domain.ReviewJob, error) {
	if len(paths) == 0 {
		return nil, errors.BadRequest("no files to review")
	}

	job := &domain.ReviewJob{
		JobID:      storage.GenerateJobID(),
		Status:     domain.StatusPending,
		TotalFiles: len(paths),
		CreatedAt:  time.Now(),
	}
	s.store.StoreJob(job)

	go s.processBatch(job.JobID, paths)

	return s.store.GetJob(job.JobID), nil
}

// GetJob retrieves a review job by ID
func (s *Service) GetJob(jobID string) *domain.ReviewJob {
	return s.store.GetJob(jobID)
}

// processBatch fans the files out over the worker limit and finalizes the
// job once every file has a result. Runs detached from the request context;
// a disconnecting client must not kill a running batch.
func (s *Service) processBatch(jobID string, paths []string) {
	bgCtx := context.Background()
	s.store.UpdateJob(jobID, func(j *domain.ReviewJob) {
		j.Status = domain.StatusProcessing
	})

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)

	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result := s.processFile(bgCtx, jobID, path)
			s.store.UpdateJob(jobID, func(j *domain.ReviewJob) {
				j.Results = append(j.Results, *result)
			})
		}(path)
	}
	wg.Wait()

	s.store.UpdateJob(jobID, func(j *domain.ReviewJob) {
		j.Status = domain.StatusCompleted
	})

	if job := s.store.GetJob(jobID); job != nil {
		s.publisher.PublishBatchCompleted(bgCtx, job)
		failed := 0
		for _, r := range job.Results {
			if !r.Success {
				failed++
			}
		}
		s.log.Info().
			Str("job_id", jobID).
			Int("total_files", job.TotalFiles).
			Int("failed_files", failed).
			Msg("review batch completed")
	}
}

// processFile runs one file through the full pipeline. Every failure is
// captured as a FileResult; nothing escapes to the batch level.
func (s *Service) processFile(ctx context.Context, jobID, path string) *domain.FileResult {
	start := time.Now()
	log := s.log.WithJobID(jobID).WithFile(path)

	fctx, cancel := context.WithTimeout(ctx, s.fileTimeout)
	defer cancel()

	ext := strings.ToLower(filepath.Ext(path))
	declared, ok := extract.DeclaredTypeForExtension(ext)
	if !ok {
		return s.failFile(ctx, jobID, path, start, errors.BadRequest("unsupported file type: "+ext))
	}

	extraction, err := s.extractor.Extract(fctx, domain.SourceDocument{
		Path:         path,
		DeclaredType: declared,
		Extension:    ext,
	})
	if err != nil {
		log.Error().Err(err).Msg("extraction failed")
		return s.failFile(ctx, jobID, path, start, err)
	}
	log.Info().Str("strategy", extraction.Strategy).Msg("extraction completed")

	review, pathKind, err := s.reviewExtraction(fctx, path, extraction)
	if err != nil {
		log.Error().Err(err).Msg("review call failed")
		return s.failFile(ctx, jobID, path, start, err)
	}

	issues, summary := validate.Validate(review.Issues, extraction.Text, pathKind)

	result := &domain.FileResult{
		Path:            path,
		Success:         true,
		Strategy:        extraction.Strategy,
		Issues:          issues,
		Summary:         &summary,
		Recommendations: review.Recommendations,
		QualityScore:    review.QualityScore,
		DurationMs:      time.Since(start).Milliseconds(),
	}

	// Audit write is best-effort and must not extend per-file latency.
	go s.writeAudit(context.Background(), jobID, result)
	s.publisher.PublishFileCompleted(ctx, jobID, result)

	log.Info().
		Int("accepted_issues", summary.TotalAccepted).
		Int("total_issues", len(issues)).
		Int64("duration_ms", result.DurationMs).
		Msg("file review completed")

	return result
}

// reviewExtraction picks the model invocation mode for an extraction result
// and returns the review plus the validation path that matches it.
func (s *Service) reviewExtraction(ctx context.Context, path string, extraction *domain.ExtractionResult) (*reviewai.Result, validate.PathKind, error) {
	if !extract.ShouldUseVisionFallback(extraction) {
		review, err := s.reviewer.ReviewText(ctx, extraction.Text)
		return review, validate.PathText, err
	}

	if extraction.Kind == domain.KindImageBasedPage {
		images := make([][]byte, len(extraction.Pages))
		for i, page := range extraction.Pages {
			images[i] = page.ImageBytes
		}
		review, err := s.reviewer.ReviewImages(ctx, images)
		return review, validate.PathVisionPages, err
	}

	// Single image with unusable OCR: send the original file bytes.
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.Extraction(path, err)
	}
	review, err := s.reviewer.ReviewImages(ctx, [][]byte{raw})
	return review, validate.PathVisionSingleImage, err
}

func (s *Service) failFile(ctx context.Context, jobID, path string, start time.Time, err error) *domain.FileResult {
	result := &domain.FileResult{
		Path:       path,
		Success:    false,
		Error:      err.Error(),
		DurationMs: time.Since(start).Milliseconds(),
	}

	go s.writeAudit(context.Background(), jobID, result)
	s.publisher.PublishFileFailed(ctx, jobID, result)

	return result
}

// writeAudit records the file outcome in the audit table
func (s *Service) writeAudit(ctx context.Context, jobID string, result *domain.FileResult) {
	if s.audits == nil {
		return
	}

	audit := &domain.ReviewAudit{
		JobID:        jobID,
		FilePath:     result.Path,
		Success:      result.Success,
		Strategy:     result.Strategy,
		QualityScore: result.QualityScore,
		Error:        result.Error,
		DurationMs:   result.DurationMs,
	}
	if result.Summary != nil {
		audit.AcceptedCount = result.Summary.TotalAccepted
		audit.RejectedCount = len(result.Issues) - result.Summary.TotalAccepted
		audit.Details = map[string]interface{}{
			"by_severity": result.Summary.BySeverity,
			"by_type":     result.Summary.ByType,
			"by_category": result.Summary.ByCategory,
		}
	}

	if err := s.audits.Create(ctx, audit); err != nil {
		s.log.Error().Err(err).Str("file", result.Path).Msg("failed to write review audit")
	}
}
