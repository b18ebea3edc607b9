package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/pkg/database"
)

// AuditRepository persists per-file review outcomes
type AuditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts one review audit row
func (r *AuditRepository) Create(ctx context.Context, audit *domain.ReviewAudit) error {
	if audit.ID == "" {
		audit.ID = uuid.New().String()
	}

	detailsJSON, err := json.Marshal(audit.Details)
	if err != nil {
		detailsJSON = []byte("{}")
	}

	query := `
		INSERT INTO review_audits (id, job_id, file_path, success, strategy,
		                           accepted_count, rejected_count, quality_score,
		                           error, details, duration_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at
	`

	return r.db.QueryRowxContext(ctx, query,
		audit.ID,
		audit.JobID,
		audit.FilePath,
		audit.Success,
		audit.Strategy,
		audit.AcceptedCount,
		audit.RejectedCount,
		audit.QualityScore,
		audit.Error,
		detailsJSON,
		audit.DurationMs,
	).Scan(&audit.CreatedAt)
}

// ListByJob returns the audit rows for one job, oldest first
func (r *AuditRepository) ListByJob(ctx context.Context, jobID string) ([]*domain.ReviewAudit, error) {
	query := `
		SELECT id, job_id, file_path, success, strategy,
		       accepted_count, rejected_count, quality_score,
		       error, details, duration_ms, created_at
		FROM review_audits
		WHERE job_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryxContext(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var audits []*domain.ReviewAudit
	for rows.Next() {
		var audit domain.ReviewAudit
		var detailsJSON []byte

		if err := rows.Scan(
			&audit.ID, &audit.JobID, &audit.FilePath, &audit.Success, &audit.Strategy,
			&audit.AcceptedCount, &audit.RejectedCount, &audit.QualityScore,
			&audit.Error, &detailsJSON, &audit.DurationMs, &audit.CreatedAt,
		); err != nil {
			return nil, err
		}

		if len(detailsJSON) > 0 {
			json.Unmarshal(detailsJSON, &audit.Details)
		}

		audits = append(audits, &audit)
	}

	return audits, rows.Err()
}
