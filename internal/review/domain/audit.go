package domain

import "time"

// ReviewAudit is the persisted record of one reviewed file. The in-memory
// job expires with its TTL; this row is what survives for reporting.
type ReviewAudit struct {
	ID            string                 `db:"id" json:"id"`
	JobID         string                 `db:"job_id" json:"job_id"`
	FilePath      string                 `db:"file_path" json:"file_path"`
	Success       bool                   `db:"success" json:"success"`
	Strategy      string                 `db:"strategy" json:"strategy"`
	AcceptedCount int                    `db:"accepted_count" json:"accepted_count"`
	RejectedCount int                    `db:"rejected_count" json:"rejected_count"`
	QualityScore  int                    `db:"quality_score" json:"quality_score"`
	Error         string                 `db:"error" json:"error,omitempty"`
	Details       map[string]interface{} `db:"-" json:"details,omitempty"`
	DurationMs    int64                  `db:"duration_ms" json:"duration_ms"`
	CreatedAt     time.Time              `db:"created_at" json:"created_at"`
}
