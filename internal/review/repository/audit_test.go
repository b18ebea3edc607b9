package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/pkg/testutil"
)

func TestAuditRepositoryCreate(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	mockDB.ExpectQuery("INSERT INTO review_audits").
		WithArgs(
			testutil.AnyUUID{}, "job-1", "manuals/dryer.pdf", true, "native_text",
			5, 2, 78, "", []byte(`{"severity_high":1}`), int64(4200),
		).
		WillReturnRows(testutil.MockRows("created_at").AddRow(now))

	repo := NewAuditRepository(mockDB.DB)
	audit := &domain.ReviewAudit{
		JobID:         "job-1",
		FilePath:      "manuals/dryer.pdf",
		Success:       true,
		Strategy:      "native_text",
		AcceptedCount: 5,
		RejectedCount: 2,
		QualityScore:  78,
		Details:       map[string]interface{}{"severity_high": 1},
		DurationMs:    4200,
	}

	err := repo.Create(context.Background(), audit)

	require.NoError(t, err)
	assert.NotEmpty(t, audit.ID, "Create must assign an ID")
	assert.Equal(t, now, audit.CreatedAt)
	mockDB.ExpectationsWereMet(t)
}

func TestAuditRepositoryCreateKeepsProvidedID(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	mockDB.ExpectQuery("INSERT INTO review_audits").
		WillReturnRows(testutil.MockRows("created_at").AddRow(time.Now()))

	repo := NewAuditRepository(mockDB.DB)
	audit := &domain.ReviewAudit{ID: "fixed-id", JobID: "job-2", FilePath: "label.png"}

	require.NoError(t, repo.Create(context.Background(), audit))
	assert.Equal(t, "fixed-id", audit.ID)
	mockDB.ExpectationsWereMet(t)
}

func TestAuditRepositoryListByJob(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	defer mockDB.Close()

	now := time.Now()
	rows := testutil.MockRows(
		"id", "job_id", "file_path", "success", "strategy",
		"accepted_count", "rejected_count", "quality_score",
		"error", "details", "duration_ms", "created_at",
	).
		AddRow("a1", "job-1", "manuals/dryer.pdf", true, "native_text", 5, 2, 78, "", []byte(`{"severity_high":1}`), int64(4200), now).
		AddRow("a2", "job-1", "labels/warn.png", false, "image_ocr", 0, 0, 0, "ocr failed", []byte(`{}`), int64(900), now)

	mockDB.ExpectQuery("SELECT id, job_id, file_path").
		WithArgs("job-1").
		WillReturnRows(rows)

	repo := NewAuditRepository(mockDB.DB)
	audits, err := repo.ListByJob(context.Background(), "job-1")

	require.NoError(t, err)
	require.Len(t, audits, 2)
	assert.Equal(t, "manuals/dryer.pdf", audits[0].FilePath)
	assert.Equal(t, float64(1), audits[0].Details["severity_high"])
	assert.False(t, audits[1].Success)
	assert.Equal(t, "ocr failed", audits[1].Error)
	mockDB.ExpectationsWereMet(t)
}
