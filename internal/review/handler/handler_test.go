package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/internal/review/reviewai"
	"github.com/docuflow/docuflow-backend/internal/review/service"
	"github.com/docuflow/docuflow-backend/internal/review/storage"
	"github.com/docuflow/docuflow-backend/pkg/logger"
)

type stubExtractor struct{}

func (s *stubExtractor) Extract(ctx context.Context, doc domain.SourceDocument) (*domain.ExtractionResult, error) {
	return &domain.ExtractionResult{
		Kind:     domain.KindTextContent,
		Text:     "Read every instruction in this manual before operating the appliance.",
		Strategy: "native_text",
	}, nil
}

type stubReviewer struct{}

func (s *stubReviewer) ReviewText(ctx context.Context, text string) (*reviewai.Result, error) {
	return &reviewai.Result{QualityScore: 90}, nil
}

func (s *stubReviewer) ReviewImages(ctx context.Context, images [][]byte) (*reviewai.Result, error) {
	return &reviewai.Result{QualityScore: 90}, nil
}

func newTestRouter(t *testing.T) (*chi.Mux, *service.Service) {
	t.Helper()
	store := storage.NewJobStore(time.Minute)
	svc := service.NewService(&stubExtractor{}, &stubReviewer{}, store, nil, nil, 1, time.Minute, logger.Nop())
	h := NewHandler(svc, logger.Nop())
	h.reapInterval = 5 * time.Millisecond

	r := chi.NewRouter()
	r.Route("/api/v1", h.Routes)
	return r, svc
}

func multipartBody(t *testing.T, filenames ...string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, name := range filenames {
		part, err := writer.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("file content"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestStartBatchAcceptsUploads(t *testing.T) {
	router, svc := newTestRouter(t)

	body, contentType := multipartBody(t, "manual.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Success bool             `json:"success"`
		Data    domain.ReviewJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Data.JobID)
	assert.Equal(t, 1, resp.Data.TotalFiles)

	// The job must be pollable immediately after the response.
	assert.NotNil(t, svc.GetJob(resp.Data.JobID))
}

func TestUploadsRemovedOnceJobCompletes(t *testing.T) {
	router, svc := newTestRouter(t)

	body, contentType := multipartBody(t, "manual.pdf")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Data domain.ReviewJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	var job *domain.ReviewJob
	require.Eventually(t, func() bool {
		job = svc.GetJob(resp.Data.JobID)
		return job != nil && job.Status == domain.StatusCompleted
	}, 2*time.Second, 10*time.Millisecond)

	// The upload dir goes away with the finished job, not on a clock
	// started at submission.
	require.NotEmpty(t, job.Results)
	dir := filepath.Dir(job.Results[0].Path)
	require.Eventually(t, func() bool {
		_, err := os.Stat(dir)
		return os.IsNotExist(err)
	}, 2*time.Second, 10*time.Millisecond)
}

func TestStartBatchWithoutFiles(t *testing.T) {
	router, _ := newTestRouter(t)

	body, contentType := multipartBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStartBatchFromJSONPaths(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/batch",
		bytes.NewBufferString(`{"paths": ["manuals/dryer.pdf", "labels/warn.png"]}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)

	var resp struct {
		Data domain.ReviewJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalFiles)
}

func TestStartBatchFromJSONRejectsEmptyPaths(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/review/batch",
		bytes.NewBufferString(`{"paths": []}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetJobNotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/review/jobs/nope", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetJobReturnsJob(t *testing.T) {
	router, svc := newTestRouter(t)

	job, err := svc.StartBatch(context.Background(), []string{"manual.pdf"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/review/jobs/"+job.JobID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.ReviewJob `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, job.JobID, resp.Data.JobID)
}
