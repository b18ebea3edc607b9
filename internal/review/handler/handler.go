package handler

import (
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/docuflow/docuflow-backend/internal/review/domain"
	"github.com/docuflow/docuflow-backend/internal/review/service"
	"github.com/docuflow/docuflow-backend/pkg/errors"
	"github.com/docuflow/docuflow-backend/pkg/httputil"
	"github.com/docuflow/docuflow-backend/pkg/logger"
)

const maxUploadSize = 100 << 20 // 100MB across the whole batch

const defaultReapInterval = 2 * time.Second

// Handler handles HTTP requests for batch document review
type Handler struct {
	service      *service.Service
	reapInterval time.Duration
	log          *logger.Logger
}

// NewHandler creates a new review handler. Uploaded files are removed as
// soon as their job finishes or expires.
func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	return &Handler{
		service:      svc,
		reapInterval: defaultReapInterval,
		log:          log,
	}
}

// Routes mounts the review endpoints
func (h *Handler) Routes(r chi.Router) {
	r.Post("/review/batch", h.StartBatch)
	r.Get("/review/jobs/{jobId}", h.GetJob)
}

// batchRequest is the JSON alternative to a multipart upload, for files
// already reachable on the service host.
type batchRequest struct {
	Paths []string `json:"paths" validate:"required,min=1,dive,required"`
}

// StartBatch handles POST /api/v1/review/batch
// Accepts a multipart form with one or more "files" entries, or a JSON body
// with server-local paths. Responds with the created job; results are polled
// via GetJob.
func (h *Handler) StartBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		h.startBatchFromPaths(w, r)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		httputil.Error(w, errors.BadRequest("batch too large or invalid multipart form"))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		httputil.Error(w, errors.BadRequest("no files in request"))
		return
	}

	dir, err := os.MkdirTemp("", "review-batch-*")
	if err != nil {
		h.log.Error().Err(err).Msg("cannot create batch upload dir")
		httputil.Error(w, errors.Internal("cannot store uploaded files"))
		return
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := h.saveUpload(dir, fh)
		if err != nil {
			os.RemoveAll(dir)
			h.log.Error().Err(err).Str("file", fh.Filename).Msg("cannot save uploaded file")
			httputil.Error(w, errors.Internal("cannot store uploaded files"))
			return
		}
		paths = append(paths, path)
	}

	job, err := h.service.StartBatch(r.Context(), paths)
	if err != nil {
		os.RemoveAll(dir)
		httputil.Error(w, err)
		return
	}

	go h.reapUploads(job.JobID, dir)

	httputil.JSON(w, http.StatusAccepted, job)
}

// reapUploads deletes the batch upload dir once its job has finished or has
// expired from the store. Workers read the uploaded files for as long as the
// batch runs, however long that takes.
func (h *Handler) reapUploads(jobID, dir string) {
	for {
		job := h.service.GetJob(jobID)
		if job == nil || job.Status == domain.StatusCompleted || job.Status == domain.StatusFailed {
			break
		}
		time.Sleep(h.reapInterval)
	}
	os.RemoveAll(dir)
}

// startBatchFromPaths starts a batch over files the service can read
// directly, without an upload.
func (h *Handler) startBatchFromPaths(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	job, err := h.service.StartBatch(r.Context(), req.Paths)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/review/jobs/{jobId}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		httputil.Error(w, errors.BadRequest("missing jobId parameter"))
		return
	}

	job := h.service.GetJob(jobID)
	if job == nil {
		httputil.Error(w, errors.NotFound("review job"))
		return
	}

	httputil.JSON(w, http.StatusOK, job)
}

// saveUpload writes one multipart file under dir, keeping only the base name
// so path components in the client-supplied filename cannot escape it.
func (h *Handler) saveUpload(dir string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, filepath.Base(fh.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}
