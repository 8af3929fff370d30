package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"home-loan-orchestrator/internal/config"
	"home-loan-orchestrator/internal/domain"
	"home-loan-orchestrator/internal/storage"
	"home-loan-orchestrator/internal/workflow"
)

type Handler struct {
	cfg    config.Config
	store  applicationStore
	blob   uploadBlobStore
	runner *workflow.Runner
	logger *slog.Logger
}

type applicationStore interface {
	CreateApplication(ctx context.Context, rec domain.ApplicationRecord) error
	GetApplication(ctx context.Context, applicationID string) (domain.ApplicationRecord, error)
	SetApplicationStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) error
	SaveWorkflowResult(ctx context.Context, applicationID string, runStatus domain.WorkflowStatus, result []byte, status domain.ApplicationStatus) error
	UpsertDocument(ctx context.Context, rec domain.ApplicationDocumentRecord) error
	ListDocuments(ctx context.Context, applicationID string) ([]domain.ApplicationDocumentRecord, error)
	InsertAudit(ctx context.Context, applicationID string, state domain.AuditState, detail any) error
	ListAudit(ctx context.Context, applicationID string) ([]domain.AuditEntry, error)
	Ping(ctx context.Context) error
}

type uploadBlobStore interface {
	PutDocument(ctx context.Context, applicationID, filename string, content []byte) (string, error)
	PutJSON(ctx context.Context, objectKey string, v any) error
}

type applicationResponse struct {
	ApplicationID string                   `json:"application_id"`
	Status        domain.ApplicationStatus `json:"status"`
}

type progressResponse struct {
	ApplicationID string                   `json:"application_id"`
	Status        domain.ApplicationStatus `json:"status"`
	Stages        workflow.Progress        `json:"stages"`
}

type resultResponse struct {
	ApplicationID string                   `json:"application_id"`
	Status        domain.ApplicationStatus `json:"status"`
	RunStatus     domain.WorkflowStatus    `json:"run_status,omitempty"`
	Result        json.RawMessage          `json:"result,omitempty"`
}

func NewHandler(cfg config.Config, store applicationStore, blob uploadBlobStore, runner *workflow.Runner, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{cfg: cfg, store: store, blob: blob, runner: runner, logger: logger}
}

func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	var applicant domain.ApplicantData
	if err := json.NewDecoder(r.Body).Decode(&applicant); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json"})
		return
	}
	if applicant.FullName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "full_name is required"})
		return
	}
	if applicant.LoanAmount <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "loan_amount must be positive"})
		return
	}

	applicationID := h.newApplicationID()
	rec := domain.ApplicationRecord{
		ID:        applicationID,
		Status:    domain.ApplicationPendingDocuments,
		Applicant: applicant,
	}
	if err := h.store.CreateApplication(ctx, rec); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to create application"})
		return
	}

	if err := h.blob.PutJSON(ctx, storage.BasicInfoKey(applicationID), applicant); err != nil {
		h.logger.Warn("failed to archive basic info", "application_id", applicationID, "error", err)
	}
	if err := h.store.InsertAudit(ctx, applicationID, domain.AuditApplicationReceived, applicant); err != nil {
		h.logger.Warn("failed to write audit entry", "application_id", applicationID, "error", err)
	}

	writeJSON(w, http.StatusCreated, applicationResponse{
		ApplicationID: applicationID,
		Status:        domain.ApplicationPendingDocuments,
	})
}

func (h *Handler) UploadDocument(w http.ResponseWriter, r *http.Request, applicationID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	if _, err := h.store.GetApplication(ctx, applicationID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "application not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to fetch application"})
		return
	}

	if err := r.ParseMultipartForm(h.cfg.AllowedUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid multipart payload"})
		return
	}

	kind := domain.DocKind(r.FormValue("kind"))
	if !validDocKind(kind) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "kind must be one of pan, aadhaar, company_id, payslip"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "file form field is required"})
		return
	}
	defer file.Close()

	body, err := io.ReadAll(io.LimitReader(file, h.cfg.AllowedUploadBytes+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "failed to read file"})
		return
	}
	if int64(len(body)) > h.cfg.AllowedUploadBytes {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "file exceeds size limit"})
		return
	}

	objectKey, err := h.blob.PutDocument(ctx, applicationID, header.Filename, body)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to upload file"})
		return
	}
	if err := h.store.UpsertDocument(ctx, domain.ApplicationDocumentRecord{
		ApplicationID: applicationID,
		Kind:          kind,
		Filename:      header.Filename,
		ObjectKey:     objectKey,
	}); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to record upload"})
		return
	}
	if err := h.store.InsertAudit(ctx, applicationID, domain.AuditDocumentUploaded, map[string]string{
		"kind":       string(kind),
		"filename":   header.Filename,
		"object_key": objectKey,
	}); err != nil {
		h.logger.Warn("failed to write audit entry", "application_id", applicationID, "error", err)
	}

	missing, err := h.missingDocuments(ctx, applicationID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to check documents"})
		return
	}
	if len(missing) == 0 {
		if err := h.store.SetApplicationStatus(ctx, applicationID, domain.ApplicationReceived); err != nil {
			h.logger.Warn("failed to update status", "application_id", applicationID, "error", err)
		}
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"application_id": applicationID,
		"kind":           kind,
		"object_key":     objectKey,
		"missing":        missing,
	})
}

func (h *Handler) ProcessApplication(w http.ResponseWriter, r *http.Request, applicationID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	rec, err := h.store.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "application not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to fetch application"})
		return
	}
	if rec.Status == domain.ApplicationProcessing {
		writeJSON(w, http.StatusConflict, map[string]any{"error": "application is already being processed"})
		return
	}

	missing, err := h.missingDocuments(ctx, applicationID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to check documents"})
		return
	}
	if len(missing) > 0 {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":   "required documents are missing",
			"missing": missing,
		})
		return
	}

	docs, err := h.store.ListDocuments(ctx, applicationID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to list documents"})
		return
	}
	refs := make([]domain.DocumentRef, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, domain.DocumentRef{Kind: doc.Kind, Locator: doc.ObjectKey})
	}

	if err := h.store.SetApplicationStatus(ctx, applicationID, domain.ApplicationProcessing); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to update status"})
		return
	}
	if err := h.store.InsertAudit(ctx, applicationID, domain.AuditWorkflowStarted, nil); err != nil {
		h.logger.Warn("failed to write audit entry", "application_id", applicationID, "error", err)
	}

	go h.runAndPersist(applicationID, rec.Applicant, refs)

	writeJSON(w, http.StatusAccepted, applicationResponse{
		ApplicationID: applicationID,
		Status:        domain.ApplicationProcessing,
	})
}

// runAndPersist owns the background run. It detaches from the request
// context so a closed client connection cannot abort processing.
func (h *Handler) runAndPersist(applicationID string, applicant domain.ApplicantData, refs []domain.DocumentRef) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	result, runErr := h.runner.RunWorkflowFor(ctx, applicationID, applicant, refs)
	if runErr != nil {
		h.logger.Error("workflow run aborted", "application_id", applicationID, "error", runErr)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		h.logger.Error("failed to encode workflow result", "application_id", applicationID, "error", err)
		payload = []byte("{}")
	}

	appStatus := domain.ApplicationCompleted
	if result.Status == domain.WorkflowFailed || result.Status == domain.WorkflowError {
		appStatus = domain.ApplicationFailed
	}
	if err := h.store.SaveWorkflowResult(ctx, applicationID, result.Status, payload, appStatus); err != nil {
		h.logger.Error("failed to persist workflow result", "application_id", applicationID, "error", err)
	}
	if err := h.store.InsertAudit(ctx, applicationID, domain.AuditWorkflowCompleted, map[string]any{
		"run_status": result.Status,
		"errors":     result.Errors,
	}); err != nil {
		h.logger.Warn("failed to write audit entry", "application_id", applicationID, "error", err)
	}

	if entries, err := h.store.ListAudit(ctx, applicationID); err == nil {
		if err := h.blob.PutJSON(ctx, storage.AuditKey(applicationID), entries); err != nil {
			h.logger.Warn("failed to archive audit trail", "application_id", applicationID, "error", err)
		}
	}
}

func (h *Handler) GetProgress(w http.ResponseWriter, r *http.Request, applicationID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.store.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "application not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to fetch application"})
		return
	}

	writeJSON(w, http.StatusOK, progressResponse{
		ApplicationID: applicationID,
		Status:        rec.Status,
		Stages:        h.stageProgress(applicationID, rec),
	})
}

// stageProgress maps the in-flight run's tracker onto the requested
// application. Only the run that holds the scheduler reports live progress;
// completed runs report every stage done, queued or idle ones all pending.
func (h *Handler) stageProgress(applicationID string, rec domain.ApplicationRecord) workflow.Progress {
	if live, ok := h.runner.ProgressFor(applicationID); ok {
		return live
	}

	progress := make(workflow.Progress)
	done := len(rec.ResultJSON) > 0
	for stage := range h.runner.Progress() {
		progress[stage] = done
	}
	return progress
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request, applicationID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.store.GetApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]any{"error": "application not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to fetch result"})
		return
	}

	writeJSON(w, http.StatusOK, resultResponse{
		ApplicationID: applicationID,
		Status:        rec.Status,
		RunStatus:     rec.RunStatus,
		Result:        rec.ResultJSON,
	})
}

func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request, applicationID string) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	docs, err := h.store.ListDocuments(ctx, applicationID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "failed to list documents"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"application_id": applicationID, "documents": docs})
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) missingDocuments(ctx context.Context, applicationID string) ([]domain.DocKind, error) {
	docs, err := h.store.ListDocuments(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	present := make(map[domain.DocKind]bool, len(docs))
	for _, doc := range docs {
		present[doc.Kind] = true
	}
	missing := make([]domain.DocKind, 0)
	for _, kind := range domain.RequiredDocumentKinds() {
		if !present[kind] {
			missing = append(missing, kind)
		}
	}
	return missing, nil
}

func (h *Handler) newApplicationID() string {
	return fmt.Sprintf("%s%d", h.cfg.ApplicationPrefix, time.Now().UnixMilli())
}

func validDocKind(kind domain.DocKind) bool {
	for _, k := range domain.RequiredDocumentKinds() {
		if kind == k {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
