package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"home-loan-orchestrator/internal/config"
	"home-loan-orchestrator/internal/domain"
	"home-loan-orchestrator/internal/events"
	"home-loan-orchestrator/internal/storage"
	"home-loan-orchestrator/internal/telemetry"
)

// kindFromFilename maps an uploaded file to its KYC document kind by name
// prefix: pan_card.txt, aadhaar_scan.txt, company_id.txt, payslip_june.txt.
func kindFromFilename(filename string) (domain.DocKind, bool) {
	base := path.Base(filename)
	for _, kind := range domain.RequiredDocumentKinds() {
		prefix := string(kind)
		if len(base) >= len(prefix) && base[:len(prefix)] == prefix {
			return kind, true
		}
	}
	return "", false
}

type workflowTrigger struct {
	store   *storage.PostgresStore
	client  *http.Client
	baseURL string
}

// maybeStart kicks off processing through the api service once the last
// required document has been recorded.
func (t *workflowTrigger) maybeStart(ctx context.Context, applicationID string) (bool, error) {
	rec, err := t.store.GetApplication(ctx, applicationID)
	if err != nil {
		return false, err
	}
	if rec.Status == domain.ApplicationProcessing || rec.Status == domain.ApplicationCompleted {
		return false, nil
	}

	docs, err := t.store.ListDocuments(ctx, applicationID)
	if err != nil {
		return false, err
	}
	present := make(map[domain.DocKind]bool, len(docs))
	for _, doc := range docs {
		present[doc.Kind] = true
	}
	for _, kind := range domain.RequiredDocumentKinds() {
		if !present[kind] {
			return false, nil
		}
	}

	url := fmt.Sprintf("%s/v1/applications/%s/process", t.baseURL, applicationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return false, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return false, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return false, fmt.Errorf("api returned %s", resp.Status)
	}
	return true, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := telemetry.NewLogger()

	minioClient, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		log.Fatalf("connect minio: %v", err)
	}

	store, err := storage.NewPostgresStore(cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer store.Close()

	trigger := &workflowTrigger{
		store:   store,
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: cfg.APIBaseURL,
	}

	source := events.NewMinioUploadEventSource(minioClient, cfg.MinioBucket, "customers_data/", "")
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("event-handler listening for object-created events", "bucket", cfg.MinioBucket)
	err = source.Run(ctx, func(parent context.Context, event events.UploadEvent) error {
		kind, ok := kindFromFilename(event.Filename)
		if !ok {
			logger.Warn("ignoring object with unrecognised document kind",
				"object_key", event.ObjectKey)
			return nil
		}

		execCtx, cancel := context.WithTimeout(parent, 15*time.Second)
		defer cancel()

		if err := store.UpsertDocument(execCtx, domain.ApplicationDocumentRecord{
			ApplicationID: event.ApplicationID,
			Kind:          kind,
			Filename:      event.Filename,
			ObjectKey:     event.ObjectKey,
		}); err != nil {
			logger.Error("failed to record uploaded document",
				"application_id", event.ApplicationID, "object_key", event.ObjectKey, "error", err)
			return nil
		}
		if err := store.InsertAudit(execCtx, event.ApplicationID, domain.AuditDocumentUploaded, map[string]string{
			"kind":       string(kind),
			"filename":   event.Filename,
			"object_key": event.ObjectKey,
			"source":     "bucket_notification",
		}); err != nil {
			logger.Warn("failed to write audit entry",
				"application_id", event.ApplicationID, "error", err)
		}

		logger.Info("recorded uploaded document",
			"application_id", event.ApplicationID, "kind", kind, "object_key", event.ObjectKey)

		started, err := trigger.maybeStart(execCtx, event.ApplicationID)
		if err != nil {
			logger.Error("failed to start workflow",
				"application_id", event.ApplicationID, "error", err)
			return nil
		}
		if started {
			logger.Info("workflow started for completed document set",
				"application_id", event.ApplicationID)
		}
		return nil
	})
	if err != nil {
		log.Fatalf("event-handler stopped with error: %v", err)
	}
}
