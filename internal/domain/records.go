package domain

import (
	"encoding/json"
	"time"
)

// ApplicationRecord is the persisted view of one loan application.
type ApplicationRecord struct {
	ID         string            `json:"application_id"`
	Status     ApplicationStatus `json:"status"`
	Applicant  ApplicantData     `json:"applicant"`
	RunStatus  WorkflowStatus    `json:"run_status,omitempty"`
	ResultJSON []byte            `json:"-"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ApplicationDocumentRecord tracks one uploaded KYC document. One row per
// (application, kind); re-uploads replace the object key.
type ApplicationDocumentRecord struct {
	ApplicationID string    `json:"application_id"`
	Kind          DocKind   `json:"kind"`
	Filename      string    `json:"filename"`
	ObjectKey     string    `json:"object_key"`
	UploadedAt    time.Time `json:"uploaded_at"`
}

// RequiredDocumentKinds lists every KYC document an application needs
// before processing can start.
func RequiredDocumentKinds() []DocKind {
	return []DocKind{DocKindPAN, DocKindAadhaar, DocKindCompanyID, DocKindPayslip}
}

type AuditEntry struct {
	ApplicationID string          `json:"application_id"`
	State         AuditState      `json:"state"`
	Detail        json.RawMessage `json:"detail,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
