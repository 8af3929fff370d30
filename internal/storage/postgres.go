package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"

	"home-loan-orchestrator/internal/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) CreateApplication(ctx context.Context, rec domain.ApplicationRecord) error {
	applicant, err := json.Marshal(rec.Applicant)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (id, status, applicant)
		VALUES ($1, $2, $3::jsonb)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.Status, string(applicant))
	return err
}

func (s *PostgresStore) GetApplication(ctx context.Context, applicationID string) (domain.ApplicationRecord, error) {
	var rec domain.ApplicationRecord
	var applicant []byte
	var runStatus sql.NullString
	var result []byte
	row := s.db.QueryRowContext(ctx, `
		SELECT id, status, applicant, run_status, result, created_at, updated_at
		FROM applications
		WHERE id = $1
	`, applicationID)
	if err := row.Scan(&rec.ID, &rec.Status, &applicant, &runStatus, &result, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return domain.ApplicationRecord{}, err
	}
	if err := json.Unmarshal(applicant, &rec.Applicant); err != nil {
		return domain.ApplicationRecord{}, fmt.Errorf("decode applicant payload: %w", err)
	}
	if runStatus.Valid {
		rec.RunStatus = domain.WorkflowStatus(runStatus.String)
	}
	rec.ResultJSON = result
	return rec, nil
}

func (s *PostgresStore) SetApplicationStatus(ctx context.Context, applicationID string, status domain.ApplicationStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`, applicationID, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *PostgresStore) SaveWorkflowResult(ctx context.Context, applicationID string, runStatus domain.WorkflowStatus, result []byte, status domain.ApplicationStatus) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET run_status = $2, result = $3::jsonb, status = $4, updated_at = NOW()
		WHERE id = $1
	`, applicationID, runStatus, string(result), status)
	return err
}

func (s *PostgresStore) UpsertDocument(ctx context.Context, rec domain.ApplicationDocumentRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO application_documents (application_id, kind, filename, object_key)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (application_id, kind) DO UPDATE SET
			filename = EXCLUDED.filename,
			object_key = EXCLUDED.object_key,
			uploaded_at = NOW()
	`, rec.ApplicationID, rec.Kind, rec.Filename, rec.ObjectKey)
	return err
}

func (s *PostgresStore) ListDocuments(ctx context.Context, applicationID string) ([]domain.ApplicationDocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT application_id, kind, filename, object_key, uploaded_at
		FROM application_documents
		WHERE application_id = $1
		ORDER BY uploaded_at ASC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := make([]domain.ApplicationDocumentRecord, 0)
	for rows.Next() {
		var rec domain.ApplicationDocumentRecord
		if err := rows.Scan(&rec.ApplicationID, &rec.Kind, &rec.Filename, &rec.ObjectKey, &rec.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *PostgresStore) InsertAudit(ctx context.Context, applicationID string, state domain.AuditState, detail any) error {
	var payload []byte
	switch v := detail.(type) {
	case nil:
		payload = []byte("{}")
	case []byte:
		payload = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		payload = b
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (application_id, state, detail)
		VALUES ($1, $2, $3::jsonb)
	`, applicationID, state, string(payload))
	return err
}

func (s *PostgresStore) ListAudit(ctx context.Context, applicationID string) ([]domain.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT application_id, state, detail, created_at
		FROM audit_log
		WHERE application_id = $1
		ORDER BY created_at ASC
	`, applicationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditEntry, 0)
	for rows.Next() {
		var entry domain.AuditEntry
		if err := rows.Scan(&entry.ApplicationID, &entry.State, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *PostgresStore) CountApplications(ctx context.Context) (int64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications`)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count applications: %w", err)
	}
	return count, nil
}
