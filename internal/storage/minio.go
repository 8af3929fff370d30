package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"home-loan-orchestrator/internal/agents"
)

// Object key layout inside the bucket:
//
//	customers_data/<application_id>/<application_id>_basic_info.json
//	customers_data/<application_id>/documents/<filename>
//	audit_logs/<application_id>.json
//	ml_models/property_valuation_weights.json
const (
	customerPrefix  = "customers_data"
	auditPrefix     = "audit_logs"
	modelWeightsKey = "ml_models/property_valuation_weights.json"
)

type MinioStore struct {
	client *minio.Client
	bucket string
}

func NewMinioStore(endpoint, accessKey, secretKey string, useSSL bool, bucket string) (*MinioStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStore{client: client, bucket: bucket}, nil
}

func BasicInfoKey(applicationID string) string {
	return path.Join(customerPrefix, applicationID, applicationID+"_basic_info.json")
}

func DocumentKey(applicationID, filename string) string {
	return path.Join(customerPrefix, applicationID, "documents", filename)
}

func AuditKey(applicationID string) string {
	return path.Join(auditPrefix, applicationID+".json")
}

func (m *MinioStore) PutJSON(ctx context.Context, objectKey string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = m.client.PutObject(ctx, m.bucket, objectKey, bytes.NewReader(payload), int64(len(payload)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (m *MinioStore) PutDocument(ctx context.Context, applicationID, filename string, content []byte) (string, error) {
	objectKey := DocumentKey(applicationID, filename)
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, bytes.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (m *MinioStore) GetObject(ctx context.Context, objectKey string) ([]byte, error) {
	obj, err := m.client.GetObject(ctx, m.bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data := new(bytes.Buffer)
	if _, err := data.ReadFrom(obj); err != nil {
		return nil, fmt.Errorf("read object %s: %w", objectKey, err)
	}
	return data.Bytes(), nil
}

// ExtractText satisfies the document agent's extractor contract. Documents
// are stored as plain text exports of the scanned originals.
func (m *MinioStore) ExtractText(ctx context.Context, locator string) (string, error) {
	data, err := m.GetObject(ctx, locator)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// LoadValuationModel fetches trained weights from the bucket. A missing
// weights object is not an error; callers fall back to rule-based pricing.
func (m *MinioStore) LoadValuationModel(ctx context.Context) (*agents.LinearModel, error) {
	data, err := m.GetObject(ctx, modelWeightsKey)
	if err != nil {
		var resp minio.ErrorResponse
		if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, err
	}

	var weights agents.ModelWeights
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("decode model weights: %w", err)
	}
	return &agents.LinearModel{Weights: weights}, nil
}
