package events

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

const objectCreatedEvent = "s3:ObjectCreated:*"

// UploadEvent describes one KYC document landing in the bucket under
// customers_data/<application_id>/documents/<filename>.
type UploadEvent struct {
	ApplicationID string
	Filename      string
	ObjectKey     string
	EventName     string
}

type UploadEventSource interface {
	Run(ctx context.Context, handler func(context.Context, UploadEvent) error) error
}

type MinioUploadEventSource struct {
	client *minio.Client
	bucket string
	prefix string
	suffix string
}

func NewMinioUploadEventSource(client *minio.Client, bucket string, prefix string, suffix string) *MinioUploadEventSource {
	return &MinioUploadEventSource{
		client: client,
		bucket: bucket,
		prefix: prefix,
		suffix: suffix,
	}
}

func (s *MinioUploadEventSource) Run(ctx context.Context, handler func(context.Context, UploadEvent) error) error {
	notificationCh := s.client.ListenBucketNotification(ctx, s.bucket, s.prefix, s.suffix, []string{objectCreatedEvent})
	for {
		select {
		case <-ctx.Done():
			return nil
		case info, ok := <-notificationCh:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream closed")
			}
			if info.Err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("minio notification stream error: %w", info.Err)
			}
			for _, record := range info.Records {
				objectKey, err := decodeObjectKey(record.S3.Object.Key)
				if err != nil {
					continue
				}
				applicationID, filename, err := parseObjectKey(objectKey)
				if err != nil {
					continue
				}
				event := UploadEvent{
					ApplicationID: applicationID,
					Filename:      filename,
					ObjectKey:     objectKey,
					EventName:     record.EventName,
				}
				if err := handler(ctx, event); err != nil {
					return err
				}
			}
		}
	}
}

func decodeObjectKey(encoded string) (string, error) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return "", err
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", fmt.Errorf("object key is empty")
	}
	return decoded, nil
}

// parseObjectKey accepts customers_data/<application_id>/documents/<filename>
// and rejects anything else in the bucket, such as basic info JSON or model
// weights.
func parseObjectKey(objectKey string) (string, string, error) {
	cleaned := strings.Trim(strings.ReplaceAll(objectKey, "\\", "/"), "/")
	parts := strings.Split(cleaned, "/")
	if len(parts) != 4 || parts[0] != "customers_data" || parts[2] != "documents" {
		return "", "", fmt.Errorf("object key %q does not match customers_data/<application_id>/documents/<filename>", objectKey)
	}
	applicationID := strings.TrimSpace(parts[1])
	filename := strings.TrimSpace(parts[3])
	if applicationID == "" || filename == "" {
		return "", "", fmt.Errorf("object key %q missing application id or filename", objectKey)
	}
	return applicationID, filename, nil
}
