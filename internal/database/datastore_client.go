package database

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/locvowork/ltxbench/internal/domain"
)

const generationKind = "GenerationRecord"

// DatastoreClient wraps the cloud datastore client and stores generation audit records.
type DatastoreClient struct {
	client *datastore.Client
}

// NewDatastoreClient connects to Datastore for the given project.
func NewDatastoreClient(ctx context.Context, projectID string) (*DatastoreClient, error) {
	client, err := datastore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &DatastoreClient{client: client}, nil
}

// WrapDatastoreClient wraps existing datastore client
func WrapDatastoreClient(client *datastore.Client) *DatastoreClient {
	if client == nil {
		return nil
	}
	return &DatastoreClient{client: client}
}

// Close releases the underlying client.
func (dc *DatastoreClient) Close() error {
	if dc == nil || dc.client == nil {
		return nil
	}
	return dc.client.Close()
}

// Record saves one generation record under an auto-allocated key.
func (dc *DatastoreClient) Record(ctx context.Context, rec *domain.GenerationRecord) error {
	if dc == nil || dc.client == nil {
		return fmt.Errorf("datastore client is nil")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	_, err := dc.client.Put(ctx, datastore.IncompleteKey(generationKind, nil), rec)
	return err
}

// ListByProject returns the most recent generation records of a project.
func (dc *DatastoreClient) ListByProject(ctx context.Context, projectID int64, limit int) ([]domain.GenerationRecord, error) {
	if dc == nil || dc.client == nil {
		return nil, fmt.Errorf("datastore client is nil")
	}
	if limit <= 0 {
		limit = 20
	}

	var result []domain.GenerationRecord
	q := datastore.NewQuery(generationKind).
		FilterField("ProjectID", "=", projectID).
		Order("-CreatedAt").
		Limit(limit)

	if _, err := dc.client.GetAll(ctx, q, &result); err != nil {
		return nil, err
	}
	return result, nil
}
