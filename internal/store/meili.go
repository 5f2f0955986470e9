package store

import (
	"context"
	"fmt"
	"time"

	"github.com/meilisearch/meilisearch-go"
)

// MeiliStore implements EventStore using Meilisearch as the backend.
// It is safe for concurrent use — the underlying SDK client is thread-safe.
type MeiliStore struct {
	client meilisearch.ServiceManager
	index  meilisearch.IndexManager
}

// NewMeiliStore creates a MeiliStore connected to the given Meilisearch
// instance. It verifies connectivity with a health check and ensures the
// target index exists with the correct settings (searchable, filterable,
// sortable attributes), waiting for each settings task to complete.
// Returns an error if Meilisearch is unreachable or index setup fails.
func NewMeiliStore(endpoint, apiKey, indexName string) (*MeiliStore, error) {
	client := meilisearch.New(endpoint, meilisearch.WithAPIKey(apiKey))

	// Health check — fail fast if Meilisearch is down.
	if !client.IsHealthy() {
		return nil, fmt.Errorf("meilisearch at %s is not healthy", endpoint)
	}

	// Ensure the index exists. CreateIndex is idempotent — if the index
	// already exists, Meilisearch returns a task that resolves to success.
	_, err := client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        indexName,
		PrimaryKey: "id",
	})
	if err != nil {
		return nil, fmt.Errorf("create index %q: %w", indexName, err)
	}

	index := client.Index(indexName)

	// Configure index settings for optimal search and filtering.
	// These are idempotent — Meilisearch merges settings on update.
	taskInfo, err := index.UpdateSearchableAttributes(&[]string{
		"event_type",
		"tool_name",
		"session_id",
		"project",
		"model",
		"reason",
		"metadata_flat",
	})
	if err != nil {
		return nil, fmt.Errorf("update searchable attributes: %w", err)
	}
	if err := waitForSettingsTask(client, taskInfo, "searchable attributes"); err != nil {
		return nil, err
	}

	// FilterableAttributes uses []interface{} per the SDK's API.
	filterAttrs := []interface{}{
		"event_type",
		"session_id",
		"agent_type",
		"tool_name",
		"project",
		"status",
		"timestamp_unix",
		"blocked",
		"security_warning",
		"reason",
	}
	taskInfo, err = index.UpdateFilterableAttributes(&filterAttrs)
	if err != nil {
		return nil, fmt.Errorf("update filterable attributes: %w", err)
	}
	if err := waitForSettingsTask(client, taskInfo, "filterable attributes"); err != nil {
		return nil, err
	}

	taskInfo, err = index.UpdateSortableAttributes(&[]string{
		"timestamp_unix",
	})
	if err != nil {
		return nil, fmt.Errorf("update sortable attributes: %w", err)
	}
	if err := waitForSettingsTask(client, taskInfo, "sortable attributes"); err != nil {
		return nil, err
	}

	taskInfo, err = index.UpdatePagination(&meilisearch.Pagination{
		MaxTotalHits: 10000,
	})
	if err != nil {
		return nil, fmt.Errorf("update pagination: %w", err)
	}
	if err := waitForSettingsTask(client, taskInfo, "pagination"); err != nil {
		return nil, err
	}

	taskInfo, err = index.UpdateFaceting(&meilisearch.Faceting{
		MaxValuesPerFacet: 500,
	})
	if err != nil {
		return nil, fmt.Errorf("update faceting: %w", err)
	}
	if err := waitForSettingsTask(client, taskInfo, "faceting"); err != nil {
		return nil, err
	}

	return &MeiliStore{
		client: client,
		index:  index,
	}, nil
}

// waitForSettingsTask waits for a settings update task to complete.
func waitForSettingsTask(client meilisearch.ServiceManager, taskInfo *meilisearch.TaskInfo, name string) error {
	task, err := client.WaitForTask(taskInfo.TaskUID, 500*time.Millisecond)
	if err != nil {
		return fmt.Errorf("wait for %s: %w", name, err)
	}
	if task.Status == meilisearch.TaskStatusFailed {
		return fmt.Errorf("%s task failed: %s", name, task.Error.Message)
	}
	return nil
}

// Index persists a Document to Meilisearch. The SDK's AddDocuments call
// is asynchronous — Meilisearch returns a task ID immediately and indexes
// the document in the background. This method returns an error only if
// the enqueue request itself fails (e.g., network error, invalid document).
func (s *MeiliStore) Index(ctx context.Context, doc Document) error {
	pk := "id"
	_, err := s.index.AddDocumentsWithContext(ctx, []Document{doc}, &meilisearch.DocumentOptions{
		PrimaryKey: &pk,
	})
	if err != nil {
		return fmt.Errorf("index document %s: %w", doc.ID, err)
	}
	return nil
}

// Close is a no-op for MeiliStore — the SDK's HTTP client has no
// persistent resources that need explicit cleanup.
func (s *MeiliStore) Close() error {
	return nil
}
