package cache

import (
	"context"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
)

// Repository describes storage-only operations of a URL cache. No method
// performs network I/O.
type Repository interface {
	// Get returns the record for url, or (nil, nil) when absent.
	Get(ctx context.Context, url string) (*models.CacheRecord, error)

	// Put upserts the payload for url and sets its status to Updated.
	Put(ctx context.Context, url string, payload []byte) error

	// MarkUpdating sets the status of an existing record to Updating.
	MarkUpdating(ctx context.Context, url string) error

	// MarkNotUpdated sets the status of an existing record to NotUpdated.
	MarkNotUpdated(ctx context.Context, url string) error

	// ListByStatus returns the URLs of records with the given status, in
	// insertion order.
	ListByStatus(ctx context.Context, status models.Status) ([]string, error)

	// ResetUpdating moves every Updating record back to NotUpdated.
	ResetUpdating(ctx context.Context) (int64, error)

	// Flush deletes all records and returns how many were removed.
	Flush(ctx context.Context) (int64, error)
}
