package queue

import (
	"context"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
)

// Repository describes the unsent request queue.
type Repository interface {
	// Enqueue appends serialized at the tail with status NotUpdated.
	Enqueue(ctx context.Context, serialized []byte) (*models.PendingRequest, error)

	// ListPending returns every queued request in ascending id order.
	ListPending(ctx context.Context) ([]*models.PendingRequest, error)

	// MarkUpdating flags a request as being resent.
	MarkUpdating(ctx context.Context, id int64) error

	// MarkDelivered removes a delivered request.
	MarkDelivered(ctx context.Context, id int64) error

	// MarkFailed returns a request to NotUpdated for the next attempt.
	MarkFailed(ctx context.Context, id int64) error

	// Count returns the number of queued requests.
	Count(ctx context.Context) (int, error)

	// ResetUpdating moves requests left Updating by a dead process back to NotUpdated.
	ResetUpdating(ctx context.Context) (int64, error)

	// FlushAll deletes every request regardless of status.
	FlushAll(ctx context.Context) (int64, error)
}
