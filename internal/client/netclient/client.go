package netclient

import (
	"context"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/google/uuid"
)

// Client is the contract shared by every transport in this package.
type Client interface {
	Get(ctx context.Context, url string) ([]byte, error)
	Post(ctx context.Context, url string, payload []byte) ([]byte, error)
	Send(ctx context.Context, req *models.Request) ([]byte, error)
}

type correlationKey struct{}

// WithCorrelationID attaches an id that HTTP requests carry in the
// X-Request-Id header.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the id attached to ctx, or a fresh one.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
