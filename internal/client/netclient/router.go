package netclient

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/common"
)

// Router sends each call to the client registered for the URL's scheme.
type Router struct {
	routes map[string]Client
}

func NewRouter() *Router {
	return &Router{routes: make(map[string]Client)}
}

// Handle registers c for scheme, replacing any earlier registration.
func (r *Router) Handle(scheme string, c Client) *Router {
	r.routes[strings.ToLower(scheme)] = c
	return r
}

func (r *Router) Get(ctx context.Context, rawURL string) ([]byte, error) {
	c, err := r.route(rawURL)
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, rawURL)
}

func (r *Router) Post(ctx context.Context, rawURL string, payload []byte) ([]byte, error) {
	c, err := r.route(rawURL)
	if err != nil {
		return nil, err
	}
	return c.Post(ctx, rawURL, payload)
}

func (r *Router) Send(ctx context.Context, req *models.Request) ([]byte, error) {
	c, err := r.route(req.URL)
	if err != nil {
		return nil, err
	}
	return c.Send(ctx, req)
}

func (r *Router) route(rawURL string) (Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
	}
	c, ok := r.routes[strings.ToLower(u.Scheme)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", common.ErrUnsupportedScheme, u.Scheme)
	}
	return c, nil
}
