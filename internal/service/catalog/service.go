// Package catalog lists the products available for ordering.
package catalog

import (
	"context"
	"net/url"
	"strings"

	"aquaflow-client/internal/domain"
)

type backend interface {
	GetWithRetry(ctx context.Context, path string, query url.Values, out any) error
}

// Service fetches and shapes the product catalog.
type Service struct {
	api       backend
	assetHost string
}

// New creates a Service. assetHost prefixes relative image paths.
func New(client backend, assetHost string) *Service {
	return &Service{api: client, assetHost: strings.TrimRight(assetHost, "/")}
}

// List returns the catalog with display-ready image URLs.
func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	if err := s.api.GetWithRetry(ctx, "/gallons", nil, &rows); err != nil {
		return nil, err
	}

	out := make([]domain.Product, 0, len(rows))
	for _, p := range rows {
		p.ImageURL = s.imageURL(p.ImageURL)
		out = append(out, p)
	}
	return out, nil
}

// imageURL repairs the long-standing "imgaes" typo in stored image paths and
// absolutizes relative ones against the asset host.
func (s *Service) imageURL(path string) string {
	path = strings.ReplaceAll(path, "imgaes", "images")
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return s.assetHost + "/" + strings.TrimLeft(path, "/")
}
