package ports

import (
	"context"

	"github.com/vetri-dj/ops-api/internal/core/domain"
)

// PostalLookup resolves an Indian postal code. An unreachable service yields
// domain.ErrUpstreamUnavailable.
type PostalLookup interface {
	Lookup(ctx context.Context, pincode string) ([]domain.PostOffice, error)
}
