//go:generate mockgen -source=ports.go -destination=../../tests/mock/usecase/ports.go -package=mock_usecase

package usecase

import (
	"context"

	"resource-finder/internal/domain/currency"
	"resource-finder/internal/domain/learning"
)

// ResourceListing is the response envelope served to clients and stored in the cache.
// Values returned by a ListingCache are shared and must be treated as read-only.
type ResourceListing struct {
	Currency  currency.Info        `json:"currency"`
	Resources learning.ResourceSet `json:"resources"`
}

type Prompt struct {
	System string
	User   string
}

// ChatCompleter sends one prompt to the upstream model and returns the reply content.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// GeoLocator resolves a client IP to an ISO country code.
type GeoLocator interface {
	CountryCode(ip string) (string, bool)
}

type ListingCache interface {
	Get(ctx context.Context, key string) (*ResourceListing, bool, error)
	Set(ctx context.Context, key string, listing *ResourceListing) error
}
