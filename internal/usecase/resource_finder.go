//go:generate mockgen -source=resource_finder.go -destination=../../tests/mock/usecase/resource_finder.go -package=mock_usecase

package usecase

import (
	"context"
	"log/slog"
	"strings"

	"resource-finder/internal/domain/currency"
	"resource-finder/internal/pkg/errs"

	"golang.org/x/sync/singleflight"
)

type FindRequest struct {
	Subject  string
	ClientIP string
}

type ResourceFinder interface {
	Find(ctx context.Context, req FindRequest) (*ResourceListing, error)
}

type resourceFinderImpl struct {
	upstream   ChatCompleter
	geo        GeoLocator
	cache      ListingCache
	normalizer *currency.Normalizer
	logger     *slog.Logger
	inflight   singleflight.Group
}

func NewResourceFinder(upstream ChatCompleter, geo GeoLocator, cache ListingCache, normalizer *currency.Normalizer, logger *slog.Logger) ResourceFinder {
	return &resourceFinderImpl{
		upstream:   upstream,
		geo:        geo,
		cache:      cache,
		normalizer: normalizer,
		logger:     logger.With("component", "resource_finder"),
	}
}

// CacheKey is the normalized subject used for cache lookups.
func CacheKey(subject string) string {
	return strings.ToLower(strings.TrimSpace(subject))
}

func (uc *resourceFinderImpl) Find(ctx context.Context, req FindRequest) (*ResourceListing, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, ErrSubjectRequired
	}
	key := CacheKey(subject)

	if listing, ok := uc.lookup(ctx, key); ok {
		uc.logger.InfoContext(ctx, "served from cache", "subject", key)
		return listing, nil
	}

	target := uc.resolveCurrency(req.ClientIP)
	uc.logger.DebugContext(ctx, "cache miss", "subject", key, "currency", target)

	// Identical concurrent misses share one upstream call. The shared call outlives
	// the first caller's cancellation; the upstream client enforces its own timeout.
	shared := context.WithoutCancel(ctx)
	v, err, coalesced := uc.inflight.Do(key+"|"+target, func() (any, error) {
		return uc.fetch(shared, subject, key, target)
	})
	if err != nil {
		return nil, err
	}
	if coalesced {
		uc.logger.DebugContext(ctx, "joined in-flight request", "subject", key)
	}
	return v.(*ResourceListing), nil
}

func (uc *resourceFinderImpl) lookup(ctx context.Context, key string) (*ResourceListing, bool) {
	listing, ok, err := uc.cache.Get(ctx, key)
	if err != nil {
		uc.logger.WarnContext(ctx, "cache read failed, computing fresh", "subject", key, "error", err)
		return nil, false
	}
	if !ok || listing == nil {
		return nil, false
	}
	return listing, true
}

func (uc *resourceFinderImpl) resolveCurrency(ip string) string {
	table := uc.normalizer.Table()
	if ip == "" || uc.geo == nil {
		return table.Base()
	}
	country, ok := uc.geo.CountryCode(ip)
	if !ok {
		return table.Base()
	}
	return table.CurrencyForCountry(country)
}

func (uc *resourceFinderImpl) fetch(ctx context.Context, subject, key, target string) (*ResourceListing, error) {
	table := uc.normalizer.Table()
	prompt := BuildResourcePrompt(subject, table.Base())

	uc.logger.InfoContext(ctx, "requesting resources from upstream", "subject", key)
	reply, err := uc.upstream.Complete(ctx, prompt)
	if err != nil {
		uc.logger.ErrorContext(ctx, "upstream call failed", "subject", key, "error", err)
		return nil, errs.Mark(errs.Wrap(err, "complete resource prompt"), ErrUpstreamFailed)
	}

	content := CleanContent(reply)
	set, err := parseResourceSet(content)
	if err != nil {
		uc.logger.ErrorContext(ctx, "model reply is not valid resource JSON", "subject", key, "content", content, "error", err)
		return nil, errs.Mark(err, ErrParseFailed)
	}

	listing := &ResourceListing{
		Currency:  table.Info(target),
		Resources: set.ConvertPrices(uc.normalizer, target),
	}
	uc.logger.DebugContext(ctx, "prices normalized", "subject", key, "currency", target, "resources", set.Count())

	if err := uc.cache.Set(ctx, key, listing); err != nil {
		uc.logger.WarnContext(ctx, "cache write failed", "subject", key, "error", err)
	}
	return listing, nil
}
