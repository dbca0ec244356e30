package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"campusmarket/internal/domain"
	applog "campusmarket/internal/log"
	"campusmarket/internal/metrics"

	"golang.org/x/sync/singleflight"
)

// FetchResult is what the deals page and API render. Error is set when the
// built-in sample set had to be served.
type FetchResult struct {
	Deals  []domain.Deal `json:"deals"`
	Cached bool          `json:"cached"`
	Source string        `json:"source"`
	Error  string        `json:"error,omitempty"`
}

// DealProvider is one tier of the fetch chain. An empty result passes to the next tier.
type DealProvider interface {
	Name() string
	Provide(ctx context.Context, forceRefresh bool) ([]domain.Deal, error)
}

// DealAggregator is satisfied by *Aggregator.
type DealAggregator interface {
	Aggregate(ctx context.Context, forceRefresh bool) (AggregateResult, error)
}

type storeProvider struct {
	store DealStore
	now   func() time.Time
}

func (p storeProvider) Name() string { return "store" }
func (p storeProvider) Provide(ctx context.Context, _ bool) ([]domain.Deal, error) {
	return p.store.Recent(ctx, p.now().Add(-dealsRecency))
}

type aggregatorProvider struct{ agg DealAggregator }

func (p aggregatorProvider) Name() string { return "aggregator" }
func (p aggregatorProvider) Provide(ctx context.Context, force bool) ([]domain.Deal, error) {
	res, err := p.agg.Aggregate(ctx, force)
	return res.Deals, err
}

// DealsService is the deals pipeline: cache, then each provider in order,
// then the built-in sample set. It never returns an error to its caller.
type DealsService struct {
	store     DealStore
	cache     *DealsCache
	providers []DealProvider
	group     singleflight.Group
	now       func() time.Time
}

func NewDealsService(store DealStore, agg DealAggregator, ttl time.Duration) *DealsService {
	s := &DealsService{store: store, cache: NewDealsCache(ttl), now: time.Now}
	s.providers = []DealProvider{
		storeProvider{store: store, now: func() time.Time { return s.now() }},
		aggregatorProvider{agg: agg},
	}
	return s
}

func (s *DealsService) FetchDeals(ctx context.Context, forceRefresh bool) FetchResult {
	if !forceRefresh {
		if deals, ok := s.cache.Get(); ok {
			metrics.DealsCacheHits.Inc()
			return FetchResult{Deals: deals, Cached: true, Source: "cache"}
		}
	}

	// A refresh bumps the cache generation, so later fetches start a new
	// flight instead of joining one that began before it.
	key := fmt.Sprintf("fetch:%d", s.cache.Generation())
	if forceRefresh {
		key = "refresh"
	}
	// Callers sharing a flight must not inherit the leader's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(key, func() (any, error) {
		return s.runChain(flightCtx, forceRefresh), nil
	})
	res := v.(FetchResult)
	res.Deals = cloneDeals(res.Deals)
	return res
}

func (s *DealsService) runChain(ctx context.Context, forceRefresh bool) FetchResult {
	gen := s.cache.Generation()
	var errs []error
	for _, p := range s.providers {
		deals, err := p.Provide(ctx, forceRefresh)
		if err != nil {
			metrics.DealsTier.WithLabelValues(p.Name(), "error").Inc()
			applog.Warn(nil, "deals.tier.failed", err, map[string]any{"tier": p.Name()})
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if len(deals) == 0 {
			metrics.DealsTier.WithLabelValues(p.Name(), "empty").Inc()
			continue
		}
		metrics.DealsTier.WithLabelValues(p.Name(), "hit").Inc()
		s.cache.Set(deals, gen)
		return FetchResult{Deals: deals, Source: p.Name()}
	}

	// Samples are not cached so the next request retries the real tiers.
	metrics.DealsTier.WithLabelValues("samples", "hit").Inc()
	msg := "no deals available"
	if len(errs) > 0 {
		msg = errors.Join(errs...).Error()
	}
	applog.Warn(nil, "deals.fallback.samples", nil, map[string]any{"reason": msg})
	return FetchResult{Deals: SampleDeals(s.now()), Source: "samples", Error: msg}
}

// RefreshDeals drops the cache and runs a forced fetch.
func (s *DealsService) RefreshDeals(ctx context.Context) FetchResult {
	s.cache.Clear()
	return s.FetchDeals(ctx, true)
}

// FetchByCategory reads recent deals of one category from the store, falling
// back to filtering FetchDeals in memory when the query fails.
func (s *DealsService) FetchByCategory(ctx context.Context, category string) []domain.Deal {
	since := s.now().Add(-dealsRecency)
	var (
		deals []domain.Deal
		err   error
	)
	if isAll(category) {
		deals, err = s.store.Recent(ctx, since)
	} else {
		deals, err = s.store.ByCategory(ctx, domain.Category(category), since)
	}
	if err == nil {
		return deals
	}
	applog.Warn(nil, "deals.category.query_failed", err, map[string]any{"category": category})
	return FilterDeals(s.FetchDeals(ctx, false).Deals, DealFilter{Category: category, SortBy: SortNewest})
}

// FetchTopPicks returns up to six featured deals by rating then discount.
// On query failure it picks from FetchDeals: featured or at least 25% off.
func (s *DealsService) FetchTopPicks(ctx context.Context) []domain.Deal {
	deals, err := s.store.TopFeatured(ctx, topPicksLimit)
	if err == nil {
		return deals
	}
	applog.Warn(nil, "deals.top.query_failed", err, nil)

	picks := []domain.Deal{}
	for _, d := range s.FetchDeals(ctx, false).Deals {
		if d.IsFeatured || d.Discount() >= 25 {
			picks = append(picks, d)
		}
	}
	sort.SliceStable(picks, func(i, j int) bool {
		if picks[i].RatingValue() != picks[j].RatingValue() {
			return picks[i].RatingValue() > picks[j].RatingValue()
		}
		return picks[i].Discount() > picks[j].Discount()
	})
	if len(picks) > topPicksLimit {
		picks = picks[:topPicksLimit]
	}
	return picks
}
