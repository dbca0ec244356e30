package services

import (
	"context"
	"fmt"
	"time"

	"campusmarket/internal/domain"
	applog "campusmarket/internal/log"
	"campusmarket/internal/retailers"
	"campusmarket/internal/validate"
)

const (
	dealsRecency   = 24 * time.Hour
	dealsRetention = 7 * 24 * time.Hour
	topPicksLimit  = 6
)

// DealStore is the persisted deal table.
type DealStore interface {
	Recent(ctx context.Context, since time.Time) ([]domain.Deal, error)
	ByCategory(ctx context.Context, category domain.Category, since time.Time) ([]domain.Deal, error)
	TopFeatured(ctx context.Context, limit int) ([]domain.Deal, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	InsertBatch(ctx context.Context, deals []domain.Deal) ([]domain.Deal, error)
}

type AggregateResult struct {
	Deals  []domain.Deal `json:"deals"`
	Cached bool          `json:"cached"`
}

// Aggregator refreshes the deal table from the retailer adapters.
type Aggregator struct {
	Store    DealStore
	Adapters []retailers.Adapter // tried in order until one yields deals
	Now      func() time.Time
}

func NewAggregator(store DealStore, adapters ...retailers.Adapter) *Aggregator {
	return &Aggregator{Store: store, Adapters: adapters, Now: time.Now}
}

// Aggregate returns recent stored deals unless forced; otherwise it collects a
// fresh batch, purges deals past retention and stores the batch.
func (a *Aggregator) Aggregate(ctx context.Context, forceRefresh bool) (AggregateResult, error) {
	now := a.Now()
	if !forceRefresh {
		existing, err := a.Store.Recent(ctx, now.Add(-dealsRecency))
		if err != nil {
			return AggregateResult{}, fmt.Errorf("aggregate: read recent deals: %w", err)
		}
		if len(existing) > 0 {
			return AggregateResult{Deals: existing, Cached: true}, nil
		}
	}

	batch := a.collect(ctx)
	if len(batch) == 0 {
		batch = SampleDeals(now)
		for i := range batch {
			batch[i].ID = "" // stored samples get fresh ids
		}
	}

	if n, err := a.Store.DeleteOlderThan(ctx, now.Add(-dealsRetention)); err != nil {
		applog.Warn(nil, "deals.aggregate.purge_failed", err, nil)
	} else if n > 0 {
		applog.Info(nil, "deals.aggregate.purged", map[string]any{"deleted": n})
	}

	inserted, err := a.Store.InsertBatch(ctx, batch)
	if err != nil {
		return AggregateResult{}, fmt.Errorf("aggregate: insert deals: %w", err)
	}
	applog.Info(nil, "deals.aggregate.stored", map[string]any{"count": len(inserted)})
	return AggregateResult{Deals: inserted, Cached: false}, nil
}

// collect asks each adapter in turn and keeps the first non-empty, valid batch.
func (a *Aggregator) collect(ctx context.Context) []domain.Deal {
	for _, ad := range a.Adapters {
		res, err := ad.FetchDeals(ctx)
		if err != nil {
			applog.Warn(nil, "deals.adapter.failed", err, map[string]any{"retailer": ad.Name()})
			continue
		}
		valid := make([]domain.Deal, 0, len(res.Deals))
		for _, d := range res.Deals {
			if err := validate.Struct(d); err != nil {
				applog.Warn(nil, "deals.adapter.invalid_deal", err, map[string]any{"retailer": ad.Name(), "external_id": d.ExternalID})
				continue
			}
			valid = append(valid, d)
		}
		if len(valid) > 0 {
			applog.Info(nil, "deals.adapter.ok", map[string]any{"retailer": ad.Name(), "source": res.Source, "count": len(valid)})
			return valid
		}
	}
	return nil
}
