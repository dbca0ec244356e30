// Package retailers adapts third-party retailer catalogs into deals.
// An adapter without credentials serves a fixed mock list instead of failing.
package retailers

import (
	"context"

	"campusmarket/internal/domain"
)

const SourceMock = "mock"

// Result is one adapter response. Source is "mock" or the live API name.
type Result struct {
	Deals  []domain.Deal `json:"deals"`
	Source string        `json:"source"`
}

type Adapter interface {
	Name() string
	FetchDeals(ctx context.Context) (Result, error)
}

func ptr[T any](v T) *T { return &v }
