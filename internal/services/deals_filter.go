package services

import (
	"sort"
	"strings"

	"campusmarket/internal/domain"
)

// Sort keys accepted by DealFilter.SortBy. Anything else uses the default
// order: featured first, then by discount.
const (
	SortPrice    = "price"
	SortDiscount = "discount"
	SortRating   = "rating"
	SortNewest   = "newest"
)

// DealFilter narrows and orders a deal set. Empty or "All" category and
// store mean no filter; nil price bounds are open.
type DealFilter struct {
	Category string
	Store    string
	MinPrice *float64
	MaxPrice *float64
	SortBy   string
	Search   string
}

// FilterDeals is pure: it never mutates deals and always returns a new slice.
func FilterDeals(deals []domain.Deal, f DealFilter) []domain.Deal {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if !isAll(f.Category) && string(d.Category) != f.Category {
			continue
		}
		if !isAll(f.Store) && d.StoreName != f.Store {
			continue
		}
		if f.MinPrice != nil && d.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && d.Price > *f.MaxPrice {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(d.Title), search) {
			continue
		}
		out = append(out, d)
	}

	var less func(a, b domain.Deal) bool
	switch f.SortBy {
	case SortPrice:
		less = func(a, b domain.Deal) bool { return a.Price < b.Price }
	case SortDiscount:
		less = func(a, b domain.Deal) bool { return a.Discount() > b.Discount() }
	case SortRating:
		less = func(a, b domain.Deal) bool { return a.RatingValue() > b.RatingValue() }
	case SortNewest:
		less = func(a, b domain.Deal) bool { return a.CreatedAt > b.CreatedAt }
	default:
		less = func(a, b domain.Deal) bool {
			if a.IsFeatured != b.IsFeatured {
				return a.IsFeatured
			}
			return a.Discount() > b.Discount()
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func isAll(s string) bool {
	return s == "" || strings.EqualFold(s, domain.All)
}

// Stores lists the distinct store names in first-seen order, for filter menus.
func Stores(deals []domain.Deal) []string {
	seen := map[string]bool{}
	var out []string
	for _, d := range deals {
		if !seen[d.StoreName] {
			seen[d.StoreName] = true
			out = append(out, d.StoreName)
		}
	}
	return out
}
