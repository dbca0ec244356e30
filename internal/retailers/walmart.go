package retailers

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"campusmarket/internal/domain"
	applog "campusmarket/internal/log"
	"campusmarket/internal/metrics"

	"golang.org/x/time/rate"
)

const (
	walmartSearchLimit = 3
	walmartMinDiscount = 10
)

// Student-relevant search terms, in priority order. Only the first
// walmartSearchLimit are issued per fetch.
var walmartSearches = []string{
	"laptop students",
	"textbooks",
	"backpack",
	"desk organizer",
	"wireless earbuds",
	"tablet",
	"calculator",
	"desk lamp",
}

type Walmart struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

func NewWalmart(apiKey, baseURL string) *Walmart {
	return &Walmart{
		APIKey:  apiKey,
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: 10 * time.Second},
		Limiter: rate.NewLimiter(rate.Every(250*time.Millisecond), 1),
	}
}

func (w *Walmart) Name() string { return "walmart" }

type walmartItem struct {
	Name           string      `json:"name"`
	SalePrice      float64     `json:"salePrice"`
	MSRP           float64     `json:"msrp"`
	ThumbnailImage string      `json:"thumbnailImage"`
	ProductURL     string      `json:"productUrl"`
	ItemID         json.Number `json:"itemId"`
	CategoryPath   string      `json:"categoryPath"`
	CustomerRating string      `json:"customerRating"`
	NumReviews     int         `json:"numReviews"`
}

type walmartSearchResponse struct {
	Items []walmartItem `json:"items"`
}

// FetchDeals runs the keyword searches one after another. A failed search is
// logged and skipped; only a cancelled context aborts the whole fetch.
func (w *Walmart) FetchDeals(ctx context.Context) (Result, error) {
	if w.APIKey == "" {
		metrics.RetailerCalls.WithLabelValues(w.Name(), SourceMock).Inc()
		return Result{Deals: walmartMockDeals(), Source: SourceMock}, nil
	}
	metrics.RetailerCalls.WithLabelValues(w.Name(), "walmart_api").Inc()

	deals := []domain.Deal{}
	for _, term := range walmartSearches[:walmartSearchLimit] {
		if w.Limiter != nil {
			if err := w.Limiter.Wait(ctx); err != nil {
				return Result{}, err
			}
		}
		items, err := w.search(ctx, term)
		if err != nil {
			if ctx.Err() != nil {
				return Result{}, ctx.Err()
			}
			applog.Warn(nil, "retailer.walmart.search_failed", err, map[string]any{"query": term})
			continue
		}
		for _, it := range items {
			if d, ok := mapWalmartItem(it); ok {
				deals = append(deals, d)
			}
		}
	}
	return Result{Deals: deals, Source: "walmart_api"}, nil
}

func (w *Walmart) search(ctx context.Context, term string) ([]walmartItem, error) {
	q := url.Values{}
	q.Set("query", term)
	q.Set("format", "json")
	q.Set("apiKey", w.APIKey)
	q.Set("numItems", "5")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.BaseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := w.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search %q: unexpected status %d", term, resp.StatusCode)
	}

	var body walmartSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("search %q: decode: %w", term, err)
	}
	return body.Items, nil
}

// mapWalmartItem converts a search hit, keeping it only at walmartMinDiscount or better.
func mapWalmartItem(it walmartItem) (domain.Deal, bool) {
	discount := 0
	if it.MSRP > 0 && it.SalePrice < it.MSRP {
		discount = int(math.Round((it.MSRP - it.SalePrice) / it.MSRP * 100))
	}
	if discount < walmartMinDiscount {
		return domain.Deal{}, false
	}

	d := domain.Deal{
		Title:              it.Name,
		Price:              it.SalePrice,
		OriginalPrice:      ptr(it.MSRP),
		DiscountPercentage: ptr(discount),
		StoreName:          "Walmart",
		Category:           walmartCategory(it.CategoryPath),
		AffiliateURL:       it.ProductURL,
		ExternalID:         "wm_" + it.ItemID.String(),
		ReviewsCount:       ptr(it.NumReviews),
	}
	if it.ThumbnailImage != "" {
		d.ImageURL = ptr(it.ThumbnailImage)
	}
	if r, err := strconv.ParseFloat(it.CustomerRating, 64); err == nil {
		d.Rating = ptr(r)
	}
	return d, true
}

func walmartCategory(path string) domain.Category {
	p := strings.ToLower(path)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(p, w) {
				return true
			}
		}
		return false
	}
	switch {
	case p == "":
		return domain.CategoryOther
	case containsAny("electronics", "computer", "laptop"):
		return domain.CategoryTech
	case containsAny("book", "education"):
		return domain.CategoryBooks
	case containsAny("home", "dorm", "furniture"):
		return domain.CategoryDorm
	case containsAny("office", "school", "supplies"):
		return domain.CategoryStationery
	}
	return domain.CategoryOther
}

func walmartMockDeals() []domain.Deal {
	return []domain.Deal{
		{
			Title:              "5-Subject Notebook Pack",
			Price:              12.99,
			OriginalPrice:      ptr(19.99),
			DiscountPercentage: ptr(35),
			ImageURL:           ptr("https://images.unsplash.com/photo-1531347520862-2c75e2f10af4"),
			StoreName:          "Walmart",
			Category:           domain.CategoryStationery,
			AffiliateURL:       "https://walmart.com/notebooks",
			ExternalID:         "wm_notebook_001",
			Rating:             ptr(4.2),
			ReviewsCount:       ptr(445),
		},
		{
			Title:              "Student Desk Organizer Set",
			Price:              24.99,
			OriginalPrice:      ptr(34.99),
			DiscountPercentage: ptr(29),
			ImageURL:           ptr("https://images.unsplash.com/photo-1586281380349-632531db7ed4"),
			StoreName:          "Walmart",
			Category:           domain.CategoryDorm,
			AffiliateURL:       "https://walmart.com/organizer",
			ExternalID:         "wm_organizer_001",
			Rating:             ptr(4.4),
			ReviewsCount:       ptr(234),
		},
	}
}
