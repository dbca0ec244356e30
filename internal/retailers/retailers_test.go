package retailers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"campusmarket/internal/domain"
)

func TestAmazonMockWithoutCredentials(t *testing.T) {
	for _, a := range []*Amazon{
		NewAmazon("", "", ""),
		NewAmazon("key", "secret", ""),
	} {
		res, err := a.FetchDeals(context.Background())
		if err != nil {
			t.Fatalf("FetchDeals: %v", err)
		}
		if res.Source != SourceMock || len(res.Deals) != 3 {
			t.Fatalf("want 3 mock deals, got %d (%s)", len(res.Deals), res.Source)
		}
	}
}

func TestAmazonConfiguredReturnsEmpty(t *testing.T) {
	res, err := NewAmazon("key", "secret", "campus-20").FetchDeals(context.Background())
	if err != nil {
		t.Fatalf("FetchDeals: %v", err)
	}
	if res.Source != "amazon_api" || len(res.Deals) != 0 {
		t.Fatalf("got %d deals from %s", len(res.Deals), res.Source)
	}
}

func TestWalmartMockWithoutKey(t *testing.T) {
	res, err := NewWalmart("", "http://unused").FetchDeals(context.Background())
	if err != nil {
		t.Fatalf("FetchDeals: %v", err)
	}
	if res.Source != SourceMock || len(res.Deals) != 2 {
		t.Fatalf("want 2 mock deals, got %d (%s)", len(res.Deals), res.Source)
	}
	if res.Deals[0].ExternalID != "wm_notebook_001" {
		t.Fatalf("unexpected first mock: %s", res.Deals[0].ExternalID)
	}
}

func TestWalmartSearchMapsAndFilters(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Path != "/v1/search" || r.URL.Query().Get("apiKey") != "k" || r.URL.Query().Get("numItems") != "5" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		switch r.URL.Query().Get("query") {
		case "laptop students":
			fmt.Fprintf(w, `{"items":[
			  {"name":"Chromebook","salePrice":180,"msrp":250,"productUrl":"https://walmart.com/ip/1","itemId":101,"categoryPath":"Electronics/Computers","customerRating":"4.5","numReviews":12},
			  {"name":"Barely Discounted","salePrice":95,"msrp":100,"productUrl":"https://walmart.com/ip/2","itemId":102,"categoryPath":"Electronics"}
			]}`)
		case "textbooks":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			fmt.Fprintf(w, `{"items":[
			  {"name":"Backpack","salePrice":20,"msrp":40,"productUrl":"https://walmart.com/ip/3","itemId":"103","categoryPath":"Office/School Supplies"}
			]}`)
		}
	}))
	defer srv.Close()

	wm := NewWalmart("k", srv.URL)
	wm.Limiter = nil
	res, err := wm.FetchDeals(context.Background())
	if err != nil {
		t.Fatalf("FetchDeals: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != walmartSearchLimit {
		t.Fatalf("want %d searches, got %d", walmartSearchLimit, got)
	}
	if res.Source != "walmart_api" {
		t.Fatalf("source = %s", res.Source)
	}
	if len(res.Deals) != 2 {
		t.Fatalf("want 2 deals (one under 10%% dropped, one search failed), got %d", len(res.Deals))
	}

	cb := res.Deals[0]
	if cb.ExternalID != "wm_101" || cb.Discount() != 28 || cb.Category != domain.CategoryTech {
		t.Fatalf("chromebook mapped wrong: %+v", cb)
	}
	if cb.Rating == nil || *cb.Rating != 4.5 {
		t.Fatalf("rating not parsed: %v", cb.Rating)
	}
	bp := res.Deals[1]
	if bp.ExternalID != "wm_103" || bp.Category != domain.CategoryStationery || bp.Rating != nil {
		t.Fatalf("backpack mapped wrong: %+v", bp)
	}
}

func TestWalmartCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewWalmart("k", srv.URL).FetchDeals(ctx); err == nil {
		t.Fatal("expected context error")
	}
}

func TestWalmartCategory(t *testing.T) {
	tests := map[string]domain.Category{
		"":                            domain.CategoryOther,
		"Electronics/Laptops":         domain.CategoryTech,
		"Books/Education":             domain.CategoryBooks,
		"Home/Furniture":              domain.CategoryDorm,
		"Office/Supplies":             domain.CategoryStationery,
		"Toys/Outdoor":                domain.CategoryOther,
		"Home/Computer Desks":         domain.CategoryTech,
		"Office/School Supplies/Book": domain.CategoryBooks,
	}
	for path, want := range tests {
		if got := walmartCategory(path); got != want {
			t.Errorf("walmartCategory(%q) = %s, want %s", path, got, want)
		}
	}
}
