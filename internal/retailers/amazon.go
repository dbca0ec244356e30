package retailers

import (
	"context"

	"campusmarket/internal/domain"
	"campusmarket/internal/metrics"
)

// Amazon serves Product Advertising API deals. Live calls need all three
// credentials and approval as an associate.
type Amazon struct {
	AccessKey    string
	SecretKey    string
	AssociateTag string
}

func NewAmazon(accessKey, secretKey, associateTag string) *Amazon {
	return &Amazon{AccessKey: accessKey, SecretKey: secretKey, AssociateTag: associateTag}
}

func (a *Amazon) Name() string { return "amazon" }

func (a *Amazon) configured() bool {
	return a.AccessKey != "" && a.SecretKey != "" && a.AssociateTag != ""
}

func (a *Amazon) FetchDeals(ctx context.Context) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if !a.configured() {
		metrics.RetailerCalls.WithLabelValues(a.Name(), SourceMock).Inc()
		return Result{Deals: amazonMockDeals(), Source: SourceMock}, nil
	}
	// TODO: sign PA-API 5 SearchItems requests (SigV4) once associate approval lands.
	metrics.RetailerCalls.WithLabelValues(a.Name(), "amazon_api").Inc()
	return Result{Deals: []domain.Deal{}, Source: "amazon_api"}, nil
}

func amazonMockDeals() []domain.Deal {
	return []domain.Deal{
		{
			Title:              "Amazon Echo Dot (4th Gen) - Student Discount",
			Price:              29.99,
			OriginalPrice:      ptr(49.99),
			DiscountPercentage: ptr(40),
			ImageURL:           ptr("https://images.unsplash.com/photo-1543512214-318c7553f230"),
			StoreName:          "Amazon",
			Category:           domain.CategoryTech,
			AffiliateURL:       "https://amazon.com/echo-dot-student",
			ExternalID:         "amz_echo_001",
			Rating:             ptr(4.6),
			ReviewsCount:       ptr(12450),
			IsFeatured:         true,
		},
		{
			Title:              "Anker Portable Charger 10000mAh",
			Price:              21.99,
			OriginalPrice:      ptr(29.99),
			DiscountPercentage: ptr(27),
			ImageURL:           ptr("https://images.unsplash.com/photo-1609592518043-8bbe5f768d7e"),
			StoreName:          "Amazon",
			Category:           domain.CategoryTech,
			AffiliateURL:       "https://amazon.com/anker-charger",
			ExternalID:         "amz_charger_001",
			Rating:             ptr(4.7),
			ReviewsCount:       ptr(8900),
		},
		{
			Title:              "Blue Light Blocking Glasses",
			Price:              15.99,
			OriginalPrice:      ptr(24.99),
			DiscountPercentage: ptr(36),
			ImageURL:           ptr("https://images.unsplash.com/photo-1574258495973-f010dfbb5371"),
			StoreName:          "Amazon",
			Category:           domain.CategoryHealth,
			AffiliateURL:       "https://amazon.com/blue-light-glasses",
			ExternalID:         "amz_glasses_001",
			Rating:             ptr(4.3),
			ReviewsCount:       ptr(567),
		},
	}
}
