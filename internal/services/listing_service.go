package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"campusmarket/internal/domain"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"

	"github.com/google/uuid"
)

var ErrInvalidListing = errors.New("invalid listing")

// Uploads are mocked: a listing with n images gets the first n of this pool.
var mockImagePool = []string{
	"https://images.unsplash.com/photo-1517336714731-489689fd1ca8",
	"https://images.unsplash.com/photo-1481627834876-b7833e8f5570",
	"https://images.unsplash.com/photo-1586023492125-27b2c045efd7",
	"https://images.unsplash.com/photo-1571175443880-49e1d25b2bc5",
	"https://images.unsplash.com/photo-1523275335684-37898b6baf30",
}

const maxListingImages = 5

type ListingInput struct {
	Title       string
	Description string
	Price       string
	Type        string
	Category    string
	ImageCount  int
	VideoURL    string
}

type ListingService struct {
	Listings *repos.ListingRepo
	Now      func() time.Time
}

func NewListingService(listings *repos.ListingRepo) *ListingService {
	return &ListingService{Listings: listings, Now: time.Now}
}

// Create stores a listing for seller, scoped to the seller's college.
func (s *ListingService) Create(seller *domain.User, in ListingInput) (domain.Listing, error) {
	if _, ok := validate.Text(in.Title, 120); !ok {
		return domain.Listing{}, fmt.Errorf("%w: title is required (max 120 characters)", ErrInvalidListing)
	}
	if _, ok := validate.Text(in.Description, 2000); !ok {
		return domain.Listing{}, fmt.Errorf("%w: description is required (max 2000 characters)", ErrInvalidListing)
	}
	price, ok := validate.Price(in.Price)
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: price must be a non-negative number", ErrInvalidListing)
	}
	typ, ok := validate.ListingType(in.Type)
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: type must be buy, sell or rent", ErrInvalidListing)
	}
	cat, ok := validate.OneOf(in.Category, domain.ListingCategories...)
	if !ok {
		return domain.Listing{}, fmt.Errorf("%w: choose a category", ErrInvalidListing)
	}

	n := in.ImageCount
	if n < 0 {
		n = 0
	}
	if n > maxListingImages {
		n = maxListingImages
	}
	l := domain.Listing{
		ID:          uuid.NewString(),
		SellerID:    seller.ID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       price,
		Type:        domain.ListingType(typ),
		Category:    cat,
		Images:      append([]string{}, mockImagePool[:n]...),
		College:     seller.College,
		CreatedAt:   s.Now().UnixMilli(),
		SellerName:  seller.Name,
	}
	if v := strings.TrimSpace(in.VideoURL); v != "" {
		l.VideoURL = &v
	}
	if err := validate.Struct(l); err != nil {
		return domain.Listing{}, fmt.Errorf("%w: %v", ErrInvalidListing, err)
	}
	if err := s.Listings.Create(&l); err != nil {
		return domain.Listing{}, err
	}
	return l, nil
}

func (s *ListingService) Get(id string) (domain.Listing, error) {
	return s.Listings.Get(id)
}

func (s *ListingService) ListBySeller(userID string) ([]domain.Listing, error) {
	return s.Listings.ListBySeller(userID)
}

// Browse lists the college's listings, newest first. "all" or empty filters are ignored.
func (s *ListingService) Browse(college, q, category, typ string) ([]domain.Listing, error) {
	query := repos.ListingQuery{College: college}
	if v, ok := validate.Q(q); ok {
		query.Q = v
	}
	if !isAll(category) {
		c, ok := validate.OneOf(category, domain.ListingCategories...)
		if !ok {
			return []domain.Listing{}, nil
		}
		query.Category = c
	}
	if !isAll(typ) {
		t, ok := validate.ListingType(typ)
		if !ok {
			return []domain.Listing{}, nil
		}
		query.Type = t
	}
	return s.Listings.Browse(query)
}
