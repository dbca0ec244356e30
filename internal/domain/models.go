package domain

import "time"

// Category is the closed set of deal categories.
type Category string

const (
	CategoryTech       Category = "Tech"
	CategoryDorm       Category = "Dorm"
	CategoryBooks      Category = "Books"
	CategoryStationery Category = "Stationery"
	CategoryHealth     Category = "Health"
	CategoryOther      Category = "Other"
)

// All is the filter sentinel meaning "no filter".
const All = "All"

var DealCategories = []Category{
	CategoryTech, CategoryDorm, CategoryBooks, CategoryStationery, CategoryHealth, CategoryOther,
}

// Deal is a third-party retailer discount. Timestamps are unix milliseconds.
type Deal struct {
	ID                 string   `db:"id" json:"id" yaml:"id"`
	Title              string   `db:"title" json:"title" yaml:"title" validate:"required,max=200"`
	Price              float64  `db:"price" json:"price" yaml:"price" validate:"gte=0"`
	OriginalPrice      *float64 `db:"original_price" json:"original_price,omitempty" yaml:"original_price" validate:"omitempty,gte=0"`
	DiscountPercentage *int     `db:"discount_percentage" json:"discount_percentage,omitempty" yaml:"discount_percentage" validate:"omitempty,gte=0,lte=100"`
	ImageURL           *string  `db:"image_url" json:"image_url,omitempty" yaml:"image_url" validate:"omitempty,url"`
	StoreName          string   `db:"store_name" json:"store_name" yaml:"store_name" validate:"required"`
	Category           Category `db:"category" json:"category" yaml:"category" validate:"required,oneof=Tech Dorm Books Stationery Health Other"`
	AffiliateURL       string   `db:"affiliate_url" json:"affiliate_url" yaml:"affiliate_url" validate:"required,url"`
	ExternalID         string   `db:"external_id" json:"external_id" yaml:"external_id" validate:"required"`
	Rating             *float64 `db:"rating" json:"rating,omitempty" yaml:"rating" validate:"omitempty,gte=0,lte=5"`
	ReviewsCount       *int     `db:"reviews_count" json:"reviews_count,omitempty" yaml:"reviews_count" validate:"omitempty,gte=0"`
	IsFeatured         bool     `db:"is_featured" json:"is_featured" yaml:"is_featured"`
	CreatedAt          int64    `db:"created_at" json:"created_at" yaml:"-"`
	ExpiresAt          *int64   `db:"expires_at" json:"expires_at,omitempty" yaml:"-"`
}

// Discount returns the discount percentage, 0 when unknown.
func (d Deal) Discount() int {
	if d.DiscountPercentage == nil {
		return 0
	}
	return *d.DiscountPercentage
}

// RatingValue returns the rating, 0 when unknown.
func (d Deal) RatingValue() float64 {
	if d.Rating == nil {
		return 0
	}
	return *d.Rating
}

func (d Deal) Created() time.Time { return time.UnixMilli(d.CreatedAt) }

// ListingType is what the seller wants to do with the item.
type ListingType string

const (
	ListingBuy  ListingType = "buy"
	ListingSell ListingType = "sell"
	ListingRent ListingType = "rent"
)

var ListingCategories = []string{"Books", "Electronics", "Furniture", "Appliances", "Clothing", "Other"}

type Listing struct {
	ID          string      `db:"id" json:"id"`
	SellerID    string      `db:"seller_id" json:"seller_id"`
	Title       string      `db:"title" json:"title" validate:"required,max=120"`
	Description string      `db:"description" json:"description" validate:"required,max=2000"`
	Price       float64     `db:"price" json:"price" validate:"gte=0"`
	Type        ListingType `db:"type" json:"type" validate:"oneof=buy sell rent"`
	Category    string      `db:"category" json:"category" validate:"oneof=Books Electronics Furniture Appliances Clothing Other"`
	ImagesJSON  string      `db:"images_json" json:"-"`
	Images      []string    `db:"-" json:"images" validate:"dive,url"`
	VideoURL    *string     `db:"video_url" json:"video_url,omitempty" validate:"omitempty,url"`
	College     string      `db:"college" json:"college"`
	CreatedAt   int64       `db:"created_at" json:"created_at"`

	SellerName string `db:"seller_name" json:"seller_name,omitempty"`
}

func (l Listing) Created() time.Time { return time.UnixMilli(l.CreatedAt) }

// Message is an immutable direct message. Seq is assigned by the store.
type Message struct {
	Seq        int64   `db:"seq" json:"-"`
	ID         string  `db:"id" json:"id"`
	SenderID   string  `db:"sender_id" json:"sender_id"`
	ReceiverID string  `db:"receiver_id" json:"receiver_id"`
	Text       string  `db:"text" json:"text"`
	CreatedAt  int64   `db:"created_at" json:"created_at"`
	ListingID  *string `db:"listing_id" json:"listing_id,omitempty"`
}

func (m Message) Created() time.Time { return time.UnixMilli(m.CreatedAt) }

// Conversation is derived from the message log; it is never stored.
type Conversation struct {
	CounterpartID string  `json:"counterpart_id"`
	Counterpart   Profile `json:"counterpart"`
	LastMessage   Message `json:"last_message"`
	UnreadCount   int     `json:"unread_count"`
}
