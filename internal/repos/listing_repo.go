package repos

import (
	"encoding/json"
	"strings"

	"campusmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

type ListingRepo struct{ db *sqlx.DB }

func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

const listingSelect = `
  SELECT
    l.id, l.seller_id, l.title, l.description, l.price, l.type, l.category,
    l.images_json, l.video_url, l.college, l.created_at,
    COALESCE(u.name,'') AS seller_name
  FROM listings l
  LEFT JOIN users u ON u.id = l.seller_id`

// ListingQuery narrows Browse. Empty fields mean no filter.
type ListingQuery struct {
	College  string
	Q        string
	Category string
	Type     string
}

func (r *ListingRepo) Create(l *domain.Listing) error {
	imgs := l.Images
	if imgs == nil {
		imgs = []string{}
	}
	b, err := json.Marshal(imgs)
	if err != nil {
		return err
	}
	l.ImagesJSON = string(b)
	_, err = r.db.Exec(r.db.Rebind(`
	  INSERT INTO listings(id,seller_id,title,description,price,type,category,images_json,video_url,college,created_at)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?)`),
		l.ID, l.SellerID, l.Title, l.Description, l.Price, string(l.Type), l.Category, l.ImagesJSON, l.VideoURL, l.College, l.CreatedAt)
	return err
}

func (r *ListingRepo) Get(id string) (domain.Listing, error) {
	var l domain.Listing
	if err := r.db.Get(&l, r.db.Rebind(listingSelect+` WHERE l.id = ?`), id); err != nil {
		return domain.Listing{}, err
	}
	decodeImages(&l)
	return l, nil
}

func (r *ListingRepo) ListBySeller(sellerID string) ([]domain.Listing, error) {
	var out []domain.Listing
	if err := r.db.Select(&out, r.db.Rebind(listingSelect+` WHERE l.seller_id = ? ORDER BY l.created_at DESC`), sellerID); err != nil {
		return nil, err
	}
	for i := range out {
		decodeImages(&out[i])
	}
	return out, nil
}

func (r *ListingRepo) Browse(q ListingQuery) ([]domain.Listing, error) {
	where := `1 = 1`
	args := []any{}
	if q.College != "" {
		where += ` AND l.college = ?`
		args = append(args, q.College)
	}
	if q.Q != "" {
		like := "%" + strings.ToLower(q.Q) + "%"
		where += ` AND (LOWER(l.title) LIKE ? OR LOWER(l.description) LIKE ?)`
		args = append(args, like, like)
	}
	if q.Category != "" {
		where += ` AND l.category = ?`
		args = append(args, q.Category)
	}
	if q.Type != "" {
		where += ` AND l.type = ?`
		args = append(args, q.Type)
	}

	var out []domain.Listing
	if err := r.db.Select(&out, r.db.Rebind(listingSelect+` WHERE `+where+` ORDER BY l.created_at DESC`), args...); err != nil {
		return nil, err
	}
	for i := range out {
		decodeImages(&out[i])
	}
	return out, nil
}

func decodeImages(l *domain.Listing) {
	l.Images = []string{}
	if l.ImagesJSON != "" {
		_ = json.Unmarshal([]byte(l.ImagesJSON), &l.Images)
	}
}
