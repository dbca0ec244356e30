package repos

import (
	"context"
	"time"

	"campusmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type DealRepo struct{ db *sqlx.DB }

func NewDealRepo(db *sqlx.DB) *DealRepo { return &DealRepo{db: db} }

const dealCols = `id, title, price, original_price, discount_percentage, image_url, store_name,
    category, affiliate_url, external_id, rating, reviews_count, is_featured, created_at, expires_at`

// Recent returns deals created at or after since, featured first then newest.
func (r *DealRepo) Recent(ctx context.Context, since time.Time) ([]domain.Deal, error) {
	out := []domain.Deal{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT `+dealCols+`
	  FROM deals
	  WHERE created_at >= ?
	  ORDER BY is_featured DESC, created_at DESC`), since.UnixMilli())
	return out, err
}

func (r *DealRepo) ByCategory(ctx context.Context, category domain.Category, since time.Time) ([]domain.Deal, error) {
	out := []domain.Deal{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT `+dealCols+`
	  FROM deals
	  WHERE category = ? AND created_at >= ?
	  ORDER BY created_at DESC`), string(category), since.UnixMilli())
	return out, err
}

// TopFeatured returns featured deals ordered by rating then discount, missing values last.
func (r *DealRepo) TopFeatured(ctx context.Context, limit int) ([]domain.Deal, error) {
	if limit <= 0 {
		limit = 6
	}
	out := []domain.Deal{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT `+dealCols+`
	  FROM deals
	  WHERE is_featured = ?
	  ORDER BY COALESCE(rating, 0) DESC, COALESCE(discount_percentage, 0) DESC
	  LIMIT ?`), true, limit)
	return out, err
}

// DeleteOlderThan purges deals created before cutoff and reports how many went.
func (r *DealRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM deals WHERE created_at < ?`), cutoff.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// InsertBatch stores deals in one transaction, assigning ids and creation
// times where missing, and returns the rows as stored.
func (r *DealRepo) InsertBatch(ctx context.Context, deals []domain.Deal) ([]domain.Deal, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	stmt := tx.Rebind(`
	  INSERT INTO deals(` + dealCols + `)
	  VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	out := make([]domain.Deal, 0, len(deals))
	for _, d := range deals {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		if d.CreatedAt == 0 {
			d.CreatedAt = now
		}
		if _, err := tx.ExecContext(ctx, stmt,
			d.ID, d.Title, d.Price, d.OriginalPrice, d.DiscountPercentage, d.ImageURL, d.StoreName,
			string(d.Category), d.AffiliateURL, d.ExternalID, d.Rating, d.ReviewsCount, d.IsFeatured,
			d.CreatedAt, d.ExpiresAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}
