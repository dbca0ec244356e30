package repos

import (
	"context"

	"campusmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

// MessageRepo is the append-only message log. Rows are never updated or deleted.
type MessageRepo struct{ db *sqlx.DB }

func NewMessageRepo(db *sqlx.DB) *MessageRepo { return &MessageRepo{db: db} }

func (r *MessageRepo) Append(ctx context.Context, m domain.Message) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
	  INSERT INTO messages(id,sender_id,receiver_id,text,created_at,listing_id)
	  VALUES(?,?,?,?,?,?)`),
		m.ID, m.SenderID, m.ReceiverID, m.Text, m.CreatedAt, m.ListingID)
	return err
}

// Involving returns every message where userID is sender or receiver, in store order.
func (r *MessageRepo) Involving(ctx context.Context, userID string) ([]domain.Message, error) {
	out := []domain.Message{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT seq, id, sender_id, receiver_id, text, created_at, listing_id
	  FROM messages
	  WHERE sender_id = ? OR receiver_id = ?
	  ORDER BY seq`), userID, userID)
	return out, err
}

// Between returns the messages exchanged by exactly a and b.
func (r *MessageRepo) Between(ctx context.Context, a, b string) ([]domain.Message, error) {
	out := []domain.Message{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
	  SELECT seq, id, sender_id, receiver_id, text, created_at, listing_id
	  FROM messages
	  WHERE (sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)
	  ORDER BY created_at, seq`), a, b, b, a)
	return out, err
}
