package repos

import (
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// DriverFor maps a DSN to the sql driver that serves it.
// postgres:// and postgresql:// go to lib/pq, everything else is a sqlite file.
func DriverFor(dsn string) string {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return "postgres"
	}
	return "sqlite"
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	driver := DriverFor(dsn)
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// :memory: databases are per-connection
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure demo users, listings and messages exist (idempotent; safe to run every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedListings(db); err != nil {
		return nil, err
	}
	if err := seedMessages(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}
	schema := `
-- Users & Sessions
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  college TEXT NOT NULL,
  avatar_url TEXT,
  password_hash TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

CREATE TABLE IF NOT EXISTS sessions(
  id TEXT PRIMARY KEY,               -- same value as the 'sid' cookie
  user_id TEXT NULL REFERENCES users(id) ON DELETE SET NULL,
  created_at BIGINT NOT NULL,
  last_seen BIGINT
);
CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);

-- Listings
CREATE TABLE IF NOT EXISTS listings(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL CHECK (price >= 0),
  type TEXT NOT NULL CHECK (type IN ('buy','sell','rent')),
  category TEXT NOT NULL,
  images_json TEXT NOT NULL DEFAULT '[]',
  video_url TEXT,
  college TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_listings_college ON listings(college);
CREATE INDEX IF NOT EXISTS idx_listings_seller  ON listings(seller_id);

-- Messages (append-only)
CREATE TABLE IF NOT EXISTS messages(
  seq ` + serial + `,
  id TEXT NOT NULL UNIQUE,
  sender_id TEXT NOT NULL,
  receiver_id TEXT NOT NULL,
  text TEXT NOT NULL,
  created_at BIGINT NOT NULL,
  listing_id TEXT
);
CREATE INDEX IF NOT EXISTS idx_messages_sender   ON messages(sender_id);
CREATE INDEX IF NOT EXISTS idx_messages_receiver ON messages(receiver_id);

-- Deals
CREATE TABLE IF NOT EXISTS deals(
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price DOUBLE PRECISION NOT NULL,
  original_price DOUBLE PRECISION,
  discount_percentage INTEGER,
  image_url TEXT,
  store_name TEXT NOT NULL,
  category TEXT NOT NULL,
  affiliate_url TEXT NOT NULL,
  external_id TEXT NOT NULL,
  rating DOUBLE PRECISION,
  reviews_count INTEGER,
  is_featured BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL,
  expires_at BIGINT
);
CREATE INDEX IF NOT EXISTS idx_deals_created_at ON deals(created_at);
CREATE INDEX IF NOT EXISTS idx_deals_category   ON deals(category);
`
	if db.DriverName() == "sqlite" {
		schema = "PRAGMA foreign_keys = ON;\n" + schema
	}
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures the demo students exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, College, Hash string
	}
	mk := func(id, email, name, college, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), bcrypt.DefaultCost)
		return u{ID: id, Email: email, Name: name, College: college, Hash: string(h)}
	}

	users := []u{
		mk("u-alex", "alex.johnson@nyu.edu", "Alex Johnson", "New York University", "Passw0rd!"),
		mk("u-sarah", "sarah.chen@nyu.edu", "Sarah Chen", "New York University", "Passw0rd!"),
		mk("u-mike", "mike.rodriguez@nyu.edu", "Mike Rodriguez", "New York University", "Passw0rd!"),
		mk("u-priya", "priya.patel@mit.edu", "Priya Patel", "MIT", "Passw0rd!"),
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UnixMilli()
	for _, x := range users {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO users(id,email,name,college,password_hash,created_at)
			VALUES(?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`), x.ID, x.Email, x.Name, x.College, x.Hash, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func seedListings(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM listings`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo listings")

	base := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	rows := []struct {
		id, seller, title, desc, typ, cat, images string
		price                                     float64
		age                                       time.Duration
	}{
		{"l-macbook", "u-alex", "MacBook Pro 2021 - Excellent Condition",
			"Selling my MacBook Pro 14\" with M1 Pro chip. Barely used, comes with original charger and box.",
			"sell", "Electronics", `["https://images.unsplash.com/photo-1517336714731-489689fd1ca8"]`, 1899, 0},
		{"l-calculus", "u-sarah", "Calculus Textbook - 12th Edition",
			"Stewart Calculus textbook in great condition. No highlighting or writing.",
			"sell", "Books", `["https://images.unsplash.com/photo-1481627834876-b7833e8f5570"]`, 89, 19 * time.Hour},
		{"l-desk", "u-mike", "IKEA Desk - Perfect for Dorm",
			"White IKEA desk in excellent condition. Fits perfectly in dorm rooms.",
			"sell", "Furniture", `["https://images.unsplash.com/photo-1586023492125-27b2c045efd7"]`, 45, 49 * time.Hour},
		{"l-fridge", "u-sarah", "Mini Fridge for Rent - Semester",
			"Compact mini fridge, available for rent for the semester. Clean and works great!",
			"rent", "Appliances", `["https://images.unsplash.com/photo-1571175443880-49e1d25b2bc5"]`, 75, 68 * time.Hour},
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, r := range rows {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO listings(id,seller_id,title,description,price,type,category,images_json,college,created_at)
			SELECT ?,?,?,?,?,?,?,?,u.college,? FROM users u WHERE u.id = ?
		`), r.id, r.seller, r.title, r.desc, r.price, r.typ, r.cat, r.images, base.Add(-r.age).UnixMilli(), r.seller); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func seedMessages(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM messages`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	t0 := time.Date(2024, 1, 15, 16, 30, 0, 0, time.UTC)
	msgs := []struct {
		id, from, to, text string
		at                 time.Duration
	}{
		{"m-1", "u-sarah", "u-alex", "Hi! Is the MacBook still available?", 0},
		{"m-2", "u-alex", "u-sarah", "Yes, it is! Would you like to meet up to see it?", 5 * time.Minute},
		{"m-3", "u-sarah", "u-alex", "That sounds great! When would be a good time?", 10 * time.Minute},
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, m := range msgs {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO messages(id,sender_id,receiver_id,text,created_at,listing_id)
			VALUES(?,?,?,?,?,?)
		`), m.id, m.from, m.to, m.text, t0.Add(m.at).UnixMilli(), "l-macbook"); err != nil {
			return err
		}
	}
	return tx.Commit()
}
