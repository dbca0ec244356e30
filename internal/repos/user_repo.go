package repos

import (
	"database/sql"
	"errors"
	"time"

	"campusmarket/internal/domain"

	"github.com/jmoiron/sqlx"
)

var ErrEmailTaken = errors.New("email already registered")

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = `id,email,name,college,avatar_url,password_hash,created_at`

func (r *UserRepo) ByEmail(email string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE LOWER(email)=LOWER(?)`), email)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) ByID(id string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`SELECT `+userCols+` FROM users WHERE id=?`), id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user; a duplicate email yields ErrEmailTaken.
func (r *UserRepo) Create(u *domain.User) error {
	if _, err := r.ByEmail(u.Email); err == nil {
		return ErrEmailTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = time.Now().UnixMilli()
	}
	_, err := r.DB.Exec(r.DB.Rebind(`
		INSERT INTO users(id,email,name,college,avatar_url,password_hash,created_at)
		VALUES(?,?,?,?,?,?,?)`),
		u.ID, u.Email, u.Name, u.College, u.AvatarURL, u.Hash, u.CreatedAt)
	return err
}

func (r *UserRepo) UpdateProfile(id, name, college string) error {
	res, err := r.DB.Exec(r.DB.Rebind(`UPDATE users SET name=?, college=? WHERE id=?`), name, college, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Profiles resolves public profiles for the given ids. Unknown ids are absent from the map.
func (r *UserRepo) Profiles(ids []string) (map[string]domain.Profile, error) {
	out := make(map[string]domain.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(`SELECT id,name,college,avatar_url FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return nil, err
	}
	var rows []domain.Profile
	if err := r.DB.Select(&rows, r.DB.Rebind(query), args...); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

func (r *UserRepo) BindSession(sid, userID string) error {
	now := time.Now().UnixMilli()
	_, err := r.DB.Exec(r.DB.Rebind(`INSERT INTO sessions(id,user_id,created_at,last_seen)
                          VALUES(?,?,?,?)
                          ON CONFLICT(id) DO UPDATE SET user_id=excluded.user_id,last_seen=excluded.last_seen`), sid, userID, now, now)
	return err
}

func (r *UserRepo) SessionUser(sid string) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, r.DB.Rebind(`
      SELECT u.id,u.email,u.name,u.college,u.avatar_url,u.password_hash,u.created_at
      FROM sessions s
      JOIN users u ON u.id=s.user_id
      WHERE s.id=?`), sid)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepo) UnbindSession(sid string) error {
	_, err := r.DB.Exec(r.DB.Rebind(`UPDATE sessions SET user_id=NULL,last_seen=? WHERE id=?`), time.Now().UnixMilli(), sid)
	return err
}
