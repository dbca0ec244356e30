package domain

type User struct {
	ID        string  `db:"id"`
	Email     string  `db:"email"`
	Name      string  `db:"name"`
	College   string  `db:"college"`
	AvatarURL *string `db:"avatar_url"`
	Hash      string  `db:"password_hash"`
	CreatedAt int64   `db:"created_at"`
}

// Profile is the public view of a user.
type Profile struct {
	ID        string  `db:"id" json:"id"`
	Name      string  `db:"name" json:"name"`
	College   string  `db:"college" json:"college"`
	AvatarURL *string `db:"avatar_url" json:"avatar_url,omitempty"`
}

func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, College: u.College, AvatarURL: u.AvatarURL}
}
