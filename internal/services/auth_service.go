package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"campusmarket/internal/domain"
	"campusmarket/internal/repos"
	"campusmarket/internal/validate"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrBadCreds         = errors.New("invalid email or password")
	ErrNotEdu           = errors.New("please use a valid .edu email address")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrWeakPassword     = errors.New("password must be 8-64 characters with upper, lower, digit and symbol")
	ErrBadName          = errors.New("please enter your name")
	ErrEmailTaken       = errors.New("an account with this email already exists")
)

var knownColleges = map[string]string{
	"nyu.edu":      "New York University",
	"columbia.edu": "Columbia University",
	"harvard.edu":  "Harvard University",
	"mit.edu":      "MIT",
	"stanford.edu": "Stanford University",
	"berkeley.edu": "UC Berkeley",
	"ucla.edu":     "UCLA",
	"yale.edu":     "Yale University",
}

// CollegeFromEmail names the school behind an .edu address. Subdomains such
// as cs.nyu.edu resolve to their parent school.
func CollegeFromEmail(email string) string {
	_, domain, ok := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	if !ok {
		return ""
	}
	labels := strings.Split(domain, ".")
	if len(labels) >= 2 {
		domain = labels[len(labels)-2] + "." + labels[len(labels)-1]
	}
	if name, ok := knownColleges[domain]; ok {
		return name
	}
	return strings.ToUpper(strings.TrimSuffix(domain, ".edu"))
}

type AuthService struct {
	Users *repos.UserRepo
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
	College  string
}

// Signup creates an account. Only .edu addresses are accepted.
func (s *AuthService) Signup(in SignupInput) (*domain.User, error) {
	email, ok := validate.EduEmail(in.Email)
	if !ok {
		return nil, ErrNotEdu
	}
	name, ok := validate.Name(in.Name)
	if !ok {
		return nil, ErrBadName
	}
	if in.Password != in.Confirm {
		return nil, ErrPasswordMismatch
	}
	if !validate.Password(in.Password) {
		return nil, ErrWeakPassword
	}
	college, ok := validate.Name(in.College)
	if !ok {
		college = CollegeFromEmail(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &domain.User{
		ID:      uuid.NewString(),
		Email:   email,
		Name:    name,
		College: college,
		Hash:    string(hash),
	}
	if err := s.Users.Create(u); err != nil {
		if errors.Is(err, repos.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// StartSession binds sid to a freshly signed-up user.
func (s *AuthService) StartSession(sid string, u *domain.User) error {
	return s.Users.BindSession(sid, u.ID)
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

func (s *AuthService) UpdateProfile(userID, name, college string) (*domain.User, error) {
	n, ok := validate.Name(name)
	if !ok {
		return nil, ErrBadName
	}
	c, ok := validate.Name(college)
	if !ok {
		return nil, fmt.Errorf("please enter your college")
	}
	if err := s.Users.UpdateProfile(userID, n, c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("update profile: user %s not found", userID)
		}
		return nil, err
	}
	return s.Users.ByID(userID)
}
