package handlers

import (
	"errors"
	"time"

	"campusmarket/internal/log"
	"campusmarket/internal/services"
	"campusmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type AuthHandler struct {
	Auth          *services.AuthService
	SecureCookies bool
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *fiber.Cookie {
	return &fiber.Cookie{
		Name:     "sid",
		Value:    value,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   h.SecureCookies,
		Expires:  expires,
	}
}

func (h *AuthHandler) ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(h.sessionCookie(sid, time.Time{}))
	}
	return sid
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) loginFail(c *fiber.Ctx, email, reason string) error {
	log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
	return c.Status(fiber.StatusUnauthorized).Render("login", fiber.Map{
		"Err": "Invalid email or password", "Email": email, "CSRFToken": c.Cookies("csrf_"),
	})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	if _, ok := validate.Email(email); !ok {
		return h.loginFail(c, email, "bad_format")
	}
	if len(pass) == 0 || len(pass) > 64 {
		return h.loginFail(c, email, "bad_password_format")
	}

	// Rotate the session id on login.
	sid := uuid.NewString()
	if _, err := h.Auth.Login(sid, email, pass); err != nil {
		return h.loginFail(c, email, "bad_credentials")
	}
	c.Cookie(h.sessionCookie(sid, time.Time{}))

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/marketplace")
}

func (h *AuthHandler) SignupForm(c *fiber.Ctx) error {
	return render(c, "signup", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	in := services.SignupInput{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Confirm:  c.FormValue("confirm"),
		College:  c.FormValue("college"),
	}
	u, err := h.Auth.Signup(in)
	if err != nil {
		msg := err.Error()
		status := fiber.StatusBadRequest
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			status = fiber.StatusConflict
		case errors.Is(err, services.ErrNotEdu), errors.Is(err, services.ErrPasswordMismatch),
			errors.Is(err, services.ErrWeakPassword), errors.Is(err, services.ErrBadName):
		default:
			log.Error(c, "auth.signup.error", err, nil)
			msg = "Could not create your account. Please retry."
			status = fiber.StatusInternalServerError
		}
		log.Security(c, "auth.signup.fail", map[string]any{"email": in.Email, "reason": msg})
		return c.Status(status).Render("signup", fiber.Map{
			"Err": msg, "Name": in.Name, "Email": in.Email, "College": in.College, "CSRFToken": c.Cookies("csrf_"),
		})
	}

	sid := uuid.NewString()
	if err := h.Auth.StartSession(sid, u); err != nil {
		log.Error(c, "auth.signup.session", err, nil)
		return c.Redirect("/login")
	}
	c.Cookie(h.sessionCookie(sid, time.Time{}))
	log.Audit(c, "auth.signup.success", map[string]any{"email": u.Email, "college": u.College})
	return c.Redirect("/marketplace")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := h.ensureSID(c)
	_ = h.Auth.Logout(sid)
	// Expire cookie
	c.Cookie(h.sessionCookie("", time.Now().Add(-1*time.Hour)))
	log.Audit(c, "auth.logout", map[string]any{"sid": sid})
	return c.Redirect("/")
}
