package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"campusmarket/internal/config"
	"campusmarket/internal/http/handlers"
	"campusmarket/internal/repos"
	"campusmarket/internal/services"
)

// newTestApp wires the real handlers the way main does, minus throttling,
// against a seeded in-memory database.
func newTestApp(t *testing.T) (*fiber.App, *sqlx.DB) {
	t.Helper()
	cfg := config.Config{DBDSN: ":memory:", MediaDir: "../../web/media"}
	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	authSvc := &services.AuthService{Users: repos.NewUserRepo(db)}
	authH := &handlers.AuthHandler{Auth: authSvc}

	app := fiber.New(fiber.Config{Views: handlers.NewEngine("../../web/templates")})
	app.Server().MaxRequestBodySize = 1 << 20
	app.Use(requestid.New())
	app.Use(func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := authSvc.CurrentUser(sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	})
	app.Use(csrf.New(csrf.Config{KeyLookup: "form:csrf", CookieName: "csrf_", CookieSameSite: "Lax"}))

	deps := handlers.NewDeps(db, cfg, authSvc)
	requireUser := handlers.RequireUser(authSvc)

	app.Get("/login", authH.LoginForm)
	app.Post("/login", authH.Login)
	app.Get("/signup", authH.SignupForm)
	app.Post("/signup", authH.Signup)
	app.Post("/logout", authH.Logout)

	app.Get("/marketplace", requireUser, deps.ListingHandler.Marketplace)
	app.Get("/listings/new", requireUser, deps.ListingHandler.NewForm)
	app.Post("/listings/new", requireUser, deps.ListingHandler.Create)
	app.Get("/listing/:id", requireUser, deps.ListingHandler.Detail)
	app.Get("/messages", requireUser, deps.MessageHandler.Inbox)
	app.Post("/messages", requireUser, deps.MessageHandler.Send)
	app.Get("/profile", requireUser, deps.ProfileHandler.View)
	app.Post("/profile", requireUser, deps.ProfileHandler.Update)
	app.Get("/deals", deps.DealsHandler.Page)

	api := app.Group("/api/v1")
	api.Get("/deals", deps.DealsHandler.List)
	api.Get("/deals/top", deps.DealsHandler.Top)
	api.Get("/deals/category/:category", deps.DealsHandler.ByCategory)
	api.Post("/deals/refresh", handlers.RequireUserAPI(authSvc), deps.DealsHandler.Refresh)
	msgAPI := api.Group("/messages", handlers.RequireUserAPI(authSvc))
	msgAPI.Get("/conversations", deps.MessageHandler.APIConversations)
	msgAPI.Get("/thread/:id", deps.MessageHandler.APIThread)
	return app, db
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func csrfToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	tok := extractCookie(resp, "csrf_")
	if tok == "" {
		t.Fatal("csrf token missing")
	}
	return tok
}

// postForm sends a CSRF-protected form; sid may be empty.
func postForm(t *testing.T, app *fiber.App, path, tok, sid string, form url.Values) *http.Response {
	t.Helper()
	form.Set("csrf", tok)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: tok})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func get(t *testing.T, app *fiber.App, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// loginAs signs in one of the seeded students (password Passw0rd!) and
// returns the session id and CSRF token.
func loginAs(t *testing.T, app *fiber.App, email string) (sid, tok string) {
	t.Helper()
	tok = csrfToken(t, app)
	resp := postForm(t, app, "/login", tok, "", url.Values{"email": {email}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login as %s: status %d", email, resp.StatusCode)
	}
	sid = extractCookie(resp, "sid")
	if sid == "" {
		t.Fatalf("login as %s: no sid cookie", email)
	}
	return sid, tok
}
