package handlers

import (
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"campusmarket/internal/domain"
	"campusmarket/internal/log"
	"campusmarket/internal/services"
	"campusmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	Listings *services.ListingService
	Deals    *services.DealsService
}

// Home is the landing page; it teases the top deals.
func (h *ListingHandler) Home(c *fiber.Ctx) error {
	top := h.Deals.FetchTopPicks(c.UserContext())
	if len(top) > 3 {
		top = top[:3]
	}
	return render(c, "home", fiber.Map{"TopDeals": top})
}

func (h *ListingHandler) Marketplace(c *fiber.Ctx) error {
	u := currentUser(c)
	rawQ := c.Query("q")
	q := ""
	if strings.TrimSpace(rawQ) != "" {
		v, ok := validate.Q(rawQ)
		if !ok {
			log.Security(c, "validation.fail", map[string]any{"field": "q", "value": rawQ})
			return c.Status(fiber.StatusBadRequest).Render("marketplace", fiber.Map{
				"User": u, "Listings": []domain.Listing{}, "Count": 0, "Categories": domain.ListingCategories,
				"Q": "", "Category": domain.All, "Type": domain.All, "CSRFToken": c.Cookies("csrf_"),
				"Err": "Enter a valid keyword (letters/numbers only)",
			})
		}
		q = v
	}
	category := c.Query("category", domain.All)
	typ := c.Query("type", domain.All)

	listings, err := h.Listings.Browse(u.College, q, category, typ)
	if err != nil {
		log.Error(c, "marketplace.error", err, nil)
		return c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{"Message": "Could not load listings. Please retry."})
	}
	return render(c, "marketplace", fiber.Map{
		"Listings": listings, "Count": len(listings),
		"Q": q, "Category": category, "Type": typ,
		"Categories": domain.ListingCategories,
	})
}

func (h *ListingHandler) NewForm(c *fiber.Ctx) error {
	return render(c, "listing_new", fiber.Map{"Categories": domain.ListingCategories, "Type": "sell"})
}

func (h *ListingHandler) Create(c *fiber.Ctx) error {
	u := currentUser(c)
	imgs, _ := strconv.Atoi(c.FormValue("images", "0"))
	in := services.ListingInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Price:       c.FormValue("price"),
		Type:        c.FormValue("type"),
		Category:    c.FormValue("category"),
		ImageCount:  imgs,
		VideoURL:    c.FormValue("video_url"),
	}
	l, err := h.Listings.Create(u, in)
	if err != nil {
		if errors.Is(err, services.ErrInvalidListing) {
			log.Security(c, "validation.fail", map[string]any{"form": "listing", "reason": err.Error()})
			return c.Status(fiber.StatusBadRequest).Render("listing_new", fiber.Map{
				"User": u, "CSRFToken": c.Cookies("csrf_"), "Categories": domain.ListingCategories,
				"Err": strings.TrimPrefix(err.Error(), services.ErrInvalidListing.Error()+": "),
				"In":  in, "Type": in.Type,
			})
		}
		return err
	}
	log.Audit(c, "listing.create", map[string]any{"listing_id": l.ID, "type": string(l.Type)})
	return c.Redirect("/listing/" + l.ID)
}

func (h *ListingHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "listing"})
		return notFound(c, "This listing is no longer available")
	}
	l, err := h.Listings.Get(id)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error(c, "listing.get", err, map[string]any{"listing_id": id})
		}
		return notFound(c, "This listing is no longer available")
	}
	u := currentUser(c)
	if l.College != u.College {
		log.Security(c, "access.denied.listing", map[string]any{"listing_id": id})
		return notFound(c, "This listing is no longer available")
	}
	return render(c, "listing", fiber.Map{"L": l, "Own": l.SellerID == u.ID})
}
