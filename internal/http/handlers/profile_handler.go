package handlers

import (
	"campusmarket/internal/domain"
	"campusmarket/internal/log"
	"campusmarket/internal/services"

	"github.com/gofiber/fiber/v2"
)

type ProfileHandler struct {
	Auth     *services.AuthService
	Listings *services.ListingService
}

func (h *ProfileHandler) page(c *fiber.Ctx, u *domain.User, errMsg, okMsg string) error {
	mine, err := h.Listings.ListBySeller(u.ID)
	if err != nil {
		log.Error(c, "profile.listings", err, nil)
		mine = []domain.Listing{}
	}
	return render(c, "profile", fiber.Map{"User": u, "Listings": mine, "Err": errMsg, "Saved": okMsg})
}

func (h *ProfileHandler) View(c *fiber.Ctx) error {
	return h.page(c, currentUser(c), "", "")
}

func (h *ProfileHandler) Update(c *fiber.Ctx) error {
	u := currentUser(c)
	updated, err := h.Auth.UpdateProfile(u.ID, c.FormValue("name"), c.FormValue("college"))
	if err != nil {
		log.Security(c, "profile.update.fail", map[string]any{"reason": err.Error()})
		c.Status(fiber.StatusBadRequest)
		return h.page(c, u, err.Error(), "")
	}
	c.Locals("user", updated)
	log.Audit(c, "profile.update", map[string]any{"college": updated.College})
	return h.page(c, updated, "", "Profile updated")
}
