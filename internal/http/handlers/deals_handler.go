package handlers

import (
	"campusmarket/internal/domain"
	"campusmarket/internal/log"
	"campusmarket/internal/services"
	"campusmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type DealsHandler struct {
	Deals *services.DealsService
}

var dealSorts = []string{services.SortPrice, services.SortDiscount, services.SortRating, services.SortNewest}

func dealCategoryNames() []string {
	out := make([]string, len(domain.DealCategories))
	for i, cat := range domain.DealCategories {
		out[i] = string(cat)
	}
	return out
}

// parseFilter reads category, store, min, max, sort and q. The returned
// string names the first invalid field.
func parseFilter(c *fiber.Ctx) (services.DealFilter, string) {
	f := services.DealFilter{Category: domain.All, Store: domain.All}

	if raw := c.Query("category"); raw != "" && raw != domain.All {
		v, ok := validate.OneOf(raw, dealCategoryNames()...)
		if !ok {
			return f, "category"
		}
		f.Category = v
	}
	if raw := c.Query("store"); raw != "" {
		v, ok := validate.Name(raw)
		if !ok {
			return f, "store"
		}
		f.Store = v
	}
	lo, ok := validate.OptionalPrice(c.Query("min"))
	if !ok {
		return f, "min"
	}
	hi, ok := validate.OptionalPrice(c.Query("max"))
	if !ok {
		return f, "max"
	}
	f.MinPrice, f.MaxPrice = lo, hi
	if raw := c.Query("sort"); raw != "" {
		v, ok := validate.OneOf(raw, dealSorts...)
		if !ok {
			return f, "sort"
		}
		f.SortBy = v
	}
	if raw := c.Query("q"); raw != "" {
		v, ok := validate.Q(raw)
		if !ok {
			return f, "q"
		}
		f.Search = v
	}
	return f, ""
}

// Page renders the deals browser. Forced refreshes go through the
// guarded POST /api/v1/deals/refresh only.
func (h *DealsHandler) Page(c *fiber.Ctx) error {
	f, bad := parseFilter(c)
	if bad != "" {
		log.Security(c, "validation.fail", map[string]any{"field": bad})
		c.Status(fiber.StatusBadRequest)
		return render(c, "deals", fiber.Map{
			"Categories": domain.DealCategories,
			"Filter":     f,
			"Deals":      []domain.Deal{},
			"Count":      0,
			"Err":        "Invalid " + bad + " filter",
		})
	}
	res := h.Deals.FetchDeals(c.UserContext(), false)
	data := fiber.Map{
		"Categories": domain.DealCategories,
		"Stores":     services.Stores(res.Deals),
		"Filter":     f,
		"TopPicks":   h.Deals.FetchTopPicks(c.UserContext()),
		"Cached":     res.Cached,
		"Notice":     res.Error,
	}
	deals := services.FilterDeals(res.Deals, f)
	data["Deals"] = deals
	data["Count"] = len(deals)
	return render(c, "deals", data)
}

// List is GET /api/v1/deals.
func (h *DealsHandler) List(c *fiber.Ctx) error {
	f, bad := parseFilter(c)
	if bad != "" {
		log.Security(c, "validation.fail", map[string]any{"field": bad})
		return jsonError(c, fiber.StatusBadRequest, "invalid "+bad)
	}
	res := h.Deals.FetchDeals(c.UserContext(), false)
	res.Deals = services.FilterDeals(res.Deals, f)
	return c.JSON(res)
}

func (h *DealsHandler) Top(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"deals": h.Deals.FetchTopPicks(c.UserContext())})
}

func (h *DealsHandler) ByCategory(c *fiber.Ctx) error {
	raw := c.Params("category")
	category := domain.All
	if raw != domain.All {
		v, ok := validate.OneOf(raw, dealCategoryNames()...)
		if !ok {
			return jsonError(c, fiber.StatusBadRequest, "unknown category")
		}
		category = v
	}
	return c.JSON(fiber.Map{"category": category, "deals": h.Deals.FetchByCategory(c.UserContext(), category)})
}

// Refresh is POST /api/v1/deals/refresh.
func (h *DealsHandler) Refresh(c *fiber.Ctx) error {
	res := h.Deals.RefreshDeals(c.UserContext())
	log.Audit(c, "deals.refresh", map[string]any{"source": res.Source, "count": len(res.Deals)})
	return c.JSON(res)
}
