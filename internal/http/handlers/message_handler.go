package handlers

import (
	"errors"
	"net/url"

	"campusmarket/internal/log"
	"campusmarket/internal/services"
	"campusmarket/internal/validate"

	"github.com/gofiber/fiber/v2"
)

type MessageHandler struct {
	Messages *services.MessageService
	Listings *services.ListingService
}

func (h *MessageHandler) selected(c *fiber.Ctx, raw string) (string, bool) {
	if raw == "" {
		return "", true
	}
	id, ok := validate.ID(raw)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "with"})
	}
	return id, ok
}

func (h *MessageHandler) Inbox(c *fiber.Ctx) error {
	with, ok := h.selected(c, c.Query("with"))
	if !ok {
		return notFound(c, "Conversation not found")
	}
	return h.renderInbox(c, with, "", fiber.StatusOK)
}

func (h *MessageHandler) renderInbox(c *fiber.Ctx, with, errMsg string, status int) error {
	u := currentUser(c)
	in, err := h.Messages.Inbox(c.UserContext(), u.ID, with)
	if err != nil {
		log.Error(c, "messages.inbox", err, nil)
		// Worst case is an empty inbox, not an error page.
		in = services.Inbox{}
	}
	data := fiber.Map{
		"Conversations": in.Conversations,
		"Counterpart":   in.Counterpart,
		"Thread":        in.Thread,
		"Err":           errMsg,
	}
	// "Message seller" links carry the listing the conversation is about.
	if id, ok := validate.ID(c.Query("listing", c.FormValue("listing_id"))); ok {
		if l, err := h.Listings.Get(id); err == nil && l.College == u.College {
			data["ListingID"] = l.ID
			data["ListingTitle"] = l.Title
		}
	}
	c.Status(status)
	return render(c, "messages", data)
}

func (h *MessageHandler) Send(c *fiber.Ctx) error {
	u := currentUser(c)
	to, ok := h.selected(c, c.FormValue("to"))
	if !ok {
		return notFound(c, "Conversation not found")
	}
	var listingID *string
	if raw := c.FormValue("listing_id"); raw != "" {
		if id, ok := validate.ID(raw); ok {
			listingID = &id
		}
	}

	_, err := h.Messages.Send(c.UserContext(), u.ID, to, c.FormValue("text"), listingID)
	switch {
	case err == nil:
		return c.Redirect("/messages?with=" + url.QueryEscape(to))
	case errors.Is(err, services.ErrEmptyMessage), errors.Is(err, services.ErrNoCounterpart),
		errors.Is(err, services.ErrSelfMessage), errors.Is(err, services.ErrMessageTooLong),
		errors.Is(err, services.ErrUnknownUser):
		log.Security(c, "messages.send.rejected", map[string]any{"to": to, "reason": err.Error()})
		return h.renderInbox(c, to, err.Error(), fiber.StatusBadRequest)
	default:
		return err
	}
}

func (h *MessageHandler) APIConversations(c *fiber.Ctx) error {
	u := currentUser(c)
	convs, err := h.Messages.Conversations(c.UserContext(), u.ID)
	if err != nil {
		log.Error(c, "messages.api.conversations", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load conversations")
	}
	return c.JSON(fiber.Map{"conversations": convs})
}

func (h *MessageHandler) APIThread(c *fiber.Ctx) error {
	u := currentUser(c)
	other, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "invalid user id")
	}
	thread, err := h.Messages.Thread(c.UserContext(), u.ID, other)
	if err != nil {
		log.Error(c, "messages.api.thread", err, nil)
		return jsonError(c, fiber.StatusInternalServerError, "could not load thread")
	}
	return c.JSON(fiber.Map{"messages": thread})
}
