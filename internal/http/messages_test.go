package handlers_test

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"campusmarket/internal/domain"
)

func TestSendMessageFlow(t *testing.T) {
	app, _ := newTestApp(t)
	sid, tok := loginAs(t, app, "alex.johnson@nyu.edu")

	// "Message seller" opens an empty thread with the listing context.
	resp := get(t, app, "/messages?with=u-mike&listing=l-desk", sid)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("inbox: %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "IKEA Desk") || !strings.Contains(string(body), "Mike Rodriguez") {
		t.Fatal("inbox should show the selected seller and listing")
	}

	resp = postForm(t, app, "/messages", tok, sid, url.Values{"to": {"u-mike"}, "text": {"Is the desk still available?"}, "listing_id": {"l-desk"}})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/messages?with=u-mike" {
		t.Fatalf("send: %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}

	thread := decode[struct {
		Messages []domain.Message `json:"messages"`
	}](t, get(t, app, "/api/v1/messages/thread/u-mike", sid))
	if len(thread.Messages) != 1 || thread.Messages[0].Text != "Is the desk still available?" {
		t.Fatalf("thread = %+v", thread.Messages)
	}

	convs := decode[struct {
		Conversations []domain.Conversation `json:"conversations"`
	}](t, get(t, app, "/api/v1/messages/conversations", sid))
	if len(convs.Conversations) != 2 || convs.Conversations[0].CounterpartID != "u-mike" {
		t.Fatalf("conversations = %+v", convs.Conversations)
	}
}

func TestSendMessageRejectsEmptyText(t *testing.T) {
	app, db := newTestApp(t)
	sid, tok := loginAs(t, app, "sarah.chen@nyu.edu")

	var before, after int
	if err := db.Get(&before, `SELECT COUNT(*) FROM messages`); err != nil {
		t.Fatal(err)
	}
	resp := postForm(t, app, "/messages", tok, sid, url.Values{"to": {"u-alex"}, "text": {"   "}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty message: expected 400, got %d", resp.StatusCode)
	}
	if err := db.Get(&after, `SELECT COUNT(*) FROM messages`); err != nil {
		t.Fatal(err)
	}
	if after != before {
		t.Fatal("empty message was stored")
	}
}

func TestMessagesAPIRequiresLogin(t *testing.T) {
	app, _ := newTestApp(t)
	for _, path := range []string{"/api/v1/messages/conversations", "/api/v1/messages/thread/u-alex"} {
		resp := get(t, app, path, "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", path, resp.StatusCode)
		}
	}
}
