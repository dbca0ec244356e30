package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"campusmarket/internal/repos"
	"campusmarket/internal/services"

	"github.com/jmoiron/sqlx"
)

// memdb opens a seeded in-memory database (demo students, listings and the
// Sarah/Alex conversation).
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newMessageService(t *testing.T) (*services.MessageService, *sqlx.DB) {
	t.Helper()
	db := memdb(t)
	svc := services.NewMessageService(repos.NewMessageRepo(db), repos.NewUserRepo(db))
	clock := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	svc.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return svc, db
}

func countMessages(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM messages`); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestInboxDefaultsToMostRecentConversation(t *testing.T) {
	svc, _ := newMessageService(t)
	ctx := context.Background()

	in, err := svc.Inbox(ctx, "u-alex", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Conversations) != 1 || in.Conversations[0].CounterpartID != "u-sarah" {
		t.Fatalf("conversations = %+v", in.Conversations)
	}
	if in.Counterpart == nil || in.Counterpart.Name != "Sarah Chen" {
		t.Fatalf("counterpart = %+v", in.Counterpart)
	}
	if len(in.Thread) != 3 || in.Thread[0].ID != "m-1" || in.Thread[2].ID != "m-3" {
		t.Fatalf("thread = %+v", in.Thread)
	}
}

func TestInboxSelectedWithoutHistory(t *testing.T) {
	svc, _ := newMessageService(t)
	in, err := svc.Inbox(context.Background(), "u-alex", "u-mike")
	if err != nil {
		t.Fatal(err)
	}
	if in.Counterpart == nil || in.Counterpart.ID != "u-mike" {
		t.Fatalf("selected user should resolve, got %+v", in.Counterpart)
	}
	if len(in.Thread) != 0 {
		t.Fatalf("thread should be empty, got %d", len(in.Thread))
	}
	if len(in.Conversations) != 1 {
		t.Fatalf("selecting a user must not invent a conversation, got %d", len(in.Conversations))
	}
}

func TestSendAppendsAndRereadsThread(t *testing.T) {
	svc, db := newMessageService(t)
	ctx := context.Background()
	listing := "l-desk"

	thread, err := svc.Send(ctx, "u-alex", "u-mike", "  Is the desk still available?  ", &listing)
	if err != nil {
		t.Fatal(err)
	}
	if len(thread) != 1 || thread[0].Text != "Is the desk still available?" || thread[0].Seq == 0 {
		t.Fatalf("thread after send = %+v", thread)
	}
	if thread[0].ListingID == nil || *thread[0].ListingID != "l-desk" {
		t.Fatalf("listing context lost: %+v", thread[0].ListingID)
	}

	if _, err := svc.Send(ctx, "u-mike", "u-alex", "Yes, come by tomorrow", nil); err != nil {
		t.Fatal(err)
	}
	if n := countMessages(t, db); n != 5 {
		t.Fatalf("messages = %d, want 5", n)
	}

	convs, err := svc.Conversations(ctx, "u-alex")
	if err != nil {
		t.Fatal(err)
	}
	if len(convs) != 2 || convs[0].CounterpartID != "u-mike" {
		t.Fatalf("newest conversation should be first, got %+v", convs)
	}
}

func TestSendRejectsWithoutWriting(t *testing.T) {
	svc, db := newMessageService(t)
	ctx := context.Background()
	before := countMessages(t, db)

	cases := []struct {
		name, to, text string
		want           error
	}{
		{"empty text", "u-sarah", "", services.ErrEmptyMessage},
		{"whitespace text", "u-sarah", " \n\t ", services.ErrEmptyMessage},
		{"no counterpart", "", "hello", services.ErrNoCounterpart},
		{"self", "u-alex", "hello", services.ErrSelfMessage},
		{"unknown user", "u-nobody", "hello", services.ErrUnknownUser},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Send(ctx, "u-alex", tc.to, tc.text, nil)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
	if after := countMessages(t, db); after != before {
		t.Fatalf("rejected sends wrote %d messages", after-before)
	}
}

func TestThreadIsScopedToPair(t *testing.T) {
	svc, _ := newMessageService(t)
	ctx := context.Background()
	if _, err := svc.Send(ctx, "u-priya", "u-sarah", "Hi from MIT", nil); err != nil {
		t.Fatal(err)
	}
	thread, err := svc.Thread(ctx, "u-sarah", "u-alex")
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range thread {
		if m.SenderID == "u-priya" || m.ReceiverID == "u-priya" {
			t.Fatalf("foreign message %s leaked into thread", m.ID)
		}
	}
	if len(thread) != 3 {
		t.Fatalf("thread length = %d, want 3", len(thread))
	}
}

func TestSendLimitCountsCharacters(t *testing.T) {
	svc, db := newMessageService(t)
	ctx := context.Background()
	before := countMessages(t, db)

	// 2000 three-byte runes fit; one more does not.
	if _, err := svc.Send(ctx, "u-alex", "u-mike", strings.Repeat("桌", 2000), nil); err != nil {
		t.Fatalf("2000 characters should be accepted: %v", err)
	}
	if _, err := svc.Send(ctx, "u-alex", "u-mike", strings.Repeat("桌", 2001), nil); !errors.Is(err, services.ErrMessageTooLong) {
		t.Fatalf("2001 characters: err = %v, want ErrMessageTooLong", err)
	}
	if n := countMessages(t, db); n != before+1 {
		t.Fatalf("stored %d messages, want %d", n, before+1)
	}
}
