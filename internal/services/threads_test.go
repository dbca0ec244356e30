package services_test

import (
	"reflect"
	"testing"

	"campusmarket/internal/domain"
	"campusmarket/internal/services"
)

func msg(seq int64, id, from, to string, at int64) domain.Message {
	return domain.Message{Seq: seq, ID: id, SenderID: from, ReceiverID: to, Text: id, CreatedAt: at}
}

func lookupOf(names ...string) services.ProfileLookup {
	known := map[string]bool{}
	for _, n := range names {
		known[n] = true
	}
	return func(id string) (domain.Profile, bool) {
		if !known[id] {
			return domain.Profile{}, false
		}
		return domain.Profile{ID: id, Name: "user " + id}, true
	}
}

func msgIDs(ms []domain.Message) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func TestBuildConversationsOnePerCounterpart(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "m1", "B", "A", 1000),
		msg(2, "m2", "A", "B", 2000),
		msg(3, "m3", "C", "A", 1500),
		msg(4, "m4", "B", "C", 9000), // not involving A
	}
	convs := services.BuildConversations(msgs, "A", lookupOf("B", "C"))
	if len(convs) != 2 {
		t.Fatalf("got %d conversations, want 2", len(convs))
	}
	// B's last message is newer than C's, so B comes first.
	if convs[0].CounterpartID != "B" || convs[0].LastMessage.ID != "m2" {
		t.Fatalf("first conversation = %+v", convs[0])
	}
	if convs[1].CounterpartID != "C" || convs[1].LastMessage.ID != "m3" {
		t.Fatalf("second conversation = %+v", convs[1])
	}
	if convs[0].Counterpart.Name != "user B" || convs[0].UnreadCount != 0 {
		t.Fatalf("counterpart profile not attached: %+v", convs[0])
	}
}

func TestBuildConversationsDropsUnresolvable(t *testing.T) {
	msgs := []domain.Message{
		msg(1, "m1", "ghost", "A", 1000),
		msg(2, "m2", "A", "B", 500),
	}
	convs := services.BuildConversations(msgs, "A", lookupOf("B"))
	if len(convs) != 1 || convs[0].CounterpartID != "B" {
		t.Fatalf("got %+v", convs)
	}
}

func TestBuildConversationsTiesPreferLaterSeq(t *testing.T) {
	msgs := []domain.Message{
		msg(7, "late", "B", "A", 1000),
		msg(3, "early", "A", "B", 1000),
	}
	convs := services.BuildConversations(msgs, "A", lookupOf("B"))
	if len(convs) != 1 || convs[0].LastMessage.ID != "late" {
		t.Fatalf("tie should resolve by seq, got %+v", convs)
	}

	// Same time and seq: the later input element wins.
	msgs = []domain.Message{msg(0, "x", "B", "A", 1000), msg(0, "y", "A", "B", 1000)}
	convs = services.BuildConversations(msgs, "A", lookupOf("B"))
	if convs[0].LastMessage.ID != "y" {
		t.Fatalf("equal keys should keep the later input, got %s", convs[0].LastMessage.ID)
	}
}

func TestBuildConversationsEmpty(t *testing.T) {
	if convs := services.BuildConversations(nil, "A", lookupOf()); len(convs) != 0 {
		t.Fatalf("got %+v", convs)
	}
}

func TestThreadMessagesOrdersAscending(t *testing.T) {
	msgs := []domain.Message{
		msg(3, "m3", "A", "B", 3000),
		msg(1, "m1", "B", "A", 1000),
		msg(9, "other", "A", "C", 2000),
		msg(5, "m2b", "B", "A", 2000),
		msg(4, "m2a", "A", "B", 2000),
	}
	got := services.ThreadMessages(msgs, "A", "B")
	if want := []string{"m1", "m2a", "m2b", "m3"}; !reflect.DeepEqual(msgIDs(got), want) {
		t.Fatalf("thread = %v, want %v", msgIDs(got), want)
	}
	for _, m := range got {
		if !(m.SenderID == "A" && m.ReceiverID == "B") && !(m.SenderID == "B" && m.ReceiverID == "A") {
			t.Fatalf("message %s does not belong to the pair", m.ID)
		}
	}
	if got := services.ThreadMessages(msgs, "A", "Z"); len(got) != 0 {
		t.Fatalf("unknown counterpart should give an empty thread, got %v", msgIDs(got))
	}
}
