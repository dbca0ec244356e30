package services

import (
	"sort"

	"campusmarket/internal/domain"
)

// ProfileLookup resolves a user id to the profile shown in the inbox.
type ProfileLookup func(userID string) (domain.Profile, bool)

// counterpart returns the other party of m as seen by viewerID.
func counterpart(m domain.Message, viewerID string) (string, bool) {
	switch viewerID {
	case m.SenderID:
		return m.ReceiverID, true
	case m.ReceiverID:
		return m.SenderID, true
	}
	return "", false
}

// later reports whether a is more recent than b: by creation time, then by
// store sequence.
func later(a, b domain.Message) bool {
	if a.CreatedAt != b.CreatedAt {
		return a.CreatedAt > b.CreatedAt
	}
	return a.Seq > b.Seq
}

// BuildConversations groups the viewer's messages into one conversation per
// counterpart, newest conversation first. Counterparts lookup cannot resolve
// are dropped. Messages not involving the viewer are ignored.
func BuildConversations(messages []domain.Message, viewerID string, lookup ProfileLookup) []domain.Conversation {
	index := map[string]int{}
	var convs []domain.Conversation
	for _, m := range messages {
		other, ok := counterpart(m, viewerID)
		if !ok {
			continue
		}
		if i, seen := index[other]; seen {
			// Equal keys keep the later input element.
			if !later(convs[i].LastMessage, m) {
				convs[i].LastMessage = m
			}
			continue
		}
		index[other] = len(convs)
		convs = append(convs, domain.Conversation{CounterpartID: other, LastMessage: m})
	}

	out := make([]domain.Conversation, 0, len(convs))
	for _, c := range convs {
		p, ok := lookup(c.CounterpartID)
		if !ok {
			continue
		}
		c.Counterpart = p
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return later(out[i].LastMessage, out[j].LastMessage) })
	return out
}

// ThreadMessages returns the messages exchanged by exactly viewerID and
// counterpartID, oldest first. Ties fall back to sequence, then input order.
func ThreadMessages(messages []domain.Message, viewerID, counterpartID string) []domain.Message {
	out := []domain.Message{}
	for _, m := range messages {
		if (m.SenderID == viewerID && m.ReceiverID == counterpartID) ||
			(m.SenderID == counterpartID && m.ReceiverID == viewerID) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].Seq < out[j].Seq
	})
	return out
}
