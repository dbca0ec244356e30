package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"campusmarket/internal/domain"
	applog "campusmarket/internal/log"
	"campusmarket/internal/metrics"

	"github.com/google/uuid"
)

const maxMessageLen = 2000

var (
	ErrEmptyMessage   = errors.New("message text is empty")
	ErrMessageTooLong = errors.New("message text is too long")
	ErrNoCounterpart  = errors.New("no recipient selected")
	ErrSelfMessage    = errors.New("cannot message yourself")
	ErrUnknownUser    = errors.New("recipient does not exist")
)

// MessageStore is the append-only message log.
type MessageStore interface {
	Append(ctx context.Context, m domain.Message) error
	Involving(ctx context.Context, userID string) ([]domain.Message, error)
	Between(ctx context.Context, a, b string) ([]domain.Message, error)
}

type ProfileSource interface {
	Profiles(ids []string) (map[string]domain.Profile, error)
}

type MessageService struct {
	Messages MessageStore
	Users    ProfileSource
	Now      func() time.Time
}

func NewMessageService(messages MessageStore, users ProfileSource) *MessageService {
	return &MessageService{Messages: messages, Users: users, Now: time.Now}
}

// Inbox is the conversation list plus the selected thread.
type Inbox struct {
	Conversations []domain.Conversation
	Counterpart   *domain.Profile
	Thread        []domain.Message
}

// Inbox loads the viewer's conversations. selected picks the open thread; when
// empty the most recent conversation is opened. A selected user with no
// history yet still gets an (empty) thread so a first message can be sent.
func (s *MessageService) Inbox(ctx context.Context, viewerID, selected string) (Inbox, error) {
	msgs, err := s.Messages.Involving(ctx, viewerID)
	if err != nil {
		return Inbox{}, fmt.Errorf("load messages: %w", err)
	}

	ids := []string{}
	seen := map[string]bool{}
	for _, m := range msgs {
		if other, ok := counterpart(m, viewerID); ok && !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	if selected != "" && selected != viewerID && !seen[selected] {
		ids = append(ids, selected)
	}
	profiles, err := s.Users.Profiles(ids)
	if err != nil {
		return Inbox{}, fmt.Errorf("load profiles: %w", err)
	}
	lookup := func(id string) (domain.Profile, bool) {
		p, ok := profiles[id]
		return p, ok
	}

	in := Inbox{Conversations: BuildConversations(msgs, viewerID, lookup), Thread: []domain.Message{}}
	if selected == "" && len(in.Conversations) > 0 {
		selected = in.Conversations[0].CounterpartID
	}
	if p, ok := lookup(selected); ok && selected != viewerID {
		in.Counterpart = &p
		in.Thread = ThreadMessages(msgs, viewerID, selected)
	}
	return in, nil
}

// Conversations is the JSON view of the conversation list.
func (s *MessageService) Conversations(ctx context.Context, viewerID string) ([]domain.Conversation, error) {
	in, err := s.Inbox(ctx, viewerID, "")
	if err != nil {
		return nil, err
	}
	return in.Conversations, nil
}

// Thread reads the two-party thread straight from the store.
func (s *MessageService) Thread(ctx context.Context, viewerID, counterpartID string) ([]domain.Message, error) {
	msgs, err := s.Messages.Between(ctx, viewerID, counterpartID)
	if err != nil {
		return nil, fmt.Errorf("load thread: %w", err)
	}
	return ThreadMessages(msgs, viewerID, counterpartID), nil
}

// Send appends a message and returns the thread as re-read from the store.
// Rejected input writes nothing.
func (s *MessageService) Send(ctx context.Context, viewerID, counterpartID, text string, listingID *string) ([]domain.Message, error) {
	text = strings.TrimSpace(text)
	counterpartID = strings.TrimSpace(counterpartID)
	switch {
	case counterpartID == "":
		return nil, ErrNoCounterpart
	case text == "":
		return nil, ErrEmptyMessage
	case utf8.RuneCountInString(text) > maxMessageLen:
		return nil, ErrMessageTooLong
	case counterpartID == viewerID:
		return nil, ErrSelfMessage
	}
	profiles, err := s.Users.Profiles([]string{counterpartID})
	if err != nil {
		return nil, fmt.Errorf("resolve recipient: %w", err)
	}
	if _, ok := profiles[counterpartID]; !ok {
		return nil, ErrUnknownUser
	}
	if listingID != nil && strings.TrimSpace(*listingID) == "" {
		listingID = nil
	}

	m := domain.Message{
		ID:         uuid.NewString(),
		SenderID:   viewerID,
		ReceiverID: counterpartID,
		Text:       text,
		CreatedAt:  s.Now().UnixMilli(),
		ListingID:  listingID,
	}
	if err := s.Messages.Append(ctx, m); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	metrics.MessagesSent.Inc()
	applog.Info(nil, "messages.sent", map[string]any{"from": viewerID, "to": counterpartID, "id": m.ID})

	return s.Thread(ctx, viewerID, counterpartID)
}
