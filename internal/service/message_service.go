package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
)

// Notifier pushes a persisted message to the chat's connected members.
// Implemented by the realtime fan-out; declared here so the package does
// not depend on it.
type Notifier interface {
	Publish(chatID string, message *entity.Message)
}

type MessageService interface {
	Create(chatID, authorID, text string) (*entity.Message, error)
	ListForChat(chatID string) ([]*entity.Message, error)

	// ProcessInbound is the channel-side entry point. Same flow as
	// Create; sending into a chat the author soft-left revives the
	// membership before the message is stored.
	ProcessInbound(chatID, authorID, text string) (*entity.Message, error)
}

type messageService struct {
	messages    repository.MessageRepository
	memberships repository.MembershipRepository
	chats       repository.ChatRepository
	notifier    Notifier
	logger      logging.Logger
}

func NewMessageService(messages repository.MessageRepository, memberships repository.MembershipRepository, chats repository.ChatRepository, notifier Notifier, logger logging.Logger) MessageService {
	return &messageService{
		messages:    messages,
		memberships: memberships,
		chats:       chats,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *messageService) Logf(format string, v ...any) {
	s.logger.Logf(format, v...)
}

func (s *messageService) Create(chatID, authorID, text string) (*entity.Message, error) {
	member, err := s.memberships.Get(chatID, authorID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotMember) {
			// Distinguish "no such chat" from "not in this chat".
			if _, kindErr := s.chats.GetKind(chatID); errors.Is(kindErr, apperr.ErrChatNotFound) {
				return nil, apperr.ErrChatNotFound
			}
		}
		return nil, err
	}

	if member.Removed {
		if err := s.memberships.SetRemoved(chatID, authorID, false); err != nil {
			return nil, err
		}
		s.Logf("membership of %s in chat %s revived by sending", authorID, chatID)
	}

	message := &entity.Message{
		ID:        uuid.New().String(),
		ChatID:    chatID,
		AuthorID:  authorID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Create(message); err != nil {
		return nil, err
	}

	if err := s.chats.SetLastMessage(chatID, message.ID); err != nil {
		s.Logf("could not record last message of chat %s: %v", chatID, err)
	}

	s.notifier.Publish(chatID, message)
	return message, nil
}

func (s *messageService) ListForChat(chatID string) ([]*entity.Message, error) {
	if _, err := s.chats.GetKind(chatID); err != nil {
		return nil, err
	}
	return s.messages.GetByChat(chatID)
}

func (s *messageService) ProcessInbound(chatID, authorID, text string) (*entity.Message, error) {
	return s.Create(chatID, authorID, text)
}
