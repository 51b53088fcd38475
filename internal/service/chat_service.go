package service

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
)

type ChatService interface {
	CreatePrivate(creatorID, peerID string) (*entity.Chat, error)
	CreateGroup(creatorID, name, avatar string, memberIDs []string) (*entity.Chat, error)

	Get(chatID string) (*entity.Chat, error)
	ListForUser(userID string) ([]*entity.Chat, error)

	// Leave soft-removes the caller, or hard-deletes the chat when the
	// caller was the last active member. Returns true when the chat was
	// deleted.
	Leave(chatID, userID string) (bool, error)
	Restore(chatID, userID string) (*entity.Chat, error)

	UpdateGroup(chatID, actorID string, name, avatar *string) (*entity.Chat, error)
	AddMember(chatID, actorID, newUserID string) (*entity.Chat, error)
}

type chatService struct {
	chats       repository.ChatRepository
	memberships repository.MembershipRepository
	users       repository.UserRepository
	logger      logging.Logger
}

func NewChatService(chats repository.ChatRepository, memberships repository.MembershipRepository, users repository.UserRepository, logger logging.Logger) ChatService {
	return &chatService{
		chats:       chats,
		memberships: memberships,
		users:       users,
		logger:      logger,
	}
}

func (c *chatService) Logf(format string, v ...any) {
	c.logger.Logf(format, v...)
}

func (c *chatService) CreatePrivate(creatorID, peerID string) (*entity.Chat, error) {
	if _, err := c.users.GetByID(peerID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	chat := &entity.Chat{
		ID:        uuid.New().String(),
		Kind:      entity.ChatKindPrivate,
		CreatedBy: creatorID,
		CreatedAt: now,
	}
	members := []entity.ChatMember{
		{ChatID: chat.ID, UserID: creatorID, JoinedAt: now},
		{ChatID: chat.ID, UserID: peerID, JoinedAt: now},
	}
	if err := c.chats.Create(chat, members); err != nil {
		return nil, err
	}

	c.Logf("private chat %s created between %s and %s", chat.ID, creatorID, peerID)
	return c.chats.GetByID(chat.ID)
}

func (c *chatService) CreateGroup(creatorID, name, avatar string, memberIDs []string) (*entity.Chat, error) {
	memberIDs = lo.Uniq(memberIDs)
	if !lo.Contains(memberIDs, creatorID) {
		return nil, apperr.ErrNotMember
	}

	now := time.Now().UTC()
	chat := &entity.Chat{
		ID:        uuid.New().String(),
		Kind:      entity.ChatKindGroup,
		Name:      name,
		Avatar:    avatar,
		CreatedBy: creatorID,
		CreatedAt: now,
	}
	members := lo.Map(memberIDs, func(userID string, _ int) entity.ChatMember {
		return entity.ChatMember{ChatID: chat.ID, UserID: userID, JoinedAt: now}
	})
	if err := c.chats.Create(chat, members); err != nil {
		return nil, err
	}

	c.Logf("group chat %s created by %s with %d members", chat.ID, creatorID, len(members))
	return c.chats.GetByID(chat.ID)
}

func (c *chatService) Get(chatID string) (*entity.Chat, error) {
	return c.chats.GetByID(chatID)
}

// ListForUser sorts by latest message, newest chat first; chats without
// messages sink to the bottom.
func (c *chatService) ListForUser(userID string) ([]*entity.Chat, error) {
	chats, err := c.chats.GetForUser(userID)
	if err != nil {
		return nil, err
	}

	lastAt := func(chat *entity.Chat) time.Time {
		if len(chat.Messages) == 0 {
			return time.Time{}
		}
		return chat.Messages[len(chat.Messages)-1].CreatedAt
	}
	sort.Slice(chats, func(i, j int) bool {
		return lastAt(chats[i]).After(lastAt(chats[j]))
	})
	return chats, nil
}

func (c *chatService) Leave(chatID, userID string) (bool, error) {
	member, err := c.memberships.Get(chatID, userID)
	if err != nil {
		return false, err
	}

	active, err := c.memberships.CountActive(chatID)
	if err != nil {
		return false, err
	}

	// When other active members remain the chat survives and the row
	// is only flagged; the last one out takes the chat with them.
	othersRemain := active > 1 || (member.Removed && active > 0)
	if othersRemain {
		if err := c.memberships.SetRemoved(chatID, userID, true); err != nil {
			return false, err
		}
		c.Logf("user %s left chat %s", userID, chatID)
		return false, nil
	}

	if err := c.chats.Delete(chatID); err != nil {
		return false, err
	}
	c.Logf("chat %s deleted with its last member %s", chatID, userID)
	return true, nil
}

func (c *chatService) Restore(chatID, userID string) (*entity.Chat, error) {
	member, err := c.memberships.Get(chatID, userID)
	if err != nil {
		return nil, err
	}
	if !member.Removed {
		return nil, apperr.ErrNotRemoved
	}

	if err := c.memberships.SetRemoved(chatID, userID, false); err != nil {
		return nil, err
	}
	c.Logf("user %s restored chat %s", userID, chatID)
	return c.chats.GetByID(chatID)
}

func (c *chatService) UpdateGroup(chatID, actorID string, name, avatar *string) (*entity.Chat, error) {
	chat, err := c.chats.GetByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat.Kind != entity.ChatKindGroup {
		return nil, apperr.ErrNotGroup
	}
	if chat.CreatedBy != actorID {
		return nil, apperr.ErrForbidden
	}

	if err := c.chats.UpdateInfo(chatID, name, avatar); err != nil {
		return nil, err
	}
	return c.chats.GetByID(chatID)
}

func (c *chatService) AddMember(chatID, actorID, newUserID string) (*entity.Chat, error) {
	chat, err := c.chats.GetByID(chatID)
	if err != nil {
		return nil, err
	}
	if chat.Kind != entity.ChatKindGroup {
		return nil, apperr.ErrNotGroup
	}
	if chat.CreatedBy != actorID {
		return nil, apperr.ErrForbidden
	}
	if _, err := c.users.GetByID(newUserID); err != nil {
		return nil, err
	}

	member, err := c.memberships.Get(chatID, newUserID)
	switch {
	case errors.Is(err, apperr.ErrNotMember):
		add := &entity.ChatMember{ChatID: chatID, UserID: newUserID, JoinedAt: time.Now().UTC()}
		if err := c.memberships.Add(add); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	case member.Removed:
		if err := c.memberships.SetRemoved(chatID, newUserID, false); err != nil {
			return nil, err
		}
	default:
		return nil, apperr.ErrAlreadyMember
	}

	c.Logf("user %s added to group %s by %s", newUserID, chatID, actorID)
	return c.chats.GetByID(chatID)
}
