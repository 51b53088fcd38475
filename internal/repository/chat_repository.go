package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

type ChatRepository interface {
	// Create stores the chat and its initial membership rows in one
	// transaction, so a chat can never exist without members.
	Create(chat *entity.Chat, members []entity.ChatMember) error

	GetByID(id string) (*entity.Chat, error)
	GetForUser(userID string) ([]*entity.Chat, error)

	// GetKind returns the chat kind without loading members or
	// messages.
	GetKind(id string) (string, error)

	UpdateInfo(id string, name, avatar *string) error
	SetLastMessage(chatID, messageID string) error

	// Delete removes the chat with its membership rows and messages.
	Delete(id string) error
}

type SQLiteChatRepository struct {
	db *gorm.DB
}

func NewSQLiteChatRepository(db *gorm.DB) ChatRepository {
	return &SQLiteChatRepository{db}
}

func (repo *SQLiteChatRepository) Create(chat *entity.Chat, members []entity.ChatMember) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		for i := range members {
			if err := tx.Create(&members[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (repo *SQLiteChatRepository) GetByID(id string) (*entity.Chat, error) {
	var chat entity.Chat
	err := repo.db.
		Preload("Members").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ?", id).First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrChatNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// GetForUser returns every chat the user has a membership row in,
// removed ones included, so soft-left chats stay restorable from the
// chat list.
func (repo *SQLiteChatRepository) GetForUser(userID string) ([]*entity.Chat, error) {
	var chats []*entity.Chat
	err := repo.db.
		Preload("Members").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Find(&chats).Error
	return chats, err
}

func (repo *SQLiteChatRepository) GetKind(id string) (string, error) {
	var kinds []string
	err := repo.db.Model(&entity.Chat{}).Where("id = ?", id).Limit(1).Pluck("kind", &kinds).Error
	if err != nil {
		return "", err
	}
	if len(kinds) == 0 {
		return "", apperr.ErrChatNotFound
	}
	return kinds[0], nil
}

func (repo *SQLiteChatRepository) UpdateInfo(id string, name, avatar *string) error {
	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if avatar != nil {
		updates["avatar"] = *avatar
	}
	if len(updates) == 0 {
		return nil
	}

	result := repo.db.Model(&entity.Chat{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrChatNotFound
	}
	return nil
}

func (repo *SQLiteChatRepository) SetLastMessage(chatID, messageID string) error {
	return repo.db.Model(&entity.Chat{}).
		Where("id = ?", chatID).
		Update("last_message_id", messageID).Error
}

func (repo *SQLiteChatRepository) Delete(id string) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&entity.ChatMember{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", id).Delete(&entity.Message{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&entity.Chat{}).Error
	})
}
