package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

type MembershipRepository interface {
	Add(member *entity.ChatMember) error
	Get(chatID, userID string) (*entity.ChatMember, error)

	// GetActiveMembers returns the ids of members with removed = false.
	// apperr.ErrChatNotFound when the chat itself does not exist.
	GetActiveMembers(chatID string) ([]string, error)

	IsMember(chatID, userID string) (bool, error)
	SetRemoved(chatID, userID string, removed bool) error
	CountActive(chatID string) (int64, error)
}

type SQLiteMembershipRepository struct {
	db *gorm.DB
}

func NewSQLiteMembershipRepository(db *gorm.DB) MembershipRepository {
	return &SQLiteMembershipRepository{db}
}

func (repo *SQLiteMembershipRepository) Add(member *entity.ChatMember) error {
	return repo.db.Create(member).Error
}

func (repo *SQLiteMembershipRepository) Get(chatID, userID string) (*entity.ChatMember, error) {
	var member entity.ChatMember
	err := repo.db.Where("chat_id = ? AND user_id = ?", chatID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrNotMember
		}
		return nil, err
	}
	return &member, nil
}

func (repo *SQLiteMembershipRepository) GetActiveMembers(chatID string) ([]string, error) {
	var count int64
	if err := repo.db.Model(&entity.Chat{}).Where("id = ?", chatID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperr.ErrChatNotFound
	}

	var ids []string
	err := repo.db.Model(&entity.ChatMember{}).
		Where("chat_id = ? AND removed = ?", chatID, false).
		Pluck("user_id", &ids).Error
	return ids, err
}

func (repo *SQLiteMembershipRepository) IsMember(chatID, userID string) (bool, error) {
	var count int64
	err := repo.db.Model(&entity.ChatMember{}).
		Where("chat_id = ? AND user_id = ? AND removed = ?", chatID, userID, false).
		Count(&count).Error
	return count > 0, err
}

// SetRemoved flips the flag on the existing row. Idempotent: repeating
// the call leaves the single row in the same state, never a second row.
func (repo *SQLiteMembershipRepository) SetRemoved(chatID, userID string, removed bool) error {
	result := repo.db.Model(&entity.ChatMember{}).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		Update("removed", removed)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.ErrNotMember
	}
	return nil
}

func (repo *SQLiteMembershipRepository) CountActive(chatID string) (int64, error) {
	var count int64
	err := repo.db.Model(&entity.ChatMember{}).
		Where("chat_id = ? AND removed = ?", chatID, false).
		Count(&count).Error
	return count, err
}
