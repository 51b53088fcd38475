package repository

import (
	"gorm.io/gorm"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

type MessageRepository interface {
	Create(message *entity.Message) error
	GetByChat(chatID string) ([]*entity.Message, error)
	GetByID(id string) (*entity.Message, error)
}

type SQLiteMessageRepository struct {
	db *gorm.DB
}

func NewSQLiteMessageRepository(db *gorm.DB) MessageRepository {
	return &SQLiteMessageRepository{db}
}

func (repo *SQLiteMessageRepository) Create(message *entity.Message) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(message).Error
	})
}

// GetByChat orders by creation time with the id as tie breaker; two
// messages written in the same instant still come back in a stable
// order.
func (repo *SQLiteMessageRepository) GetByChat(chatID string) ([]*entity.Message, error) {
	var messages []*entity.Message
	err := repo.db.Where("chat_id = ?", chatID).
		Order("created_at ASC, id ASC").
		Find(&messages).Error
	return messages, err
}

func (repo *SQLiteMessageRepository) GetByID(id string) (*entity.Message, error) {
	var message entity.Message
	err := repo.db.Where("id = ?", id).First(&message).Error
	if err != nil {
		return nil, err
	}
	return &message, nil
}
