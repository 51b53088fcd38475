package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
)

type UserRepository interface {
	Create(user *entity.User) error

	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetForLogin(email string) (*entity.User, error)

	GetAll() ([]*entity.User, error)
	Search(query, excludeID string) ([]*entity.User, error)
}

type SQLiteUserRepository struct {
	db *gorm.DB
}

func NewSQLiteUserRepository(db *gorm.DB) UserRepository {
	return &SQLiteUserRepository{db}
}

func (repo *SQLiteUserRepository) Create(user *entity.User) error {
	return repo.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(user).Error
	})
}

func (repo *SQLiteUserRepository) GetByID(id string) (*entity.User, error) {
	var user entity.User
	if err := repo.db.Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (repo *SQLiteUserRepository) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	if err := repo.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetForLogin is the only query that loads the credential row.
func (repo *SQLiteUserRepository) GetForLogin(email string) (*entity.User, error) {
	var user entity.User
	if err := repo.db.Preload("Credential").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (repo *SQLiteUserRepository) GetAll() ([]*entity.User, error) {
	var users []*entity.User
	err := repo.db.Order("created_at ASC").Find(&users).Error
	return users, err
}

// Search matches the query as a substring of id, name or email, leaving
// out the searching user themselves. LIKE metacharacters in the query
// are escaped so they match literally.
func (repo *SQLiteUserRepository) Search(query, excludeID string) ([]*entity.User, error) {
	var users []*entity.User
	pattern := fmt.Sprintf("%%%s%%", escapeLike(query))
	err := repo.db.
		Where("id != ?", excludeID).
		Where("id LIKE ? ESCAPE '\\' OR name LIKE ? ESCAPE '\\' OR email LIKE ? ESCAPE '\\'", pattern, pattern, pattern).
		Find(&users).Error
	return users, err
}

func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
