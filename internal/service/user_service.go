package service

import (
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
)

// Service for user discovery.
type UserService interface {
	GetByID(id string) (*entity.User, error)
	List() ([]*entity.User, error)
	Search(query, excludeID string) ([]*entity.User, error)
}

type userService struct {
	users  repository.UserRepository
	logger logging.Logger
}

func NewUserService(users repository.UserRepository, logger logging.Logger) UserService {
	return &userService{
		users:  users,
		logger: logger,
	}
}

func (u *userService) GetByID(id string) (*entity.User, error) {
	return u.users.GetByID(id)
}

func (u *userService) List() ([]*entity.User, error) {
	return u.users.GetAll()
}

func (u *userService) Search(query, excludeID string) ([]*entity.User, error) {
	users, err := u.users.Search(query, excludeID)
	if err != nil {
		return nil, err
	}
	u.logger.Logf("search %q matched %d users", query, len(users))
	return users, nil
}
