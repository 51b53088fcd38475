package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Igor-Gurskiy/UrbanConnect/internal/apperr"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/auth"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/entity"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/logging"
	"github.com/Igor-Gurskiy/UrbanConnect/internal/repository"
)

type AuthService interface {
	Register(email, name, password string) (*entity.User, *auth.TokenPair, error)
	Login(email, password string, remember bool) (*entity.User, *auth.TokenPair, error)
	Refresh(refreshToken string) (*auth.TokenPair, error)
}

type authService struct {
	users  repository.UserRepository
	tokens *auth.TokenIssuer
	logger logging.Logger
}

func NewAuthService(users repository.UserRepository, tokens *auth.TokenIssuer, logger logging.Logger) AuthService {
	return &authService{
		users:  users,
		tokens: tokens,
		logger: logger,
	}
}

func (a *authService) Logf(format string, v ...any) {
	a.logger.Logf(format, v...)
}

func (a *authService) Register(email, name, password string) (*entity.User, *auth.TokenPair, error) {
	if _, err := a.users.GetByEmail(email); err == nil {
		return nil, nil, apperr.ErrUserExists
	} else if !errors.Is(err, apperr.ErrUserNotFound) {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		a.Logf("could not hash password: %v", err)
		return nil, nil, err
	}

	id := uuid.New().String()
	user := &entity.User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Credential: entity.Credential{
			UserID: id,
			Hash:   hash,
		},
	}
	if err := a.users.Create(user); err != nil {
		return nil, nil, err
	}

	pair, err := a.tokens.GenerateTokens(user.ID, auth.DefaultAccessTTL, auth.DefaultRefreshTTL)
	if err != nil {
		return nil, nil, err
	}

	a.Logf("user %s registered", user.ID)
	return user, pair, nil
}

func (a *authService) Login(email, password string, remember bool) (*entity.User, *auth.TokenPair, error) {
	user, err := a.users.GetForLogin(email)
	if err != nil {
		if errors.Is(err, apperr.ErrUserNotFound) {
			return nil, nil, apperr.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !auth.ComparePassword(user.Credential.Hash, password) {
		return nil, nil, apperr.ErrInvalidCredentials
	}

	accessTTL, refreshTTL := auth.DefaultAccessTTL, auth.DefaultRefreshTTL
	if remember {
		accessTTL, refreshTTL = auth.RememberAccessTTL, auth.RememberRefreshTTL
	}

	pair, err := a.tokens.GenerateTokens(user.ID, accessTTL, refreshTTL)
	if err != nil {
		return nil, nil, err
	}

	a.Logf("user %s logged in", user.ID)
	return user, pair, nil
}

func (a *authService) Refresh(refreshToken string) (*auth.TokenPair, error) {
	claims, err := a.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, apperr.ErrInvalidToken
	}

	if _, err := a.users.GetByID(claims.UserID); err != nil {
		return nil, err
	}

	return a.tokens.GenerateTokens(claims.UserID, auth.DefaultAccessTTL, auth.DefaultRefreshTTL)
}
