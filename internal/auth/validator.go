package auth

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Remember bool   `json:"remember"`
}

func ValidateRegister(req RegisterRequest) error {
	return validate.Struct(req)
}

func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}
