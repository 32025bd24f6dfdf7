package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LoginRequest is the admin login payload. Argon2 input is capped like bcrypt's 72 bytes.
type LoginRequest struct {
	Password string `json:"password" validate:"required,max=72"`
}

func ValidateLogin(req LoginRequest) error {
	return validate.Struct(req)
}
