package services

import (
	"fmt"
	"log/slog"
	"message-board/auth"
	"message-board/errors"
)

type IAdminService interface {
	Login(password string) (Token, error)
}

// AdminService checks the single shared admin secret and issues session tokens.
type AdminService struct {
	passwordHash string
	tokenizer    auth.Tokenizer
	log          *slog.Logger
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAdminService(passwordHash string, tokenizer auth.Tokenizer, log *slog.Logger) IAdminService {
	return &AdminService{passwordHash: passwordHash, tokenizer: tokenizer, log: log}
}

func (s *AdminService) Login(password string) (Token, error) {
	if err := auth.ValidateLogin(auth.LoginRequest{Password: password}); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidCredentials, err)
	}

	match, err := auth.ComparePassword(password, s.passwordHash)
	if err != nil || !match {
		s.log.Warn("Admin login refused")
		return "", errors.ErrInvalidCredentials
	}

	token, err := s.tokenizer.Generate(auth.RoleAdmin, []string{auth.RoleAdmin})
	if err != nil {
		return "", errors.ErrTokenGeneration
	}
	s.log.Info("Admin logged in")
	return Token(token), nil
}
