package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace/internal/auth"
	"marketplace/internal/errors"
	"marketplace/internal/mailer"
	"marketplace/internal/repository"
)

// PasswordRecoveryService handles the forgot-password flow: a one-time
// token is stored in Redis and mailed to the user, then exchanged for a
// password change.
type PasswordRecoveryService interface {
	RequestReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
}

type passwordRecoveryService struct {
	users      repository.UserRepository
	tokenStore auth.TokenStoreInterface
	mailer     mailer.Mailer
}

// NewPasswordRecoveryService builds a PasswordRecoveryService.
func NewPasswordRecoveryService(users repository.UserRepository, tokenStore auth.TokenStoreInterface, mailer mailer.Mailer) PasswordRecoveryService {
	return &passwordRecoveryService{
		users:      users,
		tokenStore: tokenStore,
		mailer:     mailer,
	}
}

// RequestReset issues a recovery token for the account behind email.
func (s *passwordRecoveryService) RequestReset(ctx context.Context, email string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	token := uuid.New().String()
	if err := s.tokenStore.StoreRecoveryToken(ctx, token, user.ID, auth.RecoveryTokenExpiry); err != nil {
		return fmt.Errorf("store recovery token: %w", err)
	}

	if err := s.mailer.SendPasswordRecovery(ctx, user.Email, token); err != nil {
		return fmt.Errorf("send recovery mail: %w", err)
	}
	return nil
}

// ResetPassword exchanges a valid recovery token for a password change.
func (s *passwordRecoveryService) ResetPassword(ctx context.Context, token, newPassword string) error {
	userID, err := s.tokenStore.ConsumeRecoveryToken(ctx, token)
	if err != nil {
		return errors.ErrInvalidRecoveryToken
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
