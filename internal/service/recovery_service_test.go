package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"marketplace/internal/auth"
	apperrors "marketplace/internal/errors"
	"marketplace/internal/model"
)

// MockMailer is a mock implementation of mailer.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordRecovery(ctx context.Context, to, token string) error {
	args := m.Called(ctx, to, token)
	return args.Error(0)
}

func TestPasswordRecoveryService_RequestReset(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "u@example.com"}

	t.Run("stores a token and mails it to the user", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenStore)
		mail := new(MockMailer)
		svc := NewPasswordRecoveryService(users, tokens, mail)

		var issued string
		users.On("FindByEmail", mock.Anything, user.Email).Return(user, nil)
		tokens.On("StoreRecoveryToken", mock.Anything, mock.Anything, user.ID, auth.RecoveryTokenExpiry).
			Run(func(args mock.Arguments) { issued = args.String(1) }).Return(nil)
		mail.On("SendPasswordRecovery", mock.Anything, user.Email, mock.Anything).Return(nil)

		err := svc.RequestReset(context.Background(), user.Email)

		assert.NoError(t, err)
		mail.AssertCalled(t, "SendPasswordRecovery", mock.Anything, user.Email, issued)
	})

	t.Run("fails with not found for an unknown email", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenStore)
		mail := new(MockMailer)
		svc := NewPasswordRecoveryService(users, tokens, mail)

		users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, gorm.ErrRecordNotFound)

		err := svc.RequestReset(context.Background(), "nobody@example.com")

		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		mail.AssertNotCalled(t, "SendPasswordRecovery", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPasswordRecoveryService_ResetPassword(t *testing.T) {
	user := &model.User{ID: uuid.New(), Email: "u@example.com", PasswordHash: "old"}

	t.Run("replaces the password for a valid token", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenStore)
		svc := NewPasswordRecoveryService(users, tokens, new(MockMailer))

		tokens.On("ConsumeRecoveryToken", mock.Anything, "tok").Return(user.ID, nil)
		users.On("FindByID", mock.Anything, user.ID).Return(user, nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("fresh-secret")) == nil
		})).Return(nil)

		err := svc.ResetPassword(context.Background(), "tok", "fresh-secret")

		assert.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		users := new(MockUserRepository)
		tokens := new(MockTokenStore)
		svc := NewPasswordRecoveryService(users, tokens, new(MockMailer))

		tokens.On("ConsumeRecoveryToken", mock.Anything, "bad").Return(uuid.Nil, assert.AnError)

		err := svc.ResetPassword(context.Background(), "bad", "fresh-secret")

		assert.ErrorIs(t, err, apperrors.ErrInvalidRecoveryToken)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}
