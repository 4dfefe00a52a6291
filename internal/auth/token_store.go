package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"marketplace/internal/cache"
)

const (
	refreshTokenKeyPrefix  = "refresh_token:"
	recoveryTokenKeyPrefix = "recovery_token:"
)

// RecoveryTokenExpiry bounds how long a password recovery link stays usable.
const RecoveryTokenExpiry = 1 * time.Hour

// TokenStoreInterface defines the interface for token storage operations.
type TokenStoreInterface interface {
	StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error
	GetRefreshToken(ctx context.Context, tokenID string) (userID uuid.UUID, email string, err error)
	DeleteRefreshToken(ctx context.Context, tokenID string) error
	StoreRecoveryToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	ConsumeRecoveryToken(ctx context.Context, token string) (userID uuid.UUID, err error)
}

// TokenStore handles storage and retrieval of tokens in Redis.
type TokenStore struct {
	cache *cache.Client
}

// Ensure TokenStore implements TokenStoreInterface
var _ TokenStoreInterface = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(cache *cache.Client) *TokenStore {
	return &TokenStore{cache: cache}
}

type refreshTokenData struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// StoreRefreshToken stores a refresh token in Redis with TTL.
func (s *TokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, email string, ttl time.Duration) error {
	payload, err := json.Marshal(refreshTokenData{UserID: userID, Email: email})
	if err != nil {
		return fmt.Errorf("marshal token data: %w", err)
	}
	return s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, payload, ttl)
}

// GetRefreshToken retrieves refresh token data from Redis.
func (s *TokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, string, error) {
	data, err := s.cache.Get(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return uuid.Nil, "", fmt.Errorf("refresh token not found")
	}

	var tokenData refreshTokenData
	if err := json.Unmarshal(data, &tokenData); err != nil {
		return uuid.Nil, "", fmt.Errorf("unmarshal token data: %w", err)
	}
	return tokenData.UserID, tokenData.Email, nil
}

// DeleteRefreshToken removes a refresh token from Redis.
func (s *TokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}

// StoreRecoveryToken stores a password recovery token with TTL.
func (s *TokenStore) StoreRecoveryToken(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	return s.cache.Set(ctx, recoveryTokenKeyPrefix+token, []byte(userID.String()), ttl)
}

// ConsumeRecoveryToken resolves a recovery token to its user and deletes
// it so the same link cannot be replayed.
func (s *TokenStore) ConsumeRecoveryToken(ctx context.Context, token string) (uuid.UUID, error) {
	key := recoveryTokenKeyPrefix + token
	data, err := s.cache.Get(ctx, key)
	if err != nil || data == nil {
		return uuid.Nil, fmt.Errorf("recovery token not found")
	}
	userID, err := uuid.Parse(string(data))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse recovery token user: %w", err)
	}
	_ = s.cache.Delete(ctx, key)
	return userID, nil
}
