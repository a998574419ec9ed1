// Copyright (c) 2026 Noveris. All rights reserved.

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noveris/noveris/internal/platform/apperr"
)

// # Redis Token Stores

// Key patterns for one-shot tokens. Values are the owning user ID, keyed by
// the SHA-256 hash of the token so a Redis dump never exposes usable tokens.
const (
	resetTokenKeyPattern  = "auth:reset_token:%s"
	verifyTokenKeyPattern = "auth:verify_token:%s"
)

// tokenRepository is the shared Redis implementation behind both one-shot
// token contracts. The key pattern selects the namespace.
type tokenRepository struct {
	client     *redis.Client
	keyPattern string
}

// NewResetTokenRepository constructs a Redis backed password-reset token store.
func NewResetTokenRepository(client *redis.Client) ResetTokenRepository {
	return &tokenRepository{client: client, keyPattern: resetTokenKeyPattern}
}

// NewVerificationTokenRepository constructs a Redis backed email-verification token store.
func NewVerificationTokenRepository(client *redis.Client) VerificationTokenRepository {
	return &tokenRepository{client: client, keyPattern: verifyTokenKeyPattern}
}

// Store associates a hashed token with a user for the given TTL.
func (repository *tokenRepository) Store(context context.Context, tokenHash, userID string, ttl time.Duration) error {
	key := fmt.Sprintf(repository.keyPattern, tokenHash)
	if err := repository.client.Set(context, key, userID, ttl).Err(); err != nil {
		return fmt.Errorf("redis: failed to store token: %w", err)
	}
	return nil
}

/*
Consume resolves and deletes a hashed token in one step.

Description: Uses GETDEL so a token can never be redeemed twice, even under
concurrent requests.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - string: Owning user ID
  - error: apperr.NotFound when absent or expired
*/
func (repository *tokenRepository) Consume(context context.Context, tokenHash string) (string, error) {
	key := fmt.Sprintf(repository.keyPattern, tokenHash)

	userID, err := repository.client.GetDel(context, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", apperr.NotFound("token")
		}
		return "", fmt.Errorf("redis: failed to consume token: %w", err)
	}
	return userID, nil
}
