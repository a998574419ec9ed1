// Copyright (c) 2026 Noveris. All rights reserved.

package auth

import "time"

// # Credential Lifetimes

const (
	// AccessTokenTTL is how long a JWT access token remains valid. Kept
	// short so a leaked token ages out quickly.
	AccessTokenTTL = 15 * time.Minute

	// RefreshTokenTTL is how long a refresh-token session remains valid.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// RefreshTokenLength is the byte length of the random refresh token.
	RefreshTokenLength = 32

	// ResetTokenTTL is how long a password reset token remains valid.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random reset token.
	ResetTokenLength = 32

	// VerificationTokenTTL is how long an email verification token remains
	// valid. Generous because readers may not open the mail immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the verification token.
	VerificationTokenLength = 32
)

// # Input Constraints

const (
	// MinPasswordLength is the minimum accepted password length.
	MinPasswordLength = 8

	// MinUsernameLength and MaxUsernameLength bound the public handle.
	MinUsernameLength = 3
	MaxUsernameLength = 32
)
