// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package auth implements identity and session management for the platform.

It owns the User and Session entities and every flow that creates or revokes
credentials: registration, login, refresh-token rotation, password reset and
email verification.

# Architecture

Domain types here carry no storage dependencies. Repositories defined in this
package are implemented against PostgreSQL (accounts, sessions) and Redis
(short-lived reset and verification tokens).
*/
package auth

import (
	"time"

	"github.com/noveris/noveris/internal/platform/sec"
)

// # Domain Entities

// User represents a registered reader or author on the platform.
type User struct {
	ID           string       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"` // Never serialized.
	DisplayName  string       `json:"display_name"`
	Bio          string       `json:"bio,omitempty"`
	Role         sec.UserRole `json:"role"`
	IsVerified   bool         `json:"is_verified"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}

// Session represents an active refresh-token session for a single device.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TokenHash string    `json:"-"` // Hash of the refresh token. Never serialized.
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	ExpiresAt time.Time `json:"expires_at"`
	IsRevoked bool      `json:"is_revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

// Field names used in validation errors across the authentication flows.
const (
	FieldUsername    = "username"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldLogin       = "login"
	FieldToken       = "token"
)
