// Copyright (c) 2026 Noveris. All rights reserved.

/*
Package view implements duplicate-safe chapter view counting.

A chapter view counts at most once per reader identity within a rolling
deduplication window. The decision is made by a single atomic statement
against the dedup store, so concurrent requests for the same reader can
never double count.

Core Responsibility:

  - Identity: Resolves who is reading (account, anonymous device, or bare IP).
  - Deduplication: One count per (chapter, identity) per window.
  - Pipeline: Turns an allowed view into a counter increment, a readers
    recompute, and a novel activity stamp, all best-effort.
*/
package view

// # Reader Identity

// IdentityKind labels the scope a reader identity resolved to.
type IdentityKind string

const (
	// KindUser identifies a signed-in account.
	KindUser IdentityKind = "user"

	// KindClient identifies an anonymous device by its client token and IP.
	KindClient IdentityKind = "client"

	// KindIP is the last-resort scope when no client token is available.
	KindIP IdentityKind = "ip"
)

// Identity is the deduplication key for a reader.
//
// Exactly one scope applies, in fixed precedence: a signed-in user dedups
// on the account alone, an anonymous reader on (client token, IP), and a
// tokenless reader on IP only. The empty-string token makes the IP-only
// fallback a degenerate case of the client scope, so the anonymous storage
// path is shared.
type Identity struct {
	UserID      string
	ClientToken string
	IPAddress   string
}

// Resolve builds an [Identity] applying the scope precedence.
func Resolve(userID, clientToken, ipAddress string) Identity {
	if userID != "" {
		return Identity{UserID: userID}
	}
	return Identity{ClientToken: clientToken, IPAddress: ipAddress}
}

// Kind reports which scope this identity resolved to.
func (i Identity) Kind() IdentityKind {
	switch {
	case i.UserID != "":
		return KindUser
	case i.ClientToken != "":
		return KindClient
	default:
		return KindIP
	}
}

// IsAnonymous reports whether the identity lacks a signed-in account.
func (i Identity) IsAnonymous() bool {
	return i.UserID == ""
}
