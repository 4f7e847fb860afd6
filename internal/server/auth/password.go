// Package auth implements the access-control core of the helpdesk server:
// password hashing, bearer-token issue/verify, and the per-request
// authorization decision used by every protected operation.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies credentials with bcrypt. Each Hash call
// salts independently, so equal inputs produce distinct digests and equality
// is only ever checked through Verify.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher validates the cost and runs a hash/verify self-check so a
// misconfigured primitive aborts startup instead of degrading silently.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}

	h := &PasswordHasher{cost: cost}

	digest, err := h.Hash("startup-self-check")
	if err != nil {
		return nil, fmt.Errorf("password hasher self-check: %w", err)
	}
	if !h.Verify("startup-self-check", digest) {
		return nil, fmt.Errorf("password hasher self-check: digest did not verify")
	}

	return h, nil
}

// Hash produces a salted digest of plaintext.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. It returns false, never an
// error, for a structurally invalid digest.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
