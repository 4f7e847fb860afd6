package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/helpdesk/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the identity claim set embedded in every access token.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	Rol    string `json:"rol"`
}

// TokenManager mints and verifies HS256-signed access tokens. The secret is
// process-wide configuration; rotating it invalidates every outstanding token.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager fails on an empty secret or non-positive TTL; both are
// startup-fatal misconfigurations.
func NewTokenManager(secret string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret key is not configured")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invalid token validity duration: %v", ttl)
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl}, nil
}

// Issue mints a token for the given identity with exp = now + ttl.
func (m *TokenManager) Issue(userID int64, email string, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
		UserID: userID,
		Email:  email,
		Rol:    role,
	})

	tokenString, err := token.SignedString(m.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// TTL returns the configured token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Verify validates the signature and expiry and returns the embedded claims.
// Every failure — bad signature, expiry, missing claims, undecodable token —
// folds into common.ErrInvalidToken so callers cannot distinguish them; the
// wrapped detail is for internal logs only.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.UserID == 0 || claims.Email == "" || claims.Rol == "" {
		return nil, fmt.Errorf("%w: required claims missing", common.ErrInvalidToken)
	}

	return claims, nil
}
