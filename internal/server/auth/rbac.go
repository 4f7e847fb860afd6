package auth

import (
	"context"
	"errors"
	"slices"

	"github.com/dmitrijs2005/helpdesk/internal/common"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
)

// AccountSource re-checks the live account behind a verified token. Claims are
// trusted for identity, never for continued existence: a deactivated account
// must not keep using a still-unexpired token.
type AccountSource interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// Authorizer is the per-request access decision engine. It is stateless; two
// concurrent calls never interact.
type Authorizer struct {
	tokens   *TokenManager
	accounts AccountSource
}

func NewAuthorizer(tokens *TokenManager, accounts AccountSource) *Authorizer {
	return &Authorizer{tokens: tokens, accounts: accounts}
}

// Authorize verifies the presented token, re-fetches the account to confirm it
// still exists and is active, and checks the normalized role against the
// required set. An empty required set means any authenticated role.
//
// Failures: common.ErrorUnauthorized for a missing/unverifiable token or a
// missing/inactive account, common.ErrForbidden for an insufficient role.
func (a *Authorizer) Authorize(ctx context.Context, token string, required ...models.Role) (*Claims, error) {
	if token == "" {
		return nil, common.ErrorUnauthorized
	}

	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	role, err := models.ParseRole(claims.Rol)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}
	claims.Rol = string(role)

	user, err := a.accounts.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, common.ErrorUnauthorized
	}

	if len(required) > 0 && !slices.Contains(required, role) {
		return nil, common.ErrForbidden
	}

	return claims, nil
}

// AuthorizeOwner enforces ownership scoping on operations targeting a specific
// account's resources: non-admin subjects may only touch what they own.
func (a *Authorizer) AuthorizeOwner(claims *Claims, ownerID int64) error {
	if models.Role(claims.Rol) == models.RoleAdmin {
		return nil
	}
	if claims.UserID != ownerID {
		return common.ErrForbidden
	}
	return nil
}

// Scope is the row-scoping predicate the engine contributes to list queries.
// Repositories translate it into a bound WHERE clause; the owner id is always
// passed as a query parameter, never interpolated.
type Scope struct {
	OwnerID int64
	All     bool
}

// Scope derives the listing predicate from verified claims: admins see every
// row, users only their own.
func (a *Authorizer) Scope(claims *Claims) Scope {
	if models.Role(claims.Rol) == models.RoleAdmin {
		return Scope{All: true}
	}
	return Scope{OwnerID: claims.UserID}
}
