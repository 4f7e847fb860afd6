// Package services contains the server-side business logic. This file
// implements UserService, which handles registration, login, token-derived
// profiles, and account administration.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/helpdesk/internal/common"
	"github.com/dmitrijs2005/helpdesk/internal/dbx"
	"github.com/dmitrijs2005/helpdesk/internal/server/auth"
	"github.com/dmitrijs2005/helpdesk/internal/server/models"
	"github.com/dmitrijs2005/helpdesk/internal/server/repositories/repomanager"
)

// dummyDigest is compared against when the account does not exist, so a login
// for an unknown email costs the same as one for a wrong password.
const dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserService provides account-related operations:
//   - Register: create accounts with the default role
//   - Login: verify credentials and mint an access token
//   - profile reads/updates and administrative role changes
type UserService struct {
	db     *sql.DB
	repos  repomanager.RepositoryManager
	hasher *auth.PasswordHasher
	tokens *auth.TokenManager
}

// NewUserService constructs a UserService using repositories and the
// access-control primitives.
func NewUserService(db *sql.DB, repos repomanager.RepositoryManager, hasher *auth.PasswordHasher, tokens *auth.TokenManager) *UserService {
	return &UserService{
		db:     db,
		repos:  repos,
		hasher: hasher,
		tokens: tokens,
	}
}

// GetByID exposes account lookup for the access decision engine
// (auth.AccountSource) and for profile reads.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repos.Users(s.db).GetByID(ctx, id)
}

// Register creates a new account with role "user". The plaintext password is
// hashed before it reaches the repository and is never stored or logged.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: digest, Rol: models.RoleUser}
	u, err := s.repos.Users(s.db).Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return u, nil
}

// Login verifies the credentials and mints an access token. An unknown email
// and a wrong password both return common.ErrInvalidCredentials so responses
// do not reveal which accounts exist.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repos.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Verify(password, dummyDigest)
			return "", common.ErrInvalidCredentials
		}
		return "", common.ErrorInternal
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return "", common.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email, string(user.Rol))
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// List returns the accounts visible under the caller's scope: admins see all
// accounts, users only their own row.
func (s *UserService) List(ctx context.Context, scope auth.Scope) ([]*models.User, error) {
	return s.repos.Users(s.db).List(ctx, scope)
}

// UpdateProfile updates the contact fields of an account.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, fullName, phone string) (*models.User, error) {
	return s.repos.Users(s.db).UpdateProfile(ctx, id, fullName, phone)
}

// ChangeRole sets an account's role. Callers gate this behind the admin role.
func (s *UserService) ChangeRole(ctx context.Context, id int64, role models.Role) (*models.User, error) {
	return s.repos.Users(s.db).UpdateRole(ctx, id, role)
}

// Delete removes an account together with the tickets it owns (attachment
// rows cascade off the tickets), in one transaction: tickets reference their
// owner, so deleting the account row alone would violate the constraint.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repos.Tickets(tx).DeleteByOwner(ctx, id); err != nil {
			return err
		}
		return s.repos.Users(tx).Delete(ctx, id)
	})
}

// HashPassword exposes the hasher for the administrative hash utility endpoint.
func (s *UserService) HashPassword(password string) (string, error) {
	return s.hasher.Hash(password)
}
