package service

import (
	"context"
	"errors"

	"github.com/quickkick/registration/internal/hash"
	"github.com/quickkick/registration/internal/logging"
	"github.com/quickkick/registration/internal/models"
	"github.com/quickkick/registration/internal/notify"
	"github.com/quickkick/registration/internal/repo"
	"github.com/quickkick/registration/internal/token"
)

type AuthService struct {
	Repo    repo.Store
	Codec   *token.Codec
	Gateway notify.Gateway
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// OIDCClaims are the identity attributes handed over after a completed
// OAuth2/OIDC provider login. The handshake itself happens upstream.
type OIDCClaims struct {
	Email      string
	GivenName  string
	FamilyName string
}

func (s *AuthService) mintPair(account *models.Account) (*TokenPair, error) {
	roles := []string{string(account.Role)}

	access, err := s.Codec.Issue(account.Email, roles, token.KindAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.Issue(account.Email, roles, token.KindRefresh)
	if err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Authenticate verifies the password against the stored hash and mints
// an access/refresh pair. A missing account and a wrong password are
// indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate")

	account, err := s.Repo.FindAccountByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		l.Warn("authenticate_failed", "error", err)
		return nil, err
	}

	if account.PasswordHash == "" || !hash.CheckPassword(account.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.mintPair(account)
	if err != nil {
		l.Error("token_mint_failed", "error", err)
		return nil, err
	}

	l.Info("authenticated", "account_id", account.ID)
	return pair, nil
}

// HandleOIDCLogin links an OAuth identity to an account, creating a
// pre-activated one on first sight. A profile-completion notification is
// published on every OIDC login; its failure never fails the login.
func (s *AuthService) HandleOIDCLogin(ctx context.Context, claims OIDCClaims) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.oidc_login")
	email := NormalizeEmail(claims.Email)

	account, err := s.Repo.FindAccountByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			l.Warn("oidc_login_failed", "error", err)
			return nil, err
		}
		account, err = s.createOAuthAccount(ctx, email, claims)
		if err != nil {
			l.Warn("oidc_account_creation_failed", "error", err)
			return nil, err
		}
		l.Info("oidc_account_created", "account_id", account.ID)
	}

	n := notify.OAuthNotification(claims.GivenName, claims.FamilyName, email)
	if err := s.Gateway.Publish(ctx, notify.TopicRegistrations, n); err != nil {
		l.Error("notification_publish_failed", "topic", notify.TopicRegistrations, "error", err)
	}

	pair, err := s.mintPair(account)
	if err != nil {
		l.Error("token_mint_failed", "error", err)
		return nil, err
	}
	return pair, nil
}

func (s *AuthService) createOAuthAccount(ctx context.Context, email string, claims OIDCClaims) (*models.Account, error) {
	user := &models.User{
		FirstName: claims.GivenName,
		LastName:  claims.FamilyName,
		Account: models.Account{
			Email:     email,
			Role:      models.RoleUser,
			Activated: true,
			OAuth:     true,
		},
	}

	err := s.Repo.WithinTx(ctx, func(tx repo.Store) error {
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Concurrent first login with the same identity; reuse the
			// account the other request created.
			return s.Repo.FindAccountByEmail(ctx, email)
		}
		return nil, err
	}
	return &user.Account, nil
}
