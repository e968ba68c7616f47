package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quickkick/registration/internal/hash"
	"github.com/quickkick/registration/internal/logging"
	"github.com/quickkick/registration/internal/models"
	"github.com/quickkick/registration/internal/notify"
	"github.com/quickkick/registration/internal/repo"
)

// RegistrationService owns the two-phase account activation workflow:
// register, then confirm within the token window or lose the account.
type RegistrationService struct {
	Repo            repo.Store
	Gateway         notify.Gateway
	ConfirmTokenTTL time.Duration
	ConfirmLinkBase string
}

type RegisterUserInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

type RegisterAdministratorInput struct {
	Email        string
	Password     string
	PhoneNumber  string
	BusinessName string
	CUI          string
	IBAN         string
	Address      string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *RegistrationService) newConfirmationToken() *models.ConfirmationToken {
	now := time.Now()
	return &models.ConfirmationToken{
		Token:     uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ConfirmTokenTTL),
	}
}

// RegisterUser creates an unactivated account with its profile and
// confirmation token in one transaction, then publishes the confirmation
// email. The uniqueness checks run in a fixed order so the reported
// field is deterministic.
func (s *RegistrationService) RegisterUser(ctx context.Context, in RegisterUserInput) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "registration.register_user")
	email := NormalizeEmail(in.Email)

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_user_failed", "reason", "cannot hash password", "error", err)
		return 0, err
	}

	confirmation := s.newConfirmationToken()
	user := &models.User{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		PhoneNumber: &in.PhoneNumber,
		Account: models.Account{
			Email:             email,
			PasswordHash:      pwHash,
			Role:              models.RoleUser,
			Activated:         false,
			ConfirmationToken: confirmation,
		},
	}

	err = s.Repo.WithinTx(ctx, func(tx repo.Store) error {
		if exists, err := tx.AccountExistsByEmail(ctx, email); err != nil {
			return err
		} else if exists {
			return &DuplicateFieldError{Field: "email"}
		}
		if exists, err := tx.PhoneInUse(ctx, in.PhoneNumber); err != nil {
			return err
		} else if exists {
			return &DuplicateFieldError{Field: "phone number"}
		}
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// Lost a race to a concurrent registration; the unique
			// constraint fired after our checks passed.
			return 0, s.resolveUserDuplicate(ctx, email, in.PhoneNumber)
		}
		l.Warn("register_user_failed", "error", err)
		return 0, err
	}

	link := notify.ConfirmLink(s.ConfirmLinkBase, confirmation.Token)
	n := notify.RegistrationNotification(in.FirstName, in.LastName, email, link)
	if err := s.Gateway.Publish(ctx, notify.TopicRegistrations, n); err != nil {
		l.Error("notification_publish_failed", "topic", notify.TopicRegistrations, "error", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return user.ID, nil
}

// RegisterAdministrator creates an unactivated administrator account. No
// confirmation token is issued; activation waits on out-of-band approval
// requested through the gateway.
func (s *RegistrationService) RegisterAdministrator(ctx context.Context, in RegisterAdministratorInput) (uint, error) {
	l := logging.FromContext(ctx).With("svc", "registration.register_administrator")
	email := NormalizeEmail(in.Email)

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_administrator_failed", "reason", "cannot hash password", "error", err)
		return 0, err
	}

	admin := &models.Administrator{
		PhoneNumber:  in.PhoneNumber,
		BusinessName: in.BusinessName,
		CUI:          in.CUI,
		IBAN:         in.IBAN,
		Address:      in.Address,
		Account: models.Account{
			Email:        email,
			PasswordHash: pwHash,
			Role:         models.RoleAdministrator,
			Activated:    false,
		},
	}

	err = s.Repo.WithinTx(ctx, func(tx repo.Store) error {
		checks := []struct {
			field  string
			exists func() (bool, error)
		}{
			{"email", func() (bool, error) { return tx.AccountExistsByEmail(ctx, email) }},
			{"phone number", func() (bool, error) { return tx.PhoneInUse(ctx, in.PhoneNumber) }},
			{"address", func() (bool, error) { return tx.AdministratorExistsByAddress(ctx, in.Address) }},
			{"cui", func() (bool, error) { return tx.AdministratorExistsByCUI(ctx, in.CUI) }},
			{"iban", func() (bool, error) { return tx.AdministratorExistsByIBAN(ctx, in.IBAN) }},
			{"business name", func() (bool, error) { return tx.AdministratorExistsByBusinessName(ctx, in.BusinessName) }},
		}
		for _, check := range checks {
			exists, err := check.exists()
			if err != nil {
				return err
			}
			if exists {
				return &DuplicateFieldError{Field: check.field}
			}
		}
		return tx.CreateAdministrator(ctx, admin)
	})
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return 0, s.resolveAdministratorDuplicate(ctx, email, in)
		}
		l.Warn("register_administrator_failed", "error", err)
		return 0, err
	}

	n := notify.AdministratorRequest(in.BusinessName, email)
	if err := s.Gateway.Publish(ctx, notify.TopicAdministratorRequests, n); err != nil {
		l.Error("notification_publish_failed", "topic", notify.TopicAdministratorRequests, "error", err)
	}

	l.Info("administrator_registered", "administrator_id", admin.ID)
	return admin.ID, nil
}

// ConfirmAccount activates the account owning the token. An expired,
// unconfirmed token tears down the whole registration so no orphaned
// data survives. Re-confirming a live token re-stamps ConfirmedAt.
func (s *RegistrationService) ConfirmAccount(ctx context.Context, tokenValue string) error {
	l := logging.FromContext(ctx).With("svc", "registration.confirm_account")

	confirmation, err := s.Repo.FindConfirmationToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTokenNotFound
		}
		return err
	}

	if time.Now().After(confirmation.ExpiresAt) {
		user, err := s.Repo.FindUserByConfirmationToken(ctx, tokenValue)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if err := s.Repo.DeleteUserCascade(ctx, user); err != nil {
			l.Error("expired_registration_cleanup_failed", "error", err)
			return err
		}
		l.Info("expired_registration_removed", "user_id", user.ID)
		return ErrTokenExpired
	}

	return s.Repo.WithinTx(ctx, func(tx repo.Store) error {
		now := time.Now()
		confirmation.ConfirmedAt = &now
		if err := tx.SaveConfirmationToken(ctx, confirmation); err != nil {
			return err
		}

		user, err := tx.FindUserByConfirmationToken(ctx, tokenValue)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		user.Account.Activated = true
		if err := tx.SaveAccount(ctx, &user.Account); err != nil {
			return err
		}
		l.Info("account_confirmed", "account_id", user.AccountID)
		return nil
	})
}

func (s *RegistrationService) resolveUserDuplicate(ctx context.Context, email, phone string) error {
	if exists, err := s.Repo.AccountExistsByEmail(ctx, email); err == nil && exists {
		return &DuplicateFieldError{Field: "email"}
	}
	if exists, err := s.Repo.PhoneInUse(ctx, phone); err == nil && exists {
		return &DuplicateFieldError{Field: "phone number"}
	}
	return &DuplicateFieldError{Field: "email"}
}

func (s *RegistrationService) resolveAdministratorDuplicate(ctx context.Context, email string, in RegisterAdministratorInput) error {
	checks := []struct {
		field  string
		exists func() (bool, error)
	}{
		{"email", func() (bool, error) { return s.Repo.AccountExistsByEmail(ctx, email) }},
		{"phone number", func() (bool, error) { return s.Repo.PhoneInUse(ctx, in.PhoneNumber) }},
		{"address", func() (bool, error) { return s.Repo.AdministratorExistsByAddress(ctx, in.Address) }},
		{"cui", func() (bool, error) { return s.Repo.AdministratorExistsByCUI(ctx, in.CUI) }},
		{"iban", func() (bool, error) { return s.Repo.AdministratorExistsByIBAN(ctx, in.IBAN) }},
	}
	for _, check := range checks {
		if exists, err := check.exists(); err == nil && exists {
			return &DuplicateFieldError{Field: check.field}
		}
	}
	return &DuplicateFieldError{Field: "business name"}
}
