package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickkick/registration/internal/models"
	"github.com/quickkick/registration/internal/notify"
	"github.com/quickkick/registration/internal/repo"
)

func TestRegisterUser_CreatesUnactivatedAccountWithToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.Registration.RegisterUser(ctx, RegisterUserInput{
		Email:       "A@X.com",
		Password:    "pw123456",
		FirstName:   "Ana",
		LastName:    "Pop",
		PhoneNumber: "+1000",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	account, err := env.Store.FindAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err, "email must be stored normalized")
	assert.False(t, account.Activated)
	assert.False(t, account.OAuth)
	assert.Equal(t, models.RoleUser, account.Role)
	assert.NotEqual(t, "pw123456", account.PasswordHash)
	require.NotNil(t, account.ConfirmationTokenID)

	user, err := env.Store.FindUserByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, user.PhoneNumber)
	assert.Equal(t, "+1000", *user.PhoneNumber)

	published := env.Gateway.last(t)
	assert.Equal(t, notify.TopicRegistrations, published.Topic)
	assert.Equal(t, "a@x.com", published.Payload.Email)
	assert.False(t, published.Payload.Error)
	assert.Contains(t, published.Payload.Message, "confirm-account/")
}

func TestRegisterUser_ConfirmationWindow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerTestUser(t, env, "a@x.com", "+1000")

	user, err := env.Store.FindUserByConfirmationToken(ctx, tokenValueFor(t, env, "a@x.com"))
	require.NoError(t, err)
	tk := user.Account.ConfirmationToken
	require.NotNil(t, tk)
	assert.WithinDuration(t, tk.CreatedAt.Add(15*time.Minute), tk.ExpiresAt, time.Second)
	assert.Nil(t, tk.ConfirmedAt)
}

func TestRegisterUser_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerTestUser(t, env, "a@x.com", "+1000")

	_, err := env.Registration.RegisterUser(ctx, RegisterUserInput{
		Email:       "A@x.COM",
		Password:    "pw123456",
		FirstName:   "Dan",
		LastName:    "Ion",
		PhoneNumber: "+2000",
	})
	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestRegisterUser_DuplicatePhone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerTestUser(t, env, "a@x.com", "+1000")

	_, err := env.Registration.RegisterUser(ctx, RegisterUserInput{
		Email:       "b@x.com",
		Password:    "pw123456",
		FirstName:   "Dan",
		LastName:    "Ion",
		PhoneNumber: "+1000",
	})
	var dup *DuplicateFieldError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "phone number", dup.Field)
}

func TestRegisterUser_NotificationFailureDoesNotFailRegistration(t *testing.T) {
	env := newTestEnv(t)
	env.Gateway.failWith = errors.New("broker unreachable")

	id, err := env.Registration.RegisterUser(context.Background(), RegisterUserInput{
		Email:       "a@x.com",
		Password:    "pw123456",
		FirstName:   "Ana",
		LastName:    "Pop",
		PhoneNumber: "+1000",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	_, err = env.Store.FindAccountByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
}

func TestRegisterAdministrator_CreatesUnactivatedAccountWithoutToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id, err := env.Registration.RegisterAdministrator(ctx, administratorInput(1))
	require.NoError(t, err)
	require.NotZero(t, id)

	account, err := env.Store.FindAccountByEmail(ctx, "admin1@x.com")
	require.NoError(t, err)
	assert.False(t, account.Activated)
	assert.Equal(t, models.RoleAdministrator, account.Role)
	assert.Nil(t, account.ConfirmationTokenID)

	published := env.Gateway.last(t)
	assert.Equal(t, notify.TopicAdministratorRequests, published.Topic)
}

func TestRegisterAdministrator_UniquenessCheckOrdering(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.Registration.RegisterAdministrator(ctx, administratorInput(1))
	require.NoError(t, err)

	tests := []struct {
		name      string
		mutate    func(*RegisterAdministratorInput)
		wantField string
	}{
		{
			name:      "email checked first",
			mutate:    func(in *RegisterAdministratorInput) { in.Email = "admin1@x.com"; in.Address = "Street 1" },
			wantField: "email",
		},
		{
			name:      "phone checked before address",
			mutate:    func(in *RegisterAdministratorInput) { in.PhoneNumber = "+40001"; in.Address = "Street 1" },
			wantField: "phone number",
		},
		{
			name:      "address fires when email and phone pass",
			mutate:    func(in *RegisterAdministratorInput) { in.Address = "Street 1" },
			wantField: "address",
		},
		{
			name:      "cui after address",
			mutate:    func(in *RegisterAdministratorInput) { in.CUI = "CUI1" },
			wantField: "cui",
		},
		{
			name:      "iban after cui",
			mutate:    func(in *RegisterAdministratorInput) { in.IBAN = "RO49AAAA1" },
			wantField: "iban",
		},
		{
			name:      "business name last",
			mutate:    func(in *RegisterAdministratorInput) { in.BusinessName = "Business 1" },
			wantField: "business name",
		},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := administratorInput(10 + i)
			tt.mutate(&in)

			_, err := env.Registration.RegisterAdministrator(ctx, in)
			var dup *DuplicateFieldError
			require.ErrorAs(t, err, &dup)
			assert.Equal(t, tt.wantField, dup.Field)
		})
	}
}

func TestConfirmAccount_ActivatesAndIsRepeatable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	registerTestUser(t, env, "a@x.com", "+1000")
	value := tokenValueFor(t, env, "a@x.com")

	require.NoError(t, env.Registration.ConfirmAccount(ctx, value))

	account, err := env.Store.FindAccountByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, account.Activated)

	tk, err := env.Store.FindConfirmationToken(ctx, value)
	require.NoError(t, err)
	require.NotNil(t, tk.ConfirmedAt)

	// Double submission of a live token is a no-op, not an error.
	require.NoError(t, env.Registration.ConfirmAccount(ctx, value))
}

func TestConfirmAccount_UnknownToken(t *testing.T) {
	env := newTestEnv(t)

	err := env.Registration.ConfirmAccount(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestConfirmAccount_ExpiredTokenRemovesRegistration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Issue tokens already past their window.
	env.Registration.ConfirmTokenTTL = -time.Minute
	registerTestUser(t, env, "a@x.com", "+1000")
	value := tokenValueFor(t, env, "a@x.com")

	err := env.Registration.ConfirmAccount(ctx, value)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = env.Store.FindAccountByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)
	_, err = env.Store.FindUserByEmail(ctx, "a@x.com")
	assert.ErrorIs(t, err, repo.ErrNotFound)

	// The token went down with the account.
	err = env.Registration.ConfirmAccount(ctx, value)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func tokenValueFor(t *testing.T, env *testEnv, email string) string {
	t.Helper()

	published := env.Gateway.last(t)
	require.Equal(t, email, published.Payload.Email)

	idx := strings.LastIndex(published.Payload.Message, "confirm-account/")
	require.GreaterOrEqual(t, idx, 0)
	rest := published.Payload.Message[idx+len("confirm-account/"):]
	return strings.TrimSpace(strings.SplitN(rest, "\n", 2)[0])
}
