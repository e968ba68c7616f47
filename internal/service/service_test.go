package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/quickkick/registration/internal/db"
	"github.com/quickkick/registration/internal/notify"
	"github.com/quickkick/registration/internal/repo"
	"github.com/quickkick/registration/internal/token"
)

type publishedNotification struct {
	Topic   string
	Payload notify.Notification
}

type fakeGateway struct {
	mu        sync.Mutex
	published []publishedNotification
	failWith  error
}

func (g *fakeGateway) Publish(_ context.Context, topic string, n notify.Notification) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.failWith != nil {
		return g.failWith
	}
	g.published = append(g.published, publishedNotification{Topic: topic, Payload: n})
	return nil
}

func (g *fakeGateway) last(t *testing.T) publishedNotification {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.published)
	return g.published[len(g.published)-1]
}

func (g *fakeGateway) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.published)
}

type testEnv struct {
	DB           *gorm.DB
	Store        *repo.GormRepo
	Gateway      *fakeGateway
	Registration *RegistrationService
	Auth         *AuthService
	Codec        *token.Codec
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store := repo.NewGormRepo(gdb)
	gateway := &fakeGateway{}

	codec, err := token.NewCodec([]byte("0123456789abcdef0123456789abcdef"), 24*time.Hour, 12)
	require.NoError(t, err)

	return &testEnv{
		DB:      gdb,
		Store:   store,
		Gateway: gateway,
		Registration: &RegistrationService{
			Repo:            store,
			Gateway:         gateway,
			ConfirmTokenTTL: 15 * time.Minute,
			ConfirmLinkBase: "http://localhost:8080/api/v1.0/auth/confirm-account",
		},
		Auth: &AuthService{
			Repo:    store,
			Codec:   codec,
			Gateway: gateway,
		},
		Codec: codec,
	}
}

func registerTestUser(t *testing.T, env *testEnv, email, phone string) uint {
	t.Helper()
	id, err := env.Registration.RegisterUser(context.Background(), RegisterUserInput{
		Email:       email,
		Password:    "pw123456",
		FirstName:   "Ana",
		LastName:    "Pop",
		PhoneNumber: phone,
	})
	require.NoError(t, err)
	return id
}

func administratorInput(suffix int) RegisterAdministratorInput {
	return RegisterAdministratorInput{
		Email:        fmt.Sprintf("admin%d@x.com", suffix),
		Password:     "pw123456",
		PhoneNumber:  fmt.Sprintf("+4000%d", suffix),
		BusinessName: fmt.Sprintf("Business %d", suffix),
		CUI:          fmt.Sprintf("CUI%d", suffix),
		IBAN:         fmt.Sprintf("RO49AAAA%d", suffix),
		Address:      fmt.Sprintf("Street %d", suffix),
	}
}
