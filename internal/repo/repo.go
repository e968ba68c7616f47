package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/quickkick/registration/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence boundary consumed by the workflows. All
// operations are synchronous; WithinTx runs fn against a store bound to
// a single transaction so uniqueness checks and inserts cannot race.
type Store interface {
	WithinTx(ctx context.Context, fn func(Store) error) error

	CreateUser(ctx context.Context, user *models.User) error
	CreateAdministrator(ctx context.Context, admin *models.Administrator) error

	FindAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	AccountExistsByEmail(ctx context.Context, email string) (bool, error)
	SaveAccount(ctx context.Context, account *models.Account) error

	PhoneInUse(ctx context.Context, phone string) (bool, error)
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	AdministratorExistsByAddress(ctx context.Context, address string) (bool, error)
	AdministratorExistsByCUI(ctx context.Context, cui string) (bool, error)
	AdministratorExistsByIBAN(ctx context.Context, iban string) (bool, error)
	AdministratorExistsByBusinessName(ctx context.Context, name string) (bool, error)

	FindConfirmationToken(ctx context.Context, value string) (*models.ConfirmationToken, error)
	SaveConfirmationToken(ctx context.Context, token *models.ConfirmationToken) error
	FindUserByConfirmationToken(ctx context.Context, value string) (*models.User, error)
	DeleteUserCascade(ctx context.Context, user *models.User) error
}

type GormRepo struct {
	DB *gorm.DB
}

func NewGormRepo(db *gorm.DB) *GormRepo {
	return &GormRepo{DB: db}
}

func (r *GormRepo) WithinTx(ctx context.Context, fn func(Store) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

// translate maps gorm failures onto the store sentinels so callers never
// depend on driver error types.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
