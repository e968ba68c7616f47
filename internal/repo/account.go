package repo

import (
	"context"

	"github.com/quickkick/registration/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, user *models.User) error {
	return translate(r.DB.WithContext(ctx).Create(user).Error)
}

func (r *GormRepo) CreateAdministrator(ctx context.Context, admin *models.Administrator) error {
	return translate(r.DB.WithContext(ctx).Create(admin).Error)
}

func (r *GormRepo) FindAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&account).Error; err != nil {
		return nil, translate(err)
	}
	return &account, nil
}

func (r *GormRepo) AccountExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Account{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) SaveAccount(ctx context.Context, account *models.Account) error {
	return translate(r.DB.WithContext(ctx).Save(account).Error)
}

// PhoneInUse checks both profile tables; a phone number identifies a
// person regardless of the role they registered with.
func (r *GormRepo) PhoneInUse(ctx context.Context, phone string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("phone_number = ?", phone).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return true, nil
	}
	if err := r.DB.WithContext(ctx).Model(&models.Administrator{}).
		Where("phone_number = ?", phone).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = users.account_id").
		Where("accounts.email = ?", email).
		Preload("Account").
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *GormRepo) administratorExists(ctx context.Context, column, value string) (bool, error) {
	var count int64
	if err := r.DB.WithContext(ctx).Model(&models.Administrator{}).
		Where(column+" = ?", value).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) AdministratorExistsByAddress(ctx context.Context, address string) (bool, error) {
	return r.administratorExists(ctx, "address", address)
}

func (r *GormRepo) AdministratorExistsByCUI(ctx context.Context, cui string) (bool, error) {
	return r.administratorExists(ctx, "cui", cui)
}

func (r *GormRepo) AdministratorExistsByIBAN(ctx context.Context, iban string) (bool, error) {
	return r.administratorExists(ctx, "iban", iban)
}

func (r *GormRepo) AdministratorExistsByBusinessName(ctx context.Context, name string) (bool, error) {
	return r.administratorExists(ctx, "business_name", name)
}
