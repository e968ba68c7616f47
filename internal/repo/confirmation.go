package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/quickkick/registration/internal/models"
)

func (r *GormRepo) FindConfirmationToken(ctx context.Context, value string) (*models.ConfirmationToken, error) {
	var token models.ConfirmationToken
	if err := r.DB.WithContext(ctx).Where("token = ?", value).First(&token).Error; err != nil {
		return nil, translate(err)
	}
	return &token, nil
}

func (r *GormRepo) SaveConfirmationToken(ctx context.Context, token *models.ConfirmationToken) error {
	return translate(r.DB.WithContext(ctx).Save(token).Error)
}

func (r *GormRepo) FindUserByConfirmationToken(ctx context.Context, value string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).
		Joins("JOIN accounts ON accounts.id = users.account_id").
		Joins("JOIN confirmation_tokens ON confirmation_tokens.id = accounts.confirmation_token_id").
		Where("confirmation_tokens.token = ?", value).
		Preload("Account.ConfirmationToken").
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// DeleteUserCascade removes the profile, its account and the account's
// confirmation token. Deletion is explicit rather than relying on
// database-level cascades so the behavior holds on every driver.
func (r *GormRepo) DeleteUserCascade(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.User{}, user.ID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Account{}, user.AccountID).Error; err != nil {
			return err
		}
		if user.Account.ConfirmationTokenID != nil {
			if err := tx.Delete(&models.ConfirmationToken{}, *user.Account.ConfirmationTokenID).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
