package models

import "time"

type Role string

const (
	RoleUser          Role = "ROLE_USER"
	RoleAdministrator Role = "ROLE_ADMINISTRATOR"
	RoleAdmin         Role = "ROLE_ADMIN"
)

// Account is the identity root. Activated is true only for confirmed or
// OAuth-linked accounts. PasswordHash is empty for OAuth-linked accounts.
type Account struct {
	ID                  uint               `gorm:"primaryKey;autoIncrement" json:"id"`
	Email               string             `gorm:"unique;not null"          json:"email"`
	PasswordHash        string             `json:"-"`
	Role                Role               `gorm:"not null"                 json:"role"`
	Activated           bool               `gorm:"not null;default:false"   json:"activated"`
	OAuth               bool               `gorm:"not null;default:false"   json:"oauth"`
	ConfirmationTokenID *uint              `json:"-"`
	ConfirmationToken   *ConfirmationToken `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// ConfirmationToken is a single-use activation credential. ConfirmedAt is
// set at most once and only before ExpiresAt.
type ConfirmationToken struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Token       string     `gorm:"unique;not null"          json:"token"`
	CreatedAt   time.Time  `gorm:"not null"                 json:"created_at"`
	ExpiresAt   time.Time  `gorm:"not null"                 json:"expires_at"`
	ConfirmedAt *time.Time `json:"confirmed_at"`
}

// User is the profile record for ROLE_USER accounts. PhoneNumber is nil
// for OAuth-created accounts until the user completes the profile; the
// unique index must not trip over two absent numbers.
type User struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID   uint    `gorm:"index;not null"           json:"account_id"`
	Account     Account `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	FirstName   string  `gorm:"not null" json:"first_name"`
	LastName    string  `gorm:"not null" json:"last_name"`
	PhoneNumber *string `gorm:"unique"   json:"phone_number"`
}

// Administrator is the profile record for ROLE_ADMINISTRATOR accounts.
// Business identifiers are globally unique.
type Administrator struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	AccountID    uint    `gorm:"index;not null"           json:"account_id"`
	Account      Account `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	PhoneNumber  string  `gorm:"unique;not null" json:"phone_number"`
	BusinessName string  `gorm:"unique;not null" json:"business_name"`
	CUI          string  `gorm:"column:cui;unique;not null" json:"cui"`
	IBAN         string  `gorm:"column:iban;unique;not null" json:"iban"`
	Address      string  `gorm:"unique;not null" json:"address"`
}
