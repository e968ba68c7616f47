package service

import (
	"errors"
	"fmt"
)

var (
	ErrTokenNotFound      = errors.New("confirmation token not associated with any account")
	ErrTokenExpired       = errors.New("confirmation token is expired, please register again")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountNotFound    = errors.New("account not found")
)

// DuplicateFieldError reports which uniqueness check failed. Field is one
// of: email, phone number, address, cui, iban, business name.
type DuplicateFieldError struct {
	Field string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s already in use", e.Field)
}

func IsDuplicateField(err error) bool {
	var dup *DuplicateFieldError
	return errors.As(err, &dup)
}
