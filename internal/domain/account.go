package domain

import (
	"context"
	"time"
)

// Account is a registered customer. The administrator is not stored here.
type Account struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AccountRepository defines persistence operations for customer accounts.
// Create returns ErrDuplicateKey when the email is already registered.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByID(ctx context.Context, id int64) (*Account, error)
	GetByEmail(ctx context.Context, email string) (*Account, error)
}
