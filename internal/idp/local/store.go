package local

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("local: account not found")
	ErrExists   = errors.New("local: account already exists")
)

// Account es el registro persistido por el provider local.
type Account struct {
	Sub           string    `json:"sub"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	PasswordHash  string    `json:"password_hash"`
	Confirmed     bool      `json:"confirmed"`
	Code          string    `json:"code,omitempty"`
	CodeExpiresAt time.Time `json:"code_expires_at,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Store persiste cuentas por username. Las implementaciones devuelven copias:
// mutar un *Account no cambia el store hasta llamar a Update.
type Store interface {
	Create(ctx context.Context, a *Account) error
	Get(ctx context.Context, username string) (*Account, error)
	Update(ctx context.Context, a *Account) error
	Delete(ctx context.Context, username string) error
}
