package model

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"wings-inventory/internal/store"
)

// Account is an identity-provider account. It lives in the hidden accounts
// collection and is never rendered on a screen.
type Account struct {
	ID           string    `mapstructure:"-" json:"id"`
	Email        string    `mapstructure:"email" json:"email"`
	PasswordHash string    `mapstructure:"password_hash" json:"-"`
	TokenVersion string    `mapstructure:"token_version" json:"-"` // bumped to revoke all sessions
	CreatedAt    time.Time `mapstructure:"created_at" json:"created_at"`
}

func (a Account) EntityID() string    { return a.ID }
func (a Account) DisplayName() string { return a.Email }

// NormalizeEmail is the comparison form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SetPassword hashes and sets the account's password
func (a *Account) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (a *Account) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password))
	return err == nil
}

func (a Account) ToDocument() store.Document {
	return store.Document{
		"email":         a.Email,
		"password_hash": a.PasswordHash,
		"token_version": a.TokenVersion,
		"created_at":    Timestamp(a.CreatedAt),
	}
}

// Profile is the public mirror of an account, keyed by the account id.
type Profile struct {
	UID       string    `mapstructure:"uid" json:"uid"`
	Email     string    `mapstructure:"email" json:"email"`
	CreatedAt time.Time `mapstructure:"created_at" json:"created_at"`
	LastLogin time.Time `mapstructure:"last_login" json:"last_login"`
}

func (p Profile) EntityID() string    { return p.UID }
func (p Profile) DisplayName() string { return p.Email }

func (p Profile) ToDocument() store.Document {
	return store.Document{
		"uid":        p.UID,
		"email":      p.Email,
		"created_at": Timestamp(p.CreatedAt),
		"last_login": Timestamp(p.LastLogin),
	}
}
