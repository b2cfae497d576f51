package domain

import (
	"errors"
	"time"
)

// Account is a login principal. Username is case-sensitive and immutable once
// set; PasswordHash never holds the raw secret.
type Account struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	Approved     bool
	CreatedAt    time.Time
}

type Role string

const (
	// RoleSuperAdmin is the single bootstrapped privileged account; it may
	// approve registrations and read the whole fleet.
	RoleSuperAdmin Role = "super_admin"
	// RoleAdmin is the default role for self-registered partner accounts.
	RoleAdmin Role = "admin"
)

// Validate validates the account for persistence. Returns an error describing
// the first validation failure.
func (a *Account) Validate() error {
	if a.Username == "" {
		return errors.New("username is required")
	}
	if a.PasswordHash == "" {
		return errors.New("password hash is required")
	}
	if a.Role == "" {
		a.Role = RoleAdmin
	}
	return nil
}

// BusinessProfile is the partner profile created with an account at
// registration. It has no lifecycle of its own.
type BusinessProfile struct {
	ID           string
	AccountID    string
	BusinessName string
	BusinessType string
	Address      string
	Phone        string
	CreatedAt    time.Time
}

// PendingAccount is an unapproved account joined with its business profile,
// as shown on the admin approval queue.
type PendingAccount struct {
	Account Account
	Profile *BusinessProfile
}
