package models

import (
	"errors"
	"time"
)

// FlatKeyPrefix is the reserved key prefix of the flat credential store.
// Keys outside this prefix belong to other features and must never be
// touched by credential maintenance.
const FlatKeyPrefix = "direct_password_"

// FlatCredentialKey returns the flat-store key for an account number.
func FlatCredentialKey(accountNumber string) string {
	return FlatKeyPrefix + accountNumber
}

// Credential is a cached account password together with the link handle it
// was verified against. Identity is (account_number, institution_code); a
// re-authentication updates the row in place. Only the credential store
// mutates credentials.
type Credential struct {
	AccountNumber   string    `json:"account_number" gorm:"primaryKey;size:64"`
	InstitutionCode string    `json:"institution_code" gorm:"primaryKey;size:8"`
	Password        string    `json:"-" gorm:"not null"`
	LinkHandle      string    `json:"link_handle"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TableName sets the credentials table name.
func (Credential) TableName() string {
	return "account_credentials"
}

// Validate validates the credential before it is written.
func (c *Credential) Validate() error {
	if c.AccountNumber == "" {
		return errors.New("account_number is required")
	}
	if c.InstitutionCode == "" {
		return errors.New("institution_code is required")
	}
	if c.Password == "" {
		return errors.New("password is required")
	}
	return nil
}
