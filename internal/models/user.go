package models

import "time"

// User represents a partner-side member account.
type User struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Username string `gorm:"type:text;not null;uniqueIndex"` // Unique login name.
	Email    string `gorm:"type:text;index"`                // Contact email.
	Name     string `gorm:"type:text"`                      // Display name.
	Password string `gorm:"type:text;not null"`             // Hashed password.

	Active   bool `gorm:"not null;default:true"`  // Whether the account can sign in.
	Disabled bool `gorm:"not null;default:false"` // Administrative lockout flag.

	TOTPSecret string `gorm:"type:text"` // TOTP secret for MFA; empty when disabled.

	CustomerID *uint64   `gorm:"index"`                 // Customer the member belongs to.
	Customer   *Customer `gorm:"foreignKey:CustomerID"` // Related customer record.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
