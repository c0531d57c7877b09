package models

import "time"

// CreditPackage represents a redeemable credit top-up.
type CreditPackage struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	Name      string  `gorm:"type:text;not null"`                     // Package display name.
	Serial    string  `gorm:"type:text;not null;uniqueIndex"`         // Unique package serial.
	Password  string  `gorm:"type:text;not null"`                     // Redemption password.
	Credits   float64 `gorm:"type:decimal(20,10);not null"`           // Original credit value.
	Remaining float64 `gorm:"type:decimal(20,10);not null;default:0"` // Credits left to draw from.
	ValidDays int     `gorm:"not null;default:0"`                     // Validity window in days after redemption.

	ExpiresAt *time.Time // Expiration time, if any.

	IsEnabled bool `gorm:"not null;default:true"` // Whether the package can be redeemed.

	RedeemedCustomerID *uint64   `gorm:"index"`                         // Customer that redeemed the package.
	RedeemedCustomer   *Customer `gorm:"foreignKey:RedeemedCustomerID"` // Redeeming customer record.
	RedeemedAt         *time.Time // Redemption time, if redeemed.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
