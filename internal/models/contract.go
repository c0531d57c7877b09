package models

import (
	"time"

	"gorm.io/datatypes"
)

// ContractStatus represents the lifecycle state of a contract version.
type ContractStatus int

// ContractStatus constants define contract lifecycle states.
const (
	// ContractStatusDraft marks a version under negotiation.
	ContractStatusDraft ContractStatus = 1
	// ContractStatusActive marks the version currently in force.
	ContractStatusActive ContractStatus = 2
	// ContractStatusSuperseded marks a version replaced by a newer one.
	ContractStatusSuperseded ContractStatus = 3
	// ContractStatusTerminated marks an ended engagement.
	ContractStatusTerminated ContractStatus = 4
)

// Contract stores one version of a customer engagement contract.
// Versions are append-only; activating a version supersedes the
// previously active one.
type Contract struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;index:idx_contracts_customer_version,priority:1"` // Owning customer ID.
	Customer   *Customer `gorm:"foreignKey:CustomerID"`                                    // Related customer record.

	Version int `gorm:"not null;index:idx_contracts_customer_version,priority:2"` // Version number, starting at 1.

	Title string         `gorm:"type:text;not null"`               // Contract title.
	Terms datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'"` // Structured contract terms.

	Status ContractStatus `gorm:"not null;default:1"` // Current version status.

	SignedAt    *time.Time // Signature timestamp.
	EffectiveAt *time.Time // Date the version takes effect.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
