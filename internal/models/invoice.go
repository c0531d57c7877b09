package models

import "time"

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus int

// InvoiceStatus constants define invoice lifecycle states.
const (
	// InvoiceStatusDraft marks an invoice not yet sent.
	InvoiceStatusDraft InvoiceStatus = 1
	// InvoiceStatusIssued marks an invoice sent to the customer.
	InvoiceStatusIssued InvoiceStatus = 2
	// InvoiceStatusPaid marks an invoice settled by the customer.
	InvoiceStatusPaid InvoiceStatus = 3
	// InvoiceStatusVoid marks a cancelled invoice.
	InvoiceStatusVoid InvoiceStatus = 4
)

// Invoice bills a customer for a reporting period's consumption.
type Invoice struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	CustomerID uint64    `gorm:"not null;index"`        // Billed customer ID.
	Customer   *Customer `gorm:"foreignKey:CustomerID"` // Related customer record.

	Number string `gorm:"type:text;not null;uniqueIndex"` // Invoice number.

	PeriodStart time.Time `gorm:"not null"` // Billing period start.
	PeriodEnd   time.Time `gorm:"not null"` // Billing period end.

	Credits        float64 `gorm:"type:decimal(20,10);not null;default:0"` // Credits billed.
	Hours          float64 `gorm:"type:decimal(20,10);not null;default:0"` // Billable hours covered.
	PricePerCredit float64 `gorm:"type:decimal(20,10);not null;default:0"` // Price per credit, base currency.

	Currency       string  `gorm:"type:varchar(8);not null"`               // Invoice currency code.
	Amount         float64 `gorm:"type:decimal(20,10);not null;default:0"` // Total in the invoice currency.
	FormattedTotal string  `gorm:"type:text"`                              // Display total with currency symbol.

	Status InvoiceStatus `gorm:"not null;default:1"` // Current invoice status.

	IssuedAt *time.Time // Issue timestamp.
	PaidAt   *time.Time // Settlement timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}
