package consumption

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nordiqa/partnerops/internal/models"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// creditEpsilon defines a tolerance for credit balance comparisons.
const creditEpsilon = 0.000001

// Entry describes one unit of delivered work to record.
type Entry struct {
	CustomerID uint64
	UserID     *uint64
	WorkedAt   time.Time
	Hours      float64
	Credits    float64
	Billable   bool
	Note       string
}

// Recorder persists time entries and applies credit deductions.
type Recorder struct {
	db *gorm.DB
}

// NewRecorder constructs a Recorder backed by GORM.
func NewRecorder(db *gorm.DB) *Recorder { return &Recorder{db: db} }

// Record persists a time entry and deducts its credits in one transaction.
// Credits come first from the customer's period allocation balance, then
// from redeemed credit packages in expiry order. Work recorded past all
// available credits is marked as overdraft rather than rejected; the
// forecast layer surfaces it as negative projected balance.
func (r *Recorder) Record(ctx context.Context, entry Entry) (*models.TimeEntry, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("consumption: nil recorder")
	}
	if entry.CustomerID == 0 {
		return nil, errors.New("consumption: empty customer id")
	}
	if entry.Hours < 0 || entry.Credits < 0 {
		return nil, errors.New("consumption: negative hours or credits")
	}

	var customer models.Customer
	if errFind := r.db.WithContext(ctx).First(&customer, entry.CustomerID).Error; errFind != nil {
		return nil, errFind
	}

	row := models.TimeEntry{
		CustomerID:   entry.CustomerID,
		UserID:       entry.UserID,
		WorkedAt:     normalizeTime(entry.WorkedAt),
		Hours:        entry.Hours,
		Credits:      entry.Credits,
		InternalCost: entry.Hours * customer.InternalHourlyCost,
		Billable:     entry.Billable,
		Note:         strings.TrimSpace(entry.Note),
		ChargedTo:    models.ChargedToAllocation,
	}

	errTx := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&row).Error; errCreate != nil {
			return errCreate
		}
		if !entry.Billable || entry.Credits <= 0 {
			return nil
		}

		fromBalance, errBalance := deductAllocationBalance(ctx, tx, entry.CustomerID, entry.Credits)
		if errBalance != nil {
			return errBalance
		}

		chargedTo := models.ChargedToAllocation
		shortfall := entry.Credits - fromBalance
		if shortfall > creditEpsilon {
			fromPackages, errPackages := deductPackageBalance(ctx, tx, entry.CustomerID, shortfall)
			if errPackages != nil {
				return errPackages
			}
			if fromPackages > creditEpsilon {
				chargedTo = models.ChargedToPackage
			}
			if shortfall-fromPackages > creditEpsilon {
				chargedTo = models.ChargedToOverdraft
			}
		}

		if chargedTo != row.ChargedTo {
			if errUpdate := tx.Model(&models.TimeEntry{}).
				Where("id = ?", row.ID).
				Update("charged_to", chargedTo).Error; errUpdate != nil {
				return errUpdate
			}
			row.ChargedTo = chargedTo
		}
		return nil
	})
	if errTx != nil {
		log.WithError(errTx).Warn("consumption: failed to record entry or deduct credits")
		return nil, errTx
	}
	return &row, nil
}

// deductAllocationBalance draws credits from the customer's period balance
// and returns the amount actually deducted. The balance never goes below
// zero; the remainder is drawn from packages or becomes overdraft.
func deductAllocationBalance(ctx context.Context, tx *gorm.DB, customerID uint64, amount float64) (float64, error) {
	if tx == nil {
		return 0, errors.New("nil tx")
	}
	if amount <= 0 {
		return 0, nil
	}

	var balance models.CreditBalance
	errFind := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("customer_id = ?", customerID).
		Take(&balance).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, errFind
	}
	if balance.Balance <= creditEpsilon {
		return 0, nil
	}

	deduct := balance.Balance
	if deduct > amount {
		deduct = amount
	}
	res := tx.WithContext(ctx).
		Model(&models.CreditBalance{}).
		Where("id = ?", balance.ID).
		Update("balance", gorm.Expr("balance - ?", deduct))
	if res.Error != nil {
		return 0, res.Error
	}
	return deduct, nil
}

// deductPackageBalance draws credits from redeemed packages in expiry order
// and returns the amount actually deducted.
func deductPackageBalance(ctx context.Context, tx *gorm.DB, customerID uint64, amount float64) (float64, error) {
	if tx == nil {
		return 0, errors.New("nil tx")
	}
	if amount <= 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	var packages []models.CreditPackage
	errFind := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("redeemed_customer_id = ? AND is_enabled = ? AND remaining > 0 AND redeemed_at IS NOT NULL", customerID, true).
		Where("(expires_at IS NULL OR expires_at >= ?)", now).
		Order("expires_at ASC NULLS LAST, redeemed_at ASC NULLS LAST, id ASC").
		Find(&packages).Error
	if errFind != nil {
		return 0, errFind
	}

	remaining := amount
	for _, pkg := range packages {
		if remaining <= creditEpsilon {
			break
		}
		if pkg.Remaining <= 0 {
			continue
		}
		deduct := pkg.Remaining
		if deduct > remaining {
			deduct = remaining
		}
		res := tx.WithContext(ctx).
			Model(&models.CreditPackage{}).
			Where("id = ?", pkg.ID).
			Update("remaining", gorm.Expr("remaining - ?", deduct))
		if res.Error != nil {
			return 0, res.Error
		}
		remaining -= deduct
	}
	return amount - remaining, nil
}

// normalizeTime returns a UTC timestamp, defaulting to now if zero.
func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
