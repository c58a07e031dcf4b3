package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Voucher represents a spendable, balance-tracked voucher issued to
// an applicant. Vouchers are never deleted, terminal states are
// retained for the audit trail.
type Voucher struct {
	DefaultModel
	Code        string    `gorm:"uniqueIndex"` // Redemption code
	Program     Program   `json:"-"`
	ProgramID   uuid.UUID
	Applicant   Applicant `json:"-"`
	ApplicantID uuid.UUID
	Amount      decimal.Decimal `gorm:"type:DECIMAL(20,8)"` // Fixed at issuance
	Balance     decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	UsageLimit  uint            `gorm:"default:1"`
	Status      VoucherStatus   `gorm:"default:active"`
	ExpiryDate  *time.Time
	IssuedBy    uuid.UUID
}

type VoucherStatus string

const (
	VoucherStatusActive    VoucherStatus = "active"
	VoucherStatusUsed      VoucherStatus = "used"
	VoucherStatusExpired   VoucherStatus = "expired"
	VoucherStatusCancelled VoucherStatus = "cancelled"
)

// Expired reports whether the voucher is past its expiry date,
// regardless of the stored status. Expiry is checked lazily on use,
// there is no background job rewriting statuses.
func (v Voucher) Expired(now time.Time) bool {
	return v.ExpiryDate != nil && now.After(*v.ExpiryDate)
}

// AfterSave verifies the balance invariant after every write.
func (v *Voucher) AfterSave(_ *gorm.DB) error {
	if v.Balance.IsNegative() || v.Balance.GreaterThan(v.Amount) {
		return fmt.Errorf("%w: the voucher balance must be between zero and the voucher amount", ErrGeneral)
	}

	return nil
}

// VoucherUsage is one debit against a voucher. Usage records are
// immutable once written.
type VoucherUsage struct {
	DefaultModel
	Voucher      Voucher `json:"-"`
	VoucherID    uuid.UUID
	Amount       decimal.Decimal `gorm:"type:DECIMAL(20,8)"`
	MerchantName string
	UsageDate    time.Time
}

func (u *VoucherUsage) BeforeCreate(tx *gorm.DB) error {
	_ = u.DefaultModel.BeforeCreate(tx)

	if u.UsageDate.IsZero() {
		u.UsageDate = time.Now().In(time.UTC)
	}

	return nil
}

// Export returns all vouchers on this instance for export.
func (Voucher) Export() (json.RawMessage, error) {
	var vouchers []Voucher
	err := DB.Where(&Voucher{}).Find(&vouchers).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&vouchers)
}

// Export returns all voucher usage records on this instance for export.
func (VoucherUsage) Export() (json.RawMessage, error) {
	var usage []VoucherUsage
	err := DB.Where(&VoucherUsage{}).Find(&usage).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&usage)
}
