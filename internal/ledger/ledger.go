// Package ledger owns the voucher lifecycle: issuance, debits and
// administrative cancellation.
//
// Every debit runs in its own transaction with the voucher row
// locked, so two concurrent debits can never both succeed against a
// balance smaller than their sum. Expiry is checked lazily: a voucher
// past its expiry date is rewritten to expired on the next use
// attempt, there is no background job.
package ledger

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/audit"
	"github.com/voucherhub/backend/internal/models"
)

const (
	codeLength = 12

	// How often issuance retries a colliding voucher code before
	// giving up with ErrVoucherCodeGeneration.
	maxCodeAttempts = 5
)

// IssueRequest carries everything needed to issue a voucher.
type IssueRequest struct {
	ProgramID   uuid.UUID
	ApplicantID uuid.UUID
	Amount      decimal.Decimal
	ExpiryDate  *time.Time
	UsageLimit  uint
	IssuedBy    uuid.UUID
}

// Issue creates a voucher with a unique redemption code and the full
// amount as its starting balance.
func Issue(db *gorm.DB, request IssueRequest) (models.Voucher, error) {
	var voucher models.Voucher

	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		voucher, err = issueTx(tx, request)
		return err
	})
	if err != nil {
		return models.Voucher{}, err
	}

	audit.Emit(audit.Event{
		ActorID:    request.IssuedBy,
		Action:     "issue_voucher",
		TargetType: "voucher",
		TargetID:   voucher.ID,
	})

	return voucher, nil
}

// issueTx issues a voucher inside an existing transaction. It is used
// directly by allocation confirmation so that a batch of vouchers is
// issued atomically.
func issueTx(tx *gorm.DB, request IssueRequest) (models.Voucher, error) {
	if !request.Amount.IsPositive() {
		return models.Voucher{}, fmt.Errorf("%w: %s", models.ErrValidation, models.ErrVoucherAmountNotPositive)
	}

	err := tx.First(&models.Program{}, "id = ?", request.ProgramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Voucher{}, fmt.Errorf("%w: no program with this ID", models.ErrResourceNotFound)
		}
		return models.Voucher{}, err
	}

	err = tx.First(&models.Applicant{}, "id = ?", request.ApplicantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Voucher{}, fmt.Errorf("%w: no applicant with this ID", models.ErrResourceNotFound)
		}
		return models.Voucher{}, err
	}

	usageLimit := request.UsageLimit
	if usageLimit == 0 {
		usageLimit = 1
	}

	// The code space is large enough that collisions are unlikely,
	// but only the unique index makes them impossible. On a
	// violation, generation is re-attempted with a fresh code.
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		voucher := models.Voucher{
			Code:        NewCode(),
			ProgramID:   request.ProgramID,
			ApplicantID: request.ApplicantID,
			Amount:      request.Amount,
			Balance:     request.Amount,
			UsageLimit:  usageLimit,
			Status:      models.VoucherStatusActive,
			ExpiryDate:  request.ExpiryDate,
			IssuedBy:    request.IssuedBy,
		}

		err = tx.Create(&voucher).Error
		if err == nil {
			return voucher, nil
		}

		if !isUniqueViolation(err) {
			return models.Voucher{}, err
		}
	}

	return models.Voucher{}, fmt.Errorf("%w after %d attempts", models.ErrVoucherCodeGeneration, maxCodeAttempts)
}

// UseResult is the outcome of a successful debit.
type UseResult struct {
	RemainingBalance decimal.Decimal
	Status           models.VoucherStatus
}

// Use debits the voucher. The voucher must be owned by the applicant,
// active, not expired and hold at least the requested amount. When
// the balance reaches exactly zero the voucher transitions to used.
func Use(db *gorm.DB, voucherID uuid.UUID, applicantID uuid.UUID, amount decimal.Decimal, merchantName string) (UseResult, error) {
	if !amount.IsPositive() {
		return UseResult{}, fmt.Errorf("%w: %s", models.ErrValidation, models.ErrVoucherAmountNotPositive)
	}

	var result UseResult

	err := db.Transaction(func(tx *gorm.DB) error {
		var voucher models.Voucher
		err := tx.First(&voucher, "id = ? AND applicant_id = ?", voucherID, applicantID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no voucher with this ID", models.ErrResourceNotFound)
			}
			return err
		}

		// Lazy expiry: rewrite the stored status on the use attempt
		if voucher.Status == models.VoucherStatusActive && voucher.Expired(time.Now()) {
			err = tx.Model(&models.Voucher{}).Where("id = ?", voucher.ID).
				Update("status", models.VoucherStatusExpired).Error
			if err != nil {
				return err
			}

			return fmt.Errorf("%w: %s", models.ErrInvalidState, models.ErrVoucherExpired)
		}

		if voucher.Status != models.VoucherStatusActive {
			return fmt.Errorf("%w: %s", models.ErrInvalidState, models.ErrVoucherNotActive)
		}

		if amount.GreaterThan(voucher.Balance) {
			return models.ErrVoucherInsufficientBalance
		}

		// The debit is guarded so that it can never drive the balance
		// negative, even when another debit raced this one between
		// the read above and the update. sqlite does not support
		// SELECT FOR UPDATE, a conditional update works on both
		// supported drivers.
		debit := tx.Model(&models.Voucher{}).
			Where("id = ? AND status = ? AND balance >= ?", voucher.ID, models.VoucherStatusActive, amount).
			Update("balance", gorm.Expr("balance - ?", amount))
		if debit.Error != nil {
			return debit.Error
		}

		if debit.RowsAffected == 0 {
			return models.ErrVoucherInsufficientBalance
		}

		err = tx.First(&voucher, "id = ?", voucher.ID).Error
		if err != nil {
			return err
		}

		if voucher.Balance.IsZero() {
			voucher.Status = models.VoucherStatusUsed
			err = tx.Model(&models.Voucher{}).Where("id = ?", voucher.ID).
				Update("status", models.VoucherStatusUsed).Error
			if err != nil {
				return err
			}
		}

		err = tx.Create(&models.VoucherUsage{
			VoucherID:    voucher.ID,
			Amount:       amount,
			MerchantName: merchantName,
		}).Error
		if err != nil {
			return err
		}

		result = UseResult{RemainingBalance: voucher.Balance, Status: voucher.Status}
		return nil
	})
	if err != nil {
		return UseResult{}, err
	}

	audit.Emit(audit.Event{
		ActorID:    applicantID,
		Action:     "use_voucher",
		TargetType: "voucher",
		TargetID:   voucherID,
	})

	return result, nil
}

// Cancel is the administrative override. It cancels an active voucher
// regardless of its balance. Used, expired and cancelled vouchers are
// terminal and cannot be cancelled again.
func Cancel(db *gorm.DB, voucherID uuid.UUID, actorID uuid.UUID) (models.Voucher, error) {
	var voucher models.Voucher

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&voucher, "id = ?", voucherID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no voucher with this ID", models.ErrResourceNotFound)
			}
			return err
		}

		// Guarded so that only active vouchers transition, used,
		// expired and cancelled are terminal
		cancel := tx.Model(&models.Voucher{}).
			Where("id = ? AND status = ?", voucher.ID, models.VoucherStatusActive).
			Update("status", models.VoucherStatusCancelled)
		if cancel.Error != nil {
			return cancel.Error
		}

		if cancel.RowsAffected == 0 {
			return fmt.Errorf("%w: %s", models.ErrInvalidState, models.ErrVoucherNotActive)
		}

		voucher.Status = models.VoucherStatusCancelled
		return nil
	})
	if err != nil {
		return models.Voucher{}, err
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "cancel_voucher",
		TargetType: "voucher",
		TargetID:   voucherID,
	})

	return voucher, nil
}

// NewCode generates a random redemption code of upper-case letters
// and digits.
func NewCode() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, codeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			panic(err)
		}
		code[i] = chars[n.Int64()]
	}

	return string(code)
}

// isUniqueViolation detects unique index violations across the
// sqlite and postgresql drivers.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}
