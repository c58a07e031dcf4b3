package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/audit"
	"github.com/voucherhub/backend/internal/models"
)

// ConfirmAllocation confirms a draft allocation and issues one
// voucher per selected applicant. The confirmation and the whole
// batch issuance run in a single transaction: either the allocation
// is confirmed with all its vouchers, or nothing changes.
//
// Confirming an already confirmed allocation is a no-op, so retried
// requests do not issue a second voucher set.
func ConfirmAllocation(db *gorm.DB, allocationID uuid.UUID, actorID uuid.UUID) (models.Allocation, error) {
	var allocation models.Allocation
	confirmed := false

	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.First(&allocation, "id = ?", allocationID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: no allocation with this ID", models.ErrResourceNotFound)
			}
			return err
		}

		if allocation.Status == models.AllocationStatusConfirmed {
			return nil
		}

		// Guarded on the draft status so that two concurrent confirm
		// requests cannot both issue the voucher batch
		now := time.Now().In(time.UTC)
		confirm := tx.Model(&models.Allocation{}).
			Where("id = ? AND status = ?", allocation.ID, models.AllocationStatusDraft).
			Updates(map[string]any{
				"status":       models.AllocationStatusConfirmed,
				"confirmed_by": actorID,
				"confirmed_at": now,
			})
		if confirm.Error != nil {
			return confirm.Error
		}

		if confirm.RowsAffected == 0 {
			return nil
		}

		allocation.Status = models.AllocationStatusConfirmed
		allocation.ConfirmedBy = &actorID
		allocation.ConfirmedAt = &now

		for _, selection := range allocation.Results.Results {
			_, err = issueTx(tx, IssueRequest{
				ProgramID:   allocation.ProgramID,
				ApplicantID: selection.ApplicantID,
				Amount:      selection.Amount,
				ExpiryDate:  allocation.Rules.ExpiryDate,
				UsageLimit:  allocation.Rules.UsageLimit,
				IssuedBy:    actorID,
			})
			if err != nil {
				return err
			}
		}

		confirmed = true
		return nil
	})
	if err != nil {
		return models.Allocation{}, err
	}

	if confirmed {
		audit.Emit(audit.Event{
			ActorID:    actorID,
			Action:     "confirm_allocation",
			TargetType: "allocation",
			TargetID:   allocation.ID,
		})
	}

	return allocation, nil
}
