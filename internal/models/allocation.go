package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Allocation represents one run of the allocation engine for a
// program. In draft status it is a non-binding simulation that can be
// recomputed at will. Once confirmed it is immutable and is the
// source of truth for voucher issuance.
type Allocation struct {
	DefaultModel
	Program     Program `json:"-"`
	ProgramID   uuid.UUID
	Rules       AllocationRules  `gorm:"serializer:json"`
	Results     AllocationResult `gorm:"serializer:json"`
	Status      AllocationStatus `gorm:"default:draft"`
	ConfirmedBy *uuid.UUID
	ConfirmedAt *time.Time
}

type AllocationStatus string

const (
	AllocationStatusDraft     AllocationStatus = "draft"
	AllocationStatusConfirmed AllocationStatus = "confirmed"
)

// AllocationSortBy determines the ranking of eligible applications.
type AllocationSortBy string

const (
	AllocationSortNone    AllocationSortBy = "none"
	AllocationSortByScore AllocationSortBy = "score"
)

// AllocationRules is the configuration of an allocation run.
type AllocationRules struct {
	SortBy        AllocationSortBy `json:"sortBy" example:"score"`            // Ranking of eligible applications
	VoucherAmount decimal.Decimal  `json:"voucherAmount" example:"50000"`    // Fixed amount every selected applicant receives
	MaxRecipients *uint            `json:"maxRecipients" example:"100"`      // Optional cap on the number of recipients
	ExpiryDate    *time.Time       `json:"expiryDate"`                       // Expiry date for vouchers issued from this allocation
	UsageLimit    uint             `json:"usageLimit" example:"1" default:"1"` // Usage limit for issued vouchers
}

// AllocationResult is the outcome of an allocation run.
type AllocationResult struct {
	TotalApplicants    int                   `json:"totalApplicants" example:"20"`    // All applications of the program
	EligibleApplicants int                   `json:"eligibleApplicants" example:"12"` // Applications that passed filtering
	SelectedApplicants int                   `json:"selectedApplicants" example:"3"`  // Applications selected within the budget
	AllocatedBudget    decimal.Decimal       `json:"allocatedBudget" example:"150000"`
	RemainingBudget    decimal.Decimal       `json:"remainingBudget" example:"0"`
	Results            []AllocationSelection `json:"results"`
}

// AllocationSelection is a single selected application.
type AllocationSelection struct {
	ApplicationID uuid.UUID       `json:"applicationId"`
	ApplicantID   uuid.UUID       `json:"applicantId"`
	Amount        decimal.Decimal `json:"amount" example:"50000"`
}

func (a *Allocation) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	if !a.Rules.VoucherAmount.IsPositive() {
		return fmt.Errorf("%w: %s", ErrValidation, ErrAllocationAmountInvalid)
	}

	err := tx.First(&Program{}, "id = ?", a.ProgramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no program with this ID", ErrResourceNotFound)
		}
		return err
	}

	return nil
}

// BeforeUpdate keeps confirmed allocations immutable. The only
// permitted transition is the confirmation itself.
func (a *Allocation) BeforeUpdate(tx *gorm.DB) error {
	if a.Status == AllocationStatusConfirmed && tx.Statement.Changed("Status", "Rules", "Results", "ProgramID") {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrAllocationConfirmed)
	}

	return nil
}

// BeforeDelete refuses deletion of confirmed allocations, they are
// the issuance record for their voucher batch.
func (a *Allocation) BeforeDelete(_ *gorm.DB) error {
	if a.Status == AllocationStatusConfirmed {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrAllocationConfirmed)
	}

	return nil
}

func (a *Allocation) BeforeSave(_ *gorm.DB) error {
	if a.Status == "" {
		a.Status = AllocationStatusDraft
	}

	return nil
}

// Export returns all allocations on this instance for export.
func (Allocation) Export() (json.RawMessage, error) {
	var allocations []Allocation
	err := DB.Where(&Allocation{}).Find(&allocations).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&allocations)
}
