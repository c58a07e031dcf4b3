package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/eligibility"
)

// Applicant represents a person or organization that can apply
// for voucher programs.
type Applicant struct {
	DefaultModel
	Type               ApplicantType `gorm:"default:individual"`
	Name               string
	Email              string `gorm:"uniqueIndex"`
	Phone              string
	BirthDate          time.Time
	Address            string
	IncomeLevel        *decimal.Decimal   `gorm:"type:DECIMAL(20,8)"` // Monthly income in minor units, nil when unknown
	VerificationStatus VerificationStatus `gorm:"default:pending"`
}

type ApplicantType string

const (
	ApplicantTypeIndividual   ApplicantType = "individual"
	ApplicantTypeOrganization ApplicantType = "organization"
)

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusRejected VerificationStatus = "rejected"
)

func (a *Applicant) BeforeSave(_ *gorm.DB) error {
	a.Name = strings.TrimSpace(a.Name)
	a.Email = strings.TrimSpace(a.Email)
	a.Address = strings.TrimSpace(a.Address)

	return nil
}

// BeforeDelete refuses deletion while applications reference the
// applicant.
func (a *Applicant) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Application{}).Where("applicant_id = ?", a.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrApplicantHasApplications)
	}

	return nil
}

// EligibilitySubject returns the part of the applicant profile that
// eligibility rules are checked against.
func (a Applicant) EligibilitySubject() eligibility.Subject {
	return eligibility.Subject{
		BirthDate:   a.BirthDate,
		Address:     a.Address,
		IncomeLevel: a.IncomeLevel,
	}
}

// Export returns all applicants on this instance for export.
func (Applicant) Export() (json.RawMessage, error) {
	var applicants []Applicant
	err := DB.Where(&Applicant{}).Find(&applicants).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&applicants)
}
