package models

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Application represents the application of an applicant for a
// program.
type Application struct {
	DefaultModel
	ApplicationNumber string    `gorm:"uniqueIndex"` // Human-readable reference number
	Applicant         Applicant `json:"-"`
	ApplicantID       uuid.UUID
	Program           Program `json:"-"`
	ProgramID         uuid.UUID
	Status            ApplicationStatus `gorm:"default:submitted"`
	FormData          json.RawMessage   // The submitted form content
	Score             *float64          // Set by review, nil until scored
	Notes             string
	SubmittedAt       time.Time
}

type ApplicationStatus string

const (
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
	ApplicationStatusCompleted   ApplicationStatus = "completed"
)

// Valid reports whether the status is one of the known application states.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusSubmitted, ApplicationStatusUnderReview, ApplicationStatusApproved, ApplicationStatusRejected, ApplicationStatusCompleted:
		return true
	}

	return false
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	_ = a.DefaultModel.BeforeCreate(tx)

	if a.ApplicationNumber == "" {
		a.ApplicationNumber = newApplicationNumber()
	}

	if a.SubmittedAt.IsZero() {
		a.SubmittedAt = time.Now().In(time.UTC)
	}

	err := a.checkIntegrity(tx)
	if err != nil {
		return err
	}

	// At most one non-rejected application per applicant and program
	var count int64
	err = tx.Model(&Application{}).
		Where("applicant_id = ? AND program_id = ? AND status != ?", a.ApplicantID, a.ProgramID, ApplicationStatusRejected).
		Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, ErrApplicationDuplicate)
	}

	return nil
}

// BeforeUpdate keeps completed applications immutable and verifies
// referential integrity when references change.
func (a *Application) BeforeUpdate(tx *gorm.DB) error {
	// The stored status decides immutability, the transition into
	// completed itself is allowed
	var stored Application
	err := tx.First(&stored, "id = ?", a.ID).Error
	if err == nil && stored.Status == ApplicationStatusCompleted {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrApplicationCompleted)
	}

	if tx.Statement.Changed("ApplicantID") || tx.Statement.Changed("ProgramID") {
		toSave := tx.Statement.Dest.(Application)
		return toSave.checkIntegrity(tx)
	}

	return nil
}

func (a *Application) BeforeSave(_ *gorm.DB) error {
	if a.Status == "" {
		a.Status = ApplicationStatusSubmitted
	}

	if !a.Status.Valid() {
		return fmt.Errorf("%w: %s: %s", ErrValidation, ErrApplicationStatus, a.Status)
	}

	return nil
}

func (a Application) checkIntegrity(tx *gorm.DB) error {
	err := tx.First(&Program{}, "id = ?", a.ProgramID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no program with this ID", ErrResourceNotFound)
		}
		return err
	}

	err = tx.First(&Applicant{}, "id = ?", a.ApplicantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no applicant with this ID", ErrResourceNotFound)
		}
		return err
	}

	return nil
}

// newApplicationNumber generates a reference number in the
// "APP-<millis>-<suffix>" format that applicants quote in support
// requests.
func newApplicationNumber() string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	suffix := make([]byte, 9)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			panic(err)
		}
		suffix[i] = chars[n.Int64()]
	}

	return fmt.Sprintf("APP-%d-%s", time.Now().UnixMilli(), suffix)
}

// Export returns all applications on this instance for export.
func (Application) Export() (json.RawMessage, error) {
	var applications []Application
	err := DB.Where(&Application{}).Find(&applications).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&applications)
}
