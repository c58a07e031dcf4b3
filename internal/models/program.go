package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/eligibility"
)

// Program represents a voucher program. It is the highest level of
// organization on the platform, all other resources reference it
// directly or transitively.
type Program struct {
	DefaultModel
	Title         string
	Description   string
	Status        ProgramStatus        `gorm:"default:draft"`
	Budget        decimal.Decimal      `gorm:"type:DECIMAL(20,8)"` // Total budget in minor units
	MaxApplicants *uint                // Optional cap on the number of applicants
	Schedule      Schedule             `gorm:"embedded"`
	Eligibility   eligibility.Criteria `gorm:"serializer:json"`
}

// Schedule holds the timeline of a program. All timestamps are
// optional, an unset timestamp does not constrain anything.
type Schedule struct {
	ApplicationStart *time.Time `json:"applicationStart"`
	ApplicationEnd   *time.Time `json:"applicationEnd"`
	ReviewStart      *time.Time `json:"reviewStart"`
	ReviewEnd        *time.Time `json:"reviewEnd"`
	AnnouncementDate *time.Time `json:"announcementDate"`
}

type ProgramStatus string

const (
	ProgramStatusDraft     ProgramStatus = "draft"
	ProgramStatusPublished ProgramStatus = "published"
	ProgramStatusClosed    ProgramStatus = "closed"
	ProgramStatusCompleted ProgramStatus = "completed"
)

// Valid reports whether the status is one of the known program states.
func (s ProgramStatus) Valid() bool {
	switch s {
	case ProgramStatusDraft, ProgramStatusPublished, ProgramStatusClosed, ProgramStatusCompleted:
		return true
	}

	return false
}

func (p *Program) BeforeSave(_ *gorm.DB) error {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)

	if p.Status == "" {
		p.Status = ProgramStatusDraft
	}

	if !p.Status.Valid() {
		return fmt.Errorf("%w: %s: %s", ErrValidation, ErrProgramStatusInvalid, p.Status)
	}

	if p.Budget.IsNegative() {
		return fmt.Errorf("%w: %s", ErrValidation, ErrProgramBudgetNegative)
	}

	if p.Schedule.ApplicationStart != nil && p.Schedule.ApplicationEnd != nil &&
		p.Schedule.ApplicationEnd.Before(*p.Schedule.ApplicationStart) {
		return fmt.Errorf("%w: %s", ErrValidation, ErrProgramScheduleInvalid)
	}

	return nil
}

// BeforeDelete refuses deletion while applications reference the
// program. Usage records and vouchers reference applications
// transitively, so this keeps the whole tree intact.
func (p *Program) BeforeDelete(tx *gorm.DB) error {
	var count int64
	err := tx.Model(&Application{}).Where("program_id = ?", p.ID).Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrProgramHasApplications)
	}

	return nil
}

// AcceptsApplications returns nil when the program accepts
// applications at the given time.
func (p Program) AcceptsApplications(now time.Time) error {
	if p.Status != ProgramStatusPublished {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrProgramNotAcceptingRequests)
	}

	if p.Schedule.ApplicationStart != nil && now.Before(*p.Schedule.ApplicationStart) {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrProgramOutsidePeriod)
	}

	if p.Schedule.ApplicationEnd != nil && now.After(*p.Schedule.ApplicationEnd) {
		return fmt.Errorf("%w: %s", ErrInvalidState, ErrProgramOutsidePeriod)
	}

	return nil
}

// getProgram returns the program with the ID or a wrapped
// ErrResourceNotFound.
func getProgram(tx *gorm.DB, id any) (Program, error) {
	var program Program
	err := tx.First(&program, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Program{}, fmt.Errorf("%w: no program with this ID", ErrResourceNotFound)
		}
		return Program{}, err
	}

	return program, nil
}

// Export returns all programs on this instance for export.
func (Program) Export() (json.RawMessage, error) {
	var programs []Program
	err := DB.Where(&Program{}).Find(&programs).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&programs)
}
