package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review represents the score a reviewer gives an application in
// a specific review round.
type Review struct {
	DefaultModel
	Application   Application `json:"-"`
	ApplicationID uuid.UUID   `gorm:"uniqueIndex:review_application_reviewer_round"`
	ReviewerID    uuid.UUID   `gorm:"uniqueIndex:review_application_reviewer_round"`
	Round         uint        `gorm:"uniqueIndex:review_application_reviewer_round"`
	Score         float64
	Comment       string
	Status        ReviewStatus `gorm:"default:pending"`
}

type ReviewStatus string

const (
	ReviewStatusPending   ReviewStatus = "pending"
	ReviewStatusCompleted ReviewStatus = "completed"
	ReviewStatusLocked    ReviewStatus = "locked"
)

func (r *Review) BeforeSave(_ *gorm.DB) error {
	r.Comment = strings.TrimSpace(r.Comment)

	if r.Status == "" {
		r.Status = ReviewStatusPending
	}

	if r.Round < 1 {
		return fmt.Errorf("%w: %s", ErrValidation, ErrReviewRoundInvalid)
	}

	if r.Score < 0 || r.Score > 100 {
		return fmt.Errorf("%w: %s", ErrValidation, ErrReviewScoreRange)
	}

	return nil
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	_ = r.DefaultModel.BeforeCreate(tx)

	err := tx.First(&Application{}, "id = ?", r.ApplicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no application with this ID", ErrResourceNotFound)
		}
		return err
	}

	// The unique index also catches this, checking here gives a
	// structured error instead of a driver specific one
	var count int64
	err = tx.Model(&Review{}).
		Where("application_id = ? AND reviewer_id = ? AND round = ?", r.ApplicationID, r.ReviewerID, r.Round).
		Count(&count).Error
	if err != nil {
		return err
	}

	if count > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, ErrReviewDuplicateRound)
	}

	return nil
}

// Export returns all reviews on this instance for export.
func (Review) Export() (json.RawMessage, error) {
	var reviews []Review
	err := DB.Where(&Review{}).Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	return json.Marshal(&reviews)
}
