package models_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/voucherhub/backend/internal/models"
)

func (suite *TestSuiteStandard) testApplication() models.Application {
	program := suite.createTestProgram(models.Program{})
	applicant := suite.createTestApplicant(models.Applicant{})

	return suite.createTestApplication(models.Application{
		ProgramID:   program.ID,
		ApplicantID: applicant.ID,
	})
}

func (suite *TestSuiteStandard) TestReviewDefaults() {
	application := suite.testApplication()

	review := suite.createTestReview(models.Review{
		ApplicationID: application.ID,
		ReviewerID:    uuid.New(),
		Score:         80,
	})

	assert.Equal(suite.T(), models.ReviewStatusPending, review.Status)
}

func (suite *TestSuiteStandard) TestReviewTrimWhitespace() {
	application := suite.testApplication()

	comment := "  Solid application, complete documents  "
	review := suite.createTestReview(models.Review{
		ApplicationID: application.ID,
		ReviewerID:    uuid.New(),
		Score:         80,
		Comment:       comment,
	})

	assert.Equal(suite.T(), strings.TrimSpace(comment), review.Comment)
}

func (suite *TestSuiteStandard) TestReviewBeforeSave() {
	application := suite.testApplication()

	tests := []struct {
		name   string
		round  uint
		score  float64
		err    error
	}{
		{"Round zero", 0, 50, models.ErrReviewRoundInvalid},
		{"Score below zero", 1, -1, models.ErrReviewScoreRange},
		{"Score above hundred", 1, 100.5, models.ErrReviewScoreRange},
		{"Score at the upper bound", 1, 100, nil},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			review := models.Review{
				ApplicationID: application.ID,
				ReviewerID:    uuid.New(),
				Round:         tt.round,
				Score:         tt.score,
			}

			err := models.DB.Create(&review).Error
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestReviewBeforeCreate() {
	application := suite.testApplication()
	reviewer := uuid.New()

	_ = suite.createTestReview(models.Review{
		ApplicationID: application.ID,
		ReviewerID:    reviewer,
		Score:         70,
	})

	// Same reviewer, same round
	duplicate := models.Review{
		ApplicationID: application.ID,
		ReviewerID:    reviewer,
		Round:         1,
		Score:         75,
	}
	err := models.DB.Create(&duplicate).Error
	assert.ErrorIs(suite.T(), err, models.ErrDuplicate)

	// The same reviewer can score again in a later round
	_ = suite.createTestReview(models.Review{
		ApplicationID: application.ID,
		ReviewerID:    reviewer,
		Round:         2,
		Score:         75,
	})

	// Unknown application
	orphan := models.Review{
		ApplicationID: uuid.New(),
		ReviewerID:    reviewer,
		Round:         1,
		Score:         75,
	}
	err = models.DB.Create(&orphan).Error
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}
