package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

// ReviewEditable are the fields of a review that the API allows
// writing to.
type ReviewEditable struct {
	ApplicationID ez_uuid.UUID        `json:"applicationId" example:"9b3a2f6e-0d2c-4db3-8cf7-2d1c5b6e9f10"`
	ReviewerID    ez_uuid.UUID        `json:"reviewerId" example:"6f7a1d20-31f2-4f6d-9e91-47a4c2f0b6d2"`
	Round         uint                `json:"round" example:"1" default:"1"`
	Score         float64             `json:"score" example:"87.5"` // Between 0 and 100
	Comment       string              `json:"comment" example:"Meets all criteria" default:""`
	Status        models.ReviewStatus `json:"status" example:"pending" default:"pending"`
}

func (editable ReviewEditable) model() models.Review {
	return models.Review{
		ApplicationID: editable.ApplicationID.UUID,
		ReviewerID:    editable.ReviewerID.UUID,
		Round:         editable.Round,
		Score:         editable.Score,
		Comment:       editable.Comment,
		Status:        editable.Status,
	}
}

type ReviewLinks struct {
	Self        string `json:"self" example:"https://example.com/api/v1/reviews/0e3f9d4a-6b2c-48a1-9f57-3c8d2e1b0a94"`
	Application string `json:"application" example:"https://example.com/api/v1/applications/9b3a2f6e-0d2c-4db3-8cf7-2d1c5b6e9f10"`
}

type Review struct {
	models.DefaultModel
	ReviewEditable
	Links ReviewLinks `json:"links"`
}

func newReview(c *gin.Context, model models.Review) Review {
	url := httputil.RequestPathV1(c)

	return Review{
		DefaultModel: model.DefaultModel,
		ReviewEditable: ReviewEditable{
			ApplicationID: ez_uuid.UUID{UUID: model.ApplicationID},
			ReviewerID:    ez_uuid.UUID{UUID: model.ReviewerID},
			Round:         model.Round,
			Score:         model.Score,
			Comment:       model.Comment,
			Status:        model.Status,
		},
		Links: ReviewLinks{
			Self:        fmt.Sprintf("%s/reviews/%s", url, model.ID),
			Application: fmt.Sprintf("%s/applications/%s", url, model.ApplicationID),
		},
	}
}

type ReviewListResponse struct {
	Data       []Review    `json:"data"`
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination `json:"pagination"`
}

type ReviewCreateResponse struct {
	Error *string          `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  []ReviewResponse `json:"data"`
}

func (r *ReviewCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, ReviewResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ReviewResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *Review `json:"data"`
}

type ReviewQueryFilter struct {
	ApplicationID ez_uuid.UUID        `form:"application"` // By application ID
	ReviewerID    ez_uuid.UUID        `form:"reviewer"`    // By reviewer ID
	Round         uint                `form:"round"`       // By review round
	Status        models.ReviewStatus `form:"status"`      // By status
	Offset        uint                `form:"offset" filterField:"false"`
	Limit         int                 `form:"limit" filterField:"false"`
}

func (f ReviewQueryFilter) model() models.Review {
	return models.Review{
		ApplicationID: f.ApplicationID.UUID,
		ReviewerID:    f.ReviewerID.UUID,
		Round:         f.Round,
		Status:        f.Status,
	}
}

// ReviewUpdate is the request body for updating a review.
type ReviewUpdate struct {
	Score   *float64             `json:"score"`
	Comment *string              `json:"comment"`
	Status  *models.ReviewStatus `json:"status"`
}

func (u ReviewUpdate) apply(review *models.Review) {
	if u.Score != nil {
		review.Score = *u.Score
	}
	if u.Comment != nil {
		review.Comment = *u.Comment
	}
	if u.Status != nil {
		review.Status = *u.Status
	}
}
