package v1

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

// ApplicationEditable are the fields of an application that the API
// allows writing to on intake. The application number, score and
// submission time are owned by the backend.
type ApplicationEditable struct {
	ApplicantID ez_uuid.UUID    `json:"applicantId" example:"d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
	ProgramID   ez_uuid.UUID    `json:"programId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	FormData    json.RawMessage `json:"formData" swaggertype:"object"` // The submitted form content
	Notes       string          `json:"notes" example:"" default:""`
}

func (editable ApplicationEditable) model() models.Application {
	return models.Application{
		ApplicantID: editable.ApplicantID.UUID,
		ProgramID:   editable.ProgramID.UUID,
		FormData:    editable.FormData,
		Notes:       editable.Notes,
	}
}

type ApplicationLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/applications/9b3a2f6e-0d2c-4db3-8cf7-2d1c5b6e9f10"`
	Applicant string `json:"applicant" example:"https://example.com/api/v1/applicants/d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
	Program   string `json:"program" example:"https://example.com/api/v1/programs/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	Reviews   string `json:"reviews" example:"https://example.com/api/v1/reviews?application=9b3a2f6e-0d2c-4db3-8cf7-2d1c5b6e9f10"`
}

type Application struct {
	models.DefaultModel
	ApplicationEditable
	ApplicationNumber string                   `json:"applicationNumber" example:"APP-1755000000000-7KQ2D9XWM"`
	Status            models.ApplicationStatus `json:"status" example:"submitted"`
	Score             *float64                 `json:"score" example:"87.5"` // Set by review, null until scored
	SubmittedAt       time.Time                `json:"submittedAt"`
	Links             ApplicationLinks         `json:"links"`
}

func newApplication(c *gin.Context, model models.Application) Application {
	url := httputil.RequestPathV1(c)

	return Application{
		DefaultModel: model.DefaultModel,
		ApplicationEditable: ApplicationEditable{
			ApplicantID: ez_uuid.UUID{UUID: model.ApplicantID},
			ProgramID:   ez_uuid.UUID{UUID: model.ProgramID},
			FormData:    model.FormData,
			Notes:       model.Notes,
		},
		ApplicationNumber: model.ApplicationNumber,
		Status:            model.Status,
		Score:             model.Score,
		SubmittedAt:       model.SubmittedAt,
		Links: ApplicationLinks{
			Self:      fmt.Sprintf("%s/applications/%s", url, model.ID),
			Applicant: fmt.Sprintf("%s/applicants/%s", url, model.ApplicantID),
			Program:   fmt.Sprintf("%s/programs/%s", url, model.ProgramID),
			Reviews:   fmt.Sprintf("%s/reviews?application=%s", url, model.ID),
		},
	}
}

type ApplicationListResponse struct {
	Data       []Application `json:"data"`
	Error      *string       `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination   `json:"pagination"`
}

type ApplicationCreateResponse struct {
	Error *string               `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  []ApplicationResponse `json:"data"`
}

func (r *ApplicationCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, ApplicationResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ApplicationResponse struct {
	Error *string      `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *Application `json:"data"`
}

type ApplicationQueryFilter struct {
	Number      string                   `form:"number" filterField:"false"` // By application number
	ApplicantID ez_uuid.UUID             `form:"applicant"`                  // By applicant ID
	ProgramID   ez_uuid.UUID             `form:"program"`                    // By program ID
	Status      models.ApplicationStatus `form:"status"`                     // By status
	Offset      uint                     `form:"offset" filterField:"false"`
	Limit       int                      `form:"limit" filterField:"false"`
}

func (f ApplicationQueryFilter) model() models.Application {
	return models.Application{
		ApplicantID: f.ApplicantID.UUID,
		ProgramID:   f.ProgramID.UUID,
		Status:      f.Status,
	}
}

// ApplicationUpdate is the request body for updating an application.
// Administrators move applications through the workflow with it,
// applicants themselves only ever create.
type ApplicationUpdate struct {
	Status   *models.ApplicationStatus `json:"status"`
	FormData json.RawMessage           `json:"formData" swaggertype:"object"`
	Notes    *string                   `json:"notes"`
	Score    *float64                  `json:"score"`
}

func (u ApplicationUpdate) apply(application *models.Application) {
	if u.Status != nil {
		application.Status = *u.Status
	}
	if u.FormData != nil {
		application.FormData = u.FormData
	}
	if u.Notes != nil {
		application.Notes = *u.Notes
	}
	if u.Score != nil {
		application.Score = u.Score
	}
}
