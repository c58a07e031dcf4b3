package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
)

type ApplicantEditable struct {
	Type               models.ApplicantType      `json:"type" example:"individual" default:"individual"`
	Name               string                    `json:"name" example:"Jamie Kim" default:""`
	Email              string                    `json:"email" example:"jamie@example.com" default:""`
	Phone              string                    `json:"phone" example:"010-1234-5678" default:""`
	BirthDate          time.Time                 `json:"birthDate" example:"2001-03-12T00:00:00Z"`
	Address            string                    `json:"address" example:"Seoul Jongno-gu Sajik-ro 1" default:""`
	IncomeLevel        *decimal.Decimal          `json:"incomeLevel" example:"2100000"` // Monthly income in minor units, omit when unknown
	VerificationStatus models.VerificationStatus `json:"verificationStatus" example:"pending" default:"pending"`
}

func (editable ApplicantEditable) model() models.Applicant {
	return models.Applicant{
		Type:               editable.Type,
		Name:               editable.Name,
		Email:              editable.Email,
		Phone:              editable.Phone,
		BirthDate:          editable.BirthDate,
		Address:            editable.Address,
		IncomeLevel:        editable.IncomeLevel,
		VerificationStatus: editable.VerificationStatus,
	}
}

type ApplicantLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/applicants/d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
	Applications string `json:"applications" example:"https://example.com/api/v1/applications?applicant=d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
	Vouchers     string `json:"vouchers" example:"https://example.com/api/v1/vouchers?applicant=d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
}

type Applicant struct {
	models.DefaultModel
	ApplicantEditable
	Links ApplicantLinks `json:"links"`
}

func newApplicant(c *gin.Context, model models.Applicant) Applicant {
	url := httputil.RequestPathV1(c)

	return Applicant{
		DefaultModel: model.DefaultModel,
		ApplicantEditable: ApplicantEditable{
			Type:               model.Type,
			Name:               model.Name,
			Email:              model.Email,
			Phone:              model.Phone,
			BirthDate:          model.BirthDate,
			Address:            model.Address,
			IncomeLevel:        model.IncomeLevel,
			VerificationStatus: model.VerificationStatus,
		},
		Links: ApplicantLinks{
			Self:         fmt.Sprintf("%s/applicants/%s", url, model.ID),
			Applications: fmt.Sprintf("%s/applications?applicant=%s", url, model.ID),
			Vouchers:     fmt.Sprintf("%s/vouchers?applicant=%s", url, model.ID),
		},
	}
}

type ApplicantListResponse struct {
	Data       []Applicant `json:"data"`
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination `json:"pagination"`
}

type ApplicantCreateResponse struct {
	Error *string             `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  []ApplicantResponse `json:"data"`
}

func (r *ApplicantCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, ApplicantResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ApplicantResponse struct {
	Error *string    `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *Applicant `json:"data"`
}

type ApplicantQueryFilter struct {
	Name               string                    `form:"name" filterField:"false"` // By name
	Email              string                    `form:"email"`                    // By email
	VerificationStatus models.VerificationStatus `form:"verificationStatus"`       // By verification status
	Offset             uint                      `form:"offset" filterField:"false"`
	Limit              int                       `form:"limit" filterField:"false"`
}

func (f ApplicantQueryFilter) model() models.Applicant {
	return models.Applicant{
		Email:              f.Email,
		VerificationStatus: f.VerificationStatus,
	}
}

// ApplicantUpdate is the request body for updating an applicant. It
// is a separate type from ApplicantEditable so that unset fields can
// be told apart from zero values.
type ApplicantUpdate struct {
	Type               *models.ApplicantType      `json:"type"`
	Name               *string                    `json:"name"`
	Email              *string                    `json:"email"`
	Phone              *string                    `json:"phone"`
	BirthDate          *time.Time                 `json:"birthDate"`
	Address            *string                    `json:"address"`
	IncomeLevel        *decimal.Decimal           `json:"incomeLevel"`
	VerificationStatus *models.VerificationStatus `json:"verificationStatus"`
}

func (u ApplicantUpdate) apply(applicant *models.Applicant) {
	if u.Type != nil {
		applicant.Type = *u.Type
	}
	if u.Name != nil {
		applicant.Name = *u.Name
	}
	if u.Email != nil {
		applicant.Email = *u.Email
	}
	if u.Phone != nil {
		applicant.Phone = *u.Phone
	}
	if u.BirthDate != nil {
		applicant.BirthDate = *u.BirthDate
	}
	if u.IncomeLevel != nil {
		applicant.IncomeLevel = u.IncomeLevel
	}
	if u.Address != nil {
		applicant.Address = *u.Address
	}
	if u.VerificationStatus != nil {
		applicant.VerificationStatus = *u.VerificationStatus
	}
}
