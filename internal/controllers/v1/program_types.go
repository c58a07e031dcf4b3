package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/voucherhub/backend/internal/eligibility"
	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
)

// ProgramEditable are the fields of a program that the API allows
// writing to.
type ProgramEditable struct {
	Title         string               `json:"title" example:"Youth culture voucher 2026" default:""`
	Description   string               `json:"description" example:"Support for cultural activities" default:""`
	Status        models.ProgramStatus `json:"status" example:"draft" default:"draft"`
	Budget        decimal.Decimal      `json:"budget" example:"150000" default:"0"` // Total budget in minor units
	MaxApplicants *uint                `json:"maxApplicants" example:"500"`         // Optional cap on the number of applicants
	Schedule      models.Schedule      `json:"schedule"`
	Eligibility   eligibility.Criteria `json:"eligibility"`
}

// model returns the database resource for the API representation of
// the editable fields.
func (editable ProgramEditable) model() models.Program {
	return models.Program{
		Title:         editable.Title,
		Description:   editable.Description,
		Status:        editable.Status,
		Budget:        editable.Budget,
		MaxApplicants: editable.MaxApplicants,
		Schedule:      editable.Schedule,
		Eligibility:   editable.Eligibility,
	}
}

type ProgramLinks struct {
	Self         string `json:"self" example:"https://example.com/api/v1/programs/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	Applications string `json:"applications" example:"https://example.com/api/v1/applications?program=438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	Vouchers     string `json:"vouchers" example:"https://example.com/api/v1/vouchers?program=438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
}

type Program struct {
	models.DefaultModel
	ProgramEditable
	Links ProgramLinks `json:"links"`
}

// newProgram returns the API representation of the resource.
func newProgram(c *gin.Context, model models.Program) Program {
	url := httputil.RequestPathV1(c)

	return Program{
		DefaultModel: model.DefaultModel,
		ProgramEditable: ProgramEditable{
			Title:         model.Title,
			Description:   model.Description,
			Status:        model.Status,
			Budget:        model.Budget,
			MaxApplicants: model.MaxApplicants,
			Schedule:      model.Schedule,
			Eligibility:   model.Eligibility,
		},
		Links: ProgramLinks{
			Self:         fmt.Sprintf("%s/programs/%s", url, model.ID),
			Applications: fmt.Sprintf("%s/applications?program=%s", url, model.ID),
			Vouchers:     fmt.Sprintf("%s/vouchers?program=%s", url, model.ID),
		},
	}
}

type ProgramListResponse struct {
	Data       []Program   `json:"data"`
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination `json:"pagination"`
}

type ProgramCreateResponse struct {
	Error *string           `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  []ProgramResponse `json:"data"`
}

func (r *ProgramCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, ProgramResponse{Error: &s})

	// The final status code is the highest HTTP status code number
	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type ProgramResponse struct {
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *Program `json:"data"`
}

type ProgramQueryFilter struct {
	Title  string               `form:"title" filterField:"false"`  // By title
	Search string               `form:"search" filterField:"false"` // Search for this text in title and description
	Status models.ProgramStatus `form:"status"`                     // By status
	Offset uint                 `form:"offset" filterField:"false"` // The offset of the first program returned. Defaults to 0.
	Limit  int                  `form:"limit" filterField:"false"`  // Maximum number of programs to return. Defaults to 50.
}

func (f ProgramQueryFilter) model() models.Program {
	return models.Program{
		Status: f.Status,
	}
}

// ProgramUpdate is the request body for updating a program. It is a
// separate type from ProgramEditable so that unset fields can be
// told apart from zero values.
type ProgramUpdate struct {
	Title         *string               `json:"title"`
	Description   *string               `json:"description"`
	Status        *models.ProgramStatus `json:"status"`
	Budget        *decimal.Decimal      `json:"budget"`
	MaxApplicants *uint                 `json:"maxApplicants"`
	Schedule      *models.Schedule      `json:"schedule"`
	Eligibility   *eligibility.Criteria `json:"eligibility"`
}

func (u ProgramUpdate) apply(program *models.Program) {
	if u.Title != nil {
		program.Title = *u.Title
	}
	if u.Description != nil {
		program.Description = *u.Description
	}
	if u.Status != nil {
		program.Status = *u.Status
	}
	if u.Budget != nil {
		program.Budget = *u.Budget
	}
	if u.MaxApplicants != nil {
		program.MaxApplicants = u.MaxApplicants
	}
	if u.Schedule != nil {
		program.Schedule = *u.Schedule
	}
	if u.Eligibility != nil {
		program.Eligibility = *u.Eligibility
	}
}
