package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

// AllocationEditable are the fields of an allocation that the API
// allows writing to. The results are computed by the engine.
type AllocationEditable struct {
	ProgramID ez_uuid.UUID           `json:"programId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	Rules     models.AllocationRules `json:"rules"`
}

type AllocationLinks struct {
	Self    string `json:"self" example:"https://example.com/api/v1/allocations/5c4a9f1e-8d3b-42a6-b1e9-7f2c0d6a3b58"`
	Program string `json:"program" example:"https://example.com/api/v1/programs/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	Confirm string `json:"confirm" example:"https://example.com/api/v1/allocations/5c4a9f1e-8d3b-42a6-b1e9-7f2c0d6a3b58/confirm"`
}

type Allocation struct {
	models.DefaultModel
	AllocationEditable
	Results     models.AllocationResult `json:"results"`
	Status      models.AllocationStatus `json:"status" example:"draft"`
	ConfirmedBy *ez_uuid.UUID           `json:"confirmedBy"`
	ConfirmedAt *time.Time              `json:"confirmedAt"`
	Links       AllocationLinks         `json:"links"`
}

func newAllocation(c *gin.Context, model models.Allocation) Allocation {
	url := httputil.RequestPathV1(c)

	var confirmedBy *ez_uuid.UUID
	if model.ConfirmedBy != nil {
		confirmedBy = &ez_uuid.UUID{UUID: *model.ConfirmedBy}
	}

	return Allocation{
		DefaultModel: model.DefaultModel,
		AllocationEditable: AllocationEditable{
			ProgramID: ez_uuid.UUID{UUID: model.ProgramID},
			Rules:     model.Rules,
		},
		Results:     model.Results,
		Status:      model.Status,
		ConfirmedBy: confirmedBy,
		ConfirmedAt: model.ConfirmedAt,
		Links: AllocationLinks{
			Self:    fmt.Sprintf("%s/allocations/%s", url, model.ID),
			Program: fmt.Sprintf("%s/programs/%s", url, model.ProgramID),
			Confirm: fmt.Sprintf("%s/allocations/%s/confirm", url, model.ID),
		},
	}
}

type AllocationListResponse struct {
	Data       []Allocation `json:"data"`
	Error      *string      `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination  `json:"pagination"`
}

type AllocationResponse struct {
	Error *string     `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *Allocation `json:"data"`
}

// SimulationResponse is the outcome of a pure simulation run.
// Nothing is persisted.
type SimulationResponse struct {
	Error *string                  `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *models.AllocationResult `json:"data"`
}

type AllocationQueryFilter struct {
	ProgramID ez_uuid.UUID            `form:"program"` // By program ID
	Status    models.AllocationStatus `form:"status"`  // By status
	Offset    uint                    `form:"offset" filterField:"false"`
	Limit     int                     `form:"limit" filterField:"false"`
}

func (f AllocationQueryFilter) model() models.Allocation {
	return models.Allocation{
		ProgramID: f.ProgramID.UUID,
		Status:    f.Status,
	}
}
