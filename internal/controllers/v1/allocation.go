package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/voucherhub/backend/internal/allocation"
	"github.com/voucherhub/backend/internal/audit"
	"github.com/voucherhub/backend/internal/httperror"
	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/ledger"
	"github.com/voucherhub/backend/internal/models"
)

// RegisterAllocationRoutes registers the routes for allocations with
// the RouterGroup that is passed.
func RegisterAllocationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsAllocations)
		r.GET("", GetAllocations)
		r.POST("", CreateAllocation)
	}
	{
		r.OPTIONS("/simulate", OptionsAllocationSimulate)
		r.POST("/simulate", SimulateAllocation)
	}
	{
		r.OPTIONS("/:id", OptionsAllocationDetail)
		r.GET("/:id", GetAllocation)
		r.DELETE("/:id", DeleteAllocation)
	}
	{
		r.OPTIONS("/:id/confirm", OptionsAllocationConfirm)
		r.POST("/:id/confirm", ConfirmAllocation)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations [options]
func OptionsAllocations(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Router			/v1/allocations/simulate [options]
func OptionsAllocationSimulate(c *gin.Context) {
	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocations/{id} [options]
func OptionsAllocationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Allocation{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	c.Header("allow", "GET, DELETE")
	c.Status(http.StatusNoContent)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Allocations
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/allocations/{id}/confirm [options]
func OptionsAllocationConfirm(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Allocation{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Simulate allocation
// @Description	Runs the allocation engine for a program without persisting anything
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		200			{object}	SimulationResponse
// @Failure		400			{object}	SimulationResponse
// @Failure		404			{object}	SimulationResponse
// @Failure		500			{object}	SimulationResponse
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Router			/v1/allocations/simulate [post]
func SimulateAllocation(c *gin.Context) {
	var editable AllocationEditable

	err := httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SimulationResponse{Error: &s})
		return
	}

	result, err := runEngine(editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), SimulationResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, SimulationResponse{Data: &result})
}

// @Summary		Create allocation
// @Description	Runs the allocation engine for a program and stores the outcome as a draft allocation
// @Tags			Allocations
// @Accept			json
// @Produce		json
// @Success		201			{object}	AllocationResponse
// @Failure		400			{object}	AllocationResponse
// @Failure		404			{object}	AllocationResponse
// @Failure		500			{object}	AllocationResponse
// @Param			allocation	body		AllocationEditable	true	"Allocation"
// @Param			X-Actor		header		string				true	"ID of the acting administrator"
// @Router			/v1/allocations [post]
func CreateAllocation(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AllocationResponse{Error: &s})
		return
	}

	var editable AllocationEditable
	err = httputil.BindData(c, &editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	result, err := runEngine(editable)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	allocationModel := models.Allocation{
		ProgramID: editable.ProgramID.UUID,
		Rules:     editable.Rules,
		Results:   result,
		Status:    models.AllocationStatusDraft,
	}

	err = models.DB.Create(&allocationModel).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "create_allocation",
		TargetType: "allocation",
		TargetID:   allocationModel.ID,
	})

	apiResource := newAllocation(c, allocationModel)
	c.JSON(http.StatusCreated, AllocationResponse{Data: &apiResource})
}

// runEngine materializes the program, its applications and the
// applicant profiles and runs the allocation engine over them.
func runEngine(editable AllocationEditable) (models.AllocationResult, error) {
	if !editable.Rules.VoucherAmount.IsPositive() {
		return models.AllocationResult{}, fmt.Errorf("%w: %s", models.ErrValidation, models.ErrAllocationAmountInvalid)
	}

	var program models.Program
	err := models.DB.First(&program, "id = ?", editable.ProgramID.UUID).Error
	if err != nil {
		return models.AllocationResult{}, err
	}

	var applications []models.Application
	err = models.DB.
		Where("program_id = ?", program.ID).
		Order("applications.submitted_at ASC").
		Find(&applications).Error
	if err != nil {
		return models.AllocationResult{}, err
	}

	applicants := make(map[uuid.UUID]models.Applicant, len(applications))
	for _, application := range applications {
		if _, ok := applicants[application.ApplicantID]; ok {
			continue
		}

		var applicant models.Applicant
		err = models.DB.First(&applicant, "id = ?", application.ApplicantID).Error
		if err != nil {
			return models.AllocationResult{}, err
		}

		applicants[application.ApplicantID] = applicant
	}

	return allocation.Simulate(applications, applicants, program, editable.Rules), nil
}

// @Summary		Get allocations
// @Description	Returns a list of allocations
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationListResponse
// @Failure		400	{object}	AllocationListResponse
// @Failure		500	{object}	AllocationListResponse
// @Router			/v1/allocations [get]
// @Param			program	query	string	false	"Filter by program ID"
// @Param			status	query	string	false	"Filter by status"
// @Param			offset	query	uint	false	"The offset of the first allocation returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of allocations to return. Defaults to 50."
func GetAllocations(c *gin.Context) {
	var filter AllocationQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AllocationListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("allocations.created_at DESC").
		Where(&where, queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var allocations []models.Allocation
	err := q.Find(&allocations).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationListResponse{Error: &s})
		return
	}

	data := make([]Allocation, 0, len(allocations))
	for _, a := range allocations {
		data = append(data, newAllocation(c, a))
	}

	c.JSON(http.StatusOK, AllocationListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get allocation
// @Description	Returns a specific allocation
// @Tags			Allocations
// @Produce		json
// @Success		200	{object}	AllocationResponse
// @Failure		400	{object}	AllocationResponse
// @Failure		404	{object}	AllocationResponse
// @Failure		500	{object}	AllocationResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/allocations/{id} [get]
func GetAllocation(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	var allocationModel models.Allocation
	err = models.DB.First(&allocationModel, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	apiResource := newAllocation(c, allocationModel)
	c.JSON(http.StatusOK, AllocationResponse{Data: &apiResource})
}

// @Summary		Confirm allocation
// @Description	Confirms a draft allocation and issues one voucher per selected applicant. Confirming twice is a no-op.
// @Tags			Allocations
// @Produce		json
// @Success		200		{object}	AllocationResponse
// @Failure		400		{object}	AllocationResponse
// @Failure		404		{object}	AllocationResponse
// @Failure		500		{object}	AllocationResponse
// @Param			id		path		URIID	true	"ID formatted as string"
// @Param			X-Actor	header		string	true	"ID of the acting administrator"
// @Router			/v1/allocations/{id}/confirm [post]
func ConfirmAllocation(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AllocationResponse{Error: &s})
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	allocationModel, err := ledger.ConfirmAllocation(models.DB, uri.ID.UUID, actorID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AllocationResponse{Error: &s})
		return
	}

	apiResource := newAllocation(c, allocationModel)
	c.JSON(http.StatusOK, AllocationResponse{Data: &apiResource})
}

// @Summary		Delete allocation
// @Description	Deletes a draft allocation. Confirmed allocations cannot be deleted.
// @Tags			Allocations
// @Success		204
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			id		path		URIID	true	"ID formatted as string"
// @Param			X-Actor	header		string	true	"ID of the acting administrator"
// @Router			/v1/allocations/{id} [delete]
func DeleteAllocation(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	var allocationModel models.Allocation
	err = models.DB.First(&allocationModel, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.Delete(&allocationModel).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "delete_allocation",
		TargetType: "allocation",
		TargetID:   allocationModel.ID,
	})

	c.Status(http.StatusNoContent)
}
