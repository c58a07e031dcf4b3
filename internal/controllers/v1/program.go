package v1

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/voucherhub/backend/internal/audit"
	"github.com/voucherhub/backend/internal/httperror"
	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
)

// RegisterProgramRoutes registers the routes for programs with
// the RouterGroup that is passed.
func RegisterProgramRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsPrograms)
		r.GET("", GetPrograms)
		r.POST("", CreatePrograms)
	}
	{
		r.OPTIONS("/:id", OptionsProgramDetail)
		r.GET("/:id", GetProgram)
		r.PATCH("/:id", UpdateProgram)
		r.DELETE("/:id", DeleteProgram)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Programs
// @Success		204
// @Router			/v1/programs [options]
func OptionsPrograms(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Programs
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/programs/{id} [options]
func OptionsProgramDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Program{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create programs
// @Description	Creates new voucher programs in draft status
// @Tags			Programs
// @Accept			json
// @Produce		json
// @Success		201			{object}	ProgramCreateResponse
// @Failure		400			{object}	ProgramCreateResponse
// @Failure		500			{object}	ProgramCreateResponse
// @Param			programs	body		[]ProgramEditable	true	"Programs"
// @Param			X-Actor		header		string				true	"ID of the acting administrator"
// @Router			/v1/programs [post]
func CreatePrograms(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ProgramCreateResponse{Error: &e})
		return
	}

	var editables []ProgramEditable

	// Bind data and return error if not possible
	err = httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ProgramCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ProgramCreateResponse{}

	for _, editable := range editables {
		program := editable.model()
		err = models.DB.Create(&program).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		audit.Emit(audit.Event{
			ActorID:    actorID,
			Action:     "create_program",
			TargetType: "program",
			TargetID:   program.ID,
		})

		apiResource := newProgram(c, program)
		r.Data = append(r.Data, ProgramResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get programs
// @Description	Returns a list of programs
// @Tags			Programs
// @Produce		json
// @Success		200	{object}	ProgramListResponse
// @Failure		400	{object}	ProgramListResponse
// @Failure		500	{object}	ProgramListResponse
// @Router			/v1/programs [get]
// @Param			title	query	string	false	"Filter by title"
// @Param			search	query	string	false	"Search for this text in title and description"
// @Param			status	query	string	false	"Filter by status"
// @Param			offset	query	uint	false	"The offset of the first program returned. Defaults to 0."
// @Param			limit	query	int		false	"Maximum number of programs to return. Defaults to 50."
func GetPrograms(c *gin.Context) {
	var filter ProgramQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ProgramListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("programs.created_at DESC").
		Where(&where, queryFields...)

	if filter.Title != "" {
		q = q.Where("title LIKE ?", fmt.Sprintf("%%%s%%", filter.Title))
	}

	if filter.Search != "" {
		q = q.Where(
			models.DB.Where("title LIKE ?", fmt.Sprintf("%%%s%%", filter.Search)).
				Or("description LIKE ?", fmt.Sprintf("%%%s%%", filter.Search)),
		)
	}

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var programs []models.Program
	err := q.Find(&programs).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramListResponse{Error: &s})
		return
	}

	data := make([]Program, 0, len(programs))
	for _, program := range programs {
		data = append(data, newProgram(c, program))
	}

	c.JSON(http.StatusOK, ProgramListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get program
// @Description	Returns a specific program
// @Tags			Programs
// @Produce		json
// @Success		200	{object}	ProgramResponse
// @Failure		400	{object}	ProgramResponse
// @Failure		404	{object}	ProgramResponse
// @Failure		500	{object}	ProgramResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/programs/{id} [get]
func GetProgram(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramResponse{Error: &s})
		return
	}

	var program models.Program
	err = models.DB.First(&program, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramResponse{Error: &s})
		return
	}

	apiResource := newProgram(c, program)
	c.JSON(http.StatusOK, ProgramResponse{Data: &apiResource})
}

// @Summary		Update program
// @Description	Updates an existing program. Only values to be updated need to be specified.
// @Tags			Programs
// @Accept			json
// @Produce		json
// @Success		200		{object}	ProgramResponse
// @Failure		400		{object}	ProgramResponse
// @Failure		404		{object}	ProgramResponse
// @Failure		500		{object}	ProgramResponse
// @Param			id		path		URIID			true	"ID formatted as string"
// @Param			program	body		ProgramUpdate	true	"Program"
// @Param			X-Actor	header		string			true	"ID of the acting administrator"
// @Router			/v1/programs/{id} [patch]
func UpdateProgram(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ProgramResponse{Error: &s})
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramResponse{Error: &s})
		return
	}

	var program models.Program
	err = models.DB.First(&program, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramResponse{Error: &s})
		return
	}

	var update ProgramUpdate
	err = httputil.BindData(c, &update)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramResponse{Error: &s})
		return
	}

	update.apply(&program)
	err = models.DB.Save(&program).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ProgramResponse{Error: &s})
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "update_program",
		TargetType: "program",
		TargetID:   program.ID,
	})

	apiResource := newProgram(c, program)
	c.JSON(http.StatusOK, ProgramResponse{Data: &apiResource})
}

// @Summary		Delete program
// @Description	Deletes a program. Programs that applications reference cannot be deleted.
// @Tags			Programs
// @Success		204
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			id		path		URIID	true	"ID formatted as string"
// @Param			X-Actor	header		string	true	"ID of the acting administrator"
// @Router			/v1/programs/{id} [delete]
func DeleteProgram(c *gin.Context) {
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

	var program models.Program
	err = models.DB.First(&program, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.Delete(&program).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "delete_program",
		TargetType: "program",
		TargetID:   program.ID,
	})

	c.Status(http.StatusNoContent)
}
