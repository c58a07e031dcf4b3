package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/voucherhub/backend/internal/audit"
	"github.com/voucherhub/backend/internal/httperror"
	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
)

// RegisterApplicationRoutes registers the routes for applications
// with the RouterGroup that is passed.
func RegisterApplicationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsApplications)
		r.GET("", GetApplications)
		r.POST("", CreateApplications)
	}
	{
		r.OPTIONS("/:id", OptionsApplicationDetail)
		r.GET("/:id", GetApplication)
		r.PATCH("/:id", UpdateApplication)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Applications
// @Success		204
// @Router			/v1/applications [options]
func OptionsApplications(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Applications
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/applications/{id} [options]
func OptionsApplicationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Application{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsGetPatch(c)
}

// @Summary		Create applications
// @Description	Submits applications for voucher programs. The program must be published and inside its application period.
// @Tags			Applications
// @Accept			json
// @Produce		json
// @Success		201				{object}	ApplicationCreateResponse
// @Failure		400				{object}	ApplicationCreateResponse
// @Failure		404				{object}	ApplicationCreateResponse
// @Failure		409				{object}	ApplicationCreateResponse
// @Failure		500				{object}	ApplicationCreateResponse
// @Param			applications	body		[]ApplicationEditable	true	"Applications"
// @Param			X-Actor			header		string					true	"ID of the acting user"
// @Router			/v1/applications [post]
func CreateApplications(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ApplicationCreateResponse{Error: &e})
		return
	}

	var editables []ApplicationEditable

	// Bind data and return error if not possible
	err = httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ApplicationCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ApplicationCreateResponse{}

	for _, editable := range editables {
		application := editable.model()

		// The intake window is checked here, the model hooks only
		// guard integrity and duplicates
		var program models.Program
		err = models.DB.First(&program, "id = ?", application.ProgramID).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = program.AcceptsApplications(time.Now())
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = models.DB.Create(&application).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		audit.Emit(audit.Event{
			ActorID:    actorID,
			Action:     "create_application",
			TargetType: "application",
			TargetID:   application.ID,
		})

		apiResource := newApplication(c, application)
		r.Data = append(r.Data, ApplicationResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get applications
// @Description	Returns a list of applications
// @Tags			Applications
// @Produce		json
// @Success		200	{object}	ApplicationListResponse
// @Failure		400	{object}	ApplicationListResponse
// @Failure		500	{object}	ApplicationListResponse
// @Router			/v1/applications [get]
// @Param			number		query	string	false	"Filter by application number"
// @Param			applicant	query	string	false	"Filter by applicant ID"
// @Param			program		query	string	false	"Filter by program ID"
// @Param			status		query	string	false	"Filter by status"
// @Param			offset		query	uint	false	"The offset of the first application returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of applications to return. Defaults to 50."
func GetApplications(c *gin.Context) {
	var filter ApplicationQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ApplicationListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("applications.submitted_at DESC").
		Where(&where, queryFields...)

	if filter.Number != "" {
		q = q.Where("application_number = ?", filter.Number)
	}

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var applications []models.Application
	err := q.Find(&applications).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationListResponse{Error: &s})
		return
	}

	data := make([]Application, 0, len(applications))
	for _, application := range applications {
		data = append(data, newApplication(c, application))
	}

	c.JSON(http.StatusOK, ApplicationListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get application
// @Description	Returns a specific application
// @Tags			Applications
// @Produce		json
// @Success		200	{object}	ApplicationResponse
// @Failure		400	{object}	ApplicationResponse
// @Failure		404	{object}	ApplicationResponse
// @Failure		500	{object}	ApplicationResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/applications/{id} [get]
func GetApplication(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationResponse{Error: &s})
		return
	}

	var application models.Application
	err = models.DB.First(&application, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationResponse{Error: &s})
		return
	}

	apiResource := newApplication(c, application)
	c.JSON(http.StatusOK, ApplicationResponse{Data: &apiResource})
}

// @Summary		Update application
// @Description	Updates an existing application. Completed applications cannot be changed.
// @Tags			Applications
// @Accept			json
// @Produce		json
// @Success		200			{object}	ApplicationResponse
// @Failure		400			{object}	ApplicationResponse
// @Failure		404			{object}	ApplicationResponse
// @Failure		500			{object}	ApplicationResponse
// @Param			id			path		URIID				true	"ID formatted as string"
// @Param			application	body		ApplicationUpdate	true	"Application"
// @Param			X-Actor		header		string				true	"ID of the acting user"
// @Router			/v1/applications/{id} [patch]
func UpdateApplication(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ApplicationResponse{Error: &s})
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationResponse{Error: &s})
		return
	}

	var application models.Application
	err = models.DB.First(&application, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationResponse{Error: &s})
		return
	}

	if application.Status == models.ApplicationStatusCompleted {
		s := models.ErrApplicationCompleted.Error()
		c.JSON(http.StatusBadRequest, ApplicationResponse{Error: &s})
		return
	}

	var update ApplicationUpdate
	err = httputil.BindData(c, &update)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationResponse{Error: &s})
		return
	}

	update.apply(&application)
	err = models.DB.Save(&application).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicationResponse{Error: &s})
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "update_application",
		TargetType: "application",
		TargetID:   application.ID,
	})

	apiResource := newApplication(c, application)
	c.JSON(http.StatusOK, ApplicationResponse{Data: &apiResource})
}
