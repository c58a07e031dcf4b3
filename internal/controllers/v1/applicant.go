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

// RegisterApplicantRoutes registers the routes for applicants with
// the RouterGroup that is passed.
func RegisterApplicantRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsApplicants)
		r.GET("", GetApplicants)
		r.POST("", CreateApplicants)
	}
	{
		r.OPTIONS("/:id", OptionsApplicantDetail)
		r.GET("/:id", GetApplicant)
		r.PATCH("/:id", UpdateApplicant)
		r.DELETE("/:id", DeleteApplicant)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Applicants
// @Success		204
// @Router			/v1/applicants [options]
func OptionsApplicants(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Applicants
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/applicants/{id} [options]
func OptionsApplicantDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Applicant{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsGetPatchDelete(c)
}

// @Summary		Create applicants
// @Description	Creates new applicant profiles
// @Tags			Applicants
// @Accept			json
// @Produce		json
// @Success		201			{object}	ApplicantCreateResponse
// @Failure		400			{object}	ApplicantCreateResponse
// @Failure		409			{object}	ApplicantCreateResponse
// @Failure		500			{object}	ApplicantCreateResponse
// @Param			applicants	body		[]ApplicantEditable	true	"Applicants"
// @Param			X-Actor		header		string				true	"ID of the acting user"
// @Router			/v1/applicants [post]
func CreateApplicants(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ApplicantCreateResponse{Error: &e})
		return
	}

	var editables []ApplicantEditable

	// Bind data and return error if not possible
	err = httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ApplicantCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ApplicantCreateResponse{}

	for _, editable := range editables {
		applicant := editable.model()
		err = models.DB.Create(&applicant).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		audit.Emit(audit.Event{
			ActorID:    actorID,
			Action:     "create_applicant",
			TargetType: "applicant",
			TargetID:   applicant.ID,
		})

		apiResource := newApplicant(c, applicant)
		r.Data = append(r.Data, ApplicantResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get applicants
// @Description	Returns a list of applicants
// @Tags			Applicants
// @Produce		json
// @Success		200	{object}	ApplicantListResponse
// @Failure		400	{object}	ApplicantListResponse
// @Failure		500	{object}	ApplicantListResponse
// @Router			/v1/applicants [get]
// @Param			name				query	string	false	"Filter by name"
// @Param			email				query	string	false	"Filter by email"
// @Param			verificationStatus	query	string	false	"Filter by verification status"
// @Param			offset				query	uint	false	"The offset of the first applicant returned. Defaults to 0."
// @Param			limit				query	int		false	"Maximum number of applicants to return. Defaults to 50."
func GetApplicants(c *gin.Context) {
	var filter ApplicantQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ApplicantListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("applicants.created_at DESC").
		Where(&where, queryFields...)

	if filter.Name != "" {
		q = q.Where("name LIKE ?", fmt.Sprintf("%%%s%%", filter.Name))
	}

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var applicants []models.Applicant
	err := q.Find(&applicants).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantListResponse{Error: &s})
		return
	}

	data := make([]Applicant, 0, len(applicants))
	for _, applicant := range applicants {
		data = append(data, newApplicant(c, applicant))
	}

	c.JSON(http.StatusOK, ApplicantListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get applicant
// @Description	Returns a specific applicant
// @Tags			Applicants
// @Produce		json
// @Success		200	{object}	ApplicantResponse
// @Failure		400	{object}	ApplicantResponse
// @Failure		404	{object}	ApplicantResponse
// @Failure		500	{object}	ApplicantResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/applicants/{id} [get]
func GetApplicant(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantResponse{Error: &s})
		return
	}

	var applicant models.Applicant
	err = models.DB.First(&applicant, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantResponse{Error: &s})
		return
	}

	apiResource := newApplicant(c, applicant)
	c.JSON(http.StatusOK, ApplicantResponse{Data: &apiResource})
}

// @Summary		Update applicant
// @Description	Updates an existing applicant. Only values to be updated need to be specified.
// @Tags			Applicants
// @Accept			json
// @Produce		json
// @Success		200			{object}	ApplicantResponse
// @Failure		400			{object}	ApplicantResponse
// @Failure		404			{object}	ApplicantResponse
// @Failure		500			{object}	ApplicantResponse
// @Param			id			path		URIID			true	"ID formatted as string"
// @Param			applicant	body		ApplicantUpdate	true	"Applicant"
// @Param			X-Actor		header		string			true	"ID of the acting user"
// @Router			/v1/applicants/{id} [patch]
func UpdateApplicant(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ApplicantResponse{Error: &s})
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantResponse{Error: &s})
		return
	}

	var applicant models.Applicant
	err = models.DB.First(&applicant, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantResponse{Error: &s})
		return
	}

	var update ApplicantUpdate
	err = httputil.BindData(c, &update)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantResponse{Error: &s})
		return
	}

	update.apply(&applicant)
	err = models.DB.Save(&applicant).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ApplicantResponse{Error: &s})
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "update_applicant",
		TargetType: "applicant",
		TargetID:   applicant.ID,
	})

	apiResource := newApplicant(c, applicant)
	c.JSON(http.StatusOK, ApplicantResponse{Data: &apiResource})
}

// @Summary		Delete applicant
// @Description	Deletes an applicant
// @Tags			Applicants
// @Success		204
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			id		path		URIID	true	"ID formatted as string"
// @Param			X-Actor	header		string	true	"ID of the acting user"
// @Router			/v1/applicants/{id} [delete]
func DeleteApplicant(c *gin.Context) {
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

	var applicant models.Applicant
	err = models.DB.First(&applicant, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.Delete(&applicant).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "delete_applicant",
		TargetType: "applicant",
		TargetID:   applicant.ID,
	})

	c.Status(http.StatusNoContent)
}
