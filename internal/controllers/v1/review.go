package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/voucherhub/backend/internal/audit"
	"github.com/voucherhub/backend/internal/httperror"
	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
)

// RegisterReviewRoutes registers the routes for reviews with the
// RouterGroup that is passed.
func RegisterReviewRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsReviews)
		r.GET("", GetReviews)
		r.POST("", CreateReviews)
	}
	{
		r.OPTIONS("/:id", OptionsReviewDetail)
		r.GET("/:id", GetReview)
		r.PATCH("/:id", UpdateReview)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Reviews
// @Success		204
// @Router			/v1/reviews [options]
func OptionsReviews(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Reviews
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/reviews/{id} [options]
func OptionsReviewDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Review{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsGetPatch(c)
}

// @Summary		Create reviews
// @Description	Creates review scores for applications. A reviewer can score each application at most once per round.
// @Tags			Reviews
// @Accept			json
// @Produce		json
// @Success		201		{object}	ReviewCreateResponse
// @Failure		400		{object}	ReviewCreateResponse
// @Failure		404		{object}	ReviewCreateResponse
// @Failure		409		{object}	ReviewCreateResponse
// @Failure		500		{object}	ReviewCreateResponse
// @Param			reviews	body		[]ReviewEditable	true	"Reviews"
// @Param			X-Actor	header		string				true	"ID of the acting reviewer"
// @Router			/v1/reviews [post]
func CreateReviews(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, ReviewCreateResponse{Error: &e})
		return
	}

	var editables []ReviewEditable

	// Bind data and return error if not possible
	err = httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), ReviewCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := ReviewCreateResponse{}

	for _, editable := range editables {
		review := editable.model()
		err = models.DB.Create(&review).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		err = syncApplicationScore(review.ApplicationID)
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		audit.Emit(audit.Event{
			ActorID:    actorID,
			Action:     "create_review",
			TargetType: "review",
			TargetID:   review.ID,
		})

		apiResource := newReview(c, review)
		r.Data = append(r.Data, ReviewResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get reviews
// @Description	Returns a list of reviews
// @Tags			Reviews
// @Produce		json
// @Success		200	{object}	ReviewListResponse
// @Failure		400	{object}	ReviewListResponse
// @Failure		500	{object}	ReviewListResponse
// @Router			/v1/reviews [get]
// @Param			application	query	string	false	"Filter by application ID"
// @Param			reviewer	query	string	false	"Filter by reviewer ID"
// @Param			round		query	uint	false	"Filter by review round"
// @Param			status		query	string	false	"Filter by status"
// @Param			offset		query	uint	false	"The offset of the first review returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of reviews to return. Defaults to 50."
func GetReviews(c *gin.Context) {
	var filter ReviewQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ReviewListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("reviews.created_at DESC").
		Where(&where, queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var reviews []models.Review
	err := q.Find(&reviews).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewListResponse{Error: &s})
		return
	}

	data := make([]Review, 0, len(reviews))
	for _, review := range reviews {
		data = append(data, newReview(c, review))
	}

	c.JSON(http.StatusOK, ReviewListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get review
// @Description	Returns a specific review
// @Tags			Reviews
// @Produce		json
// @Success		200	{object}	ReviewResponse
// @Failure		400	{object}	ReviewResponse
// @Failure		404	{object}	ReviewResponse
// @Failure		500	{object}	ReviewResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/reviews/{id} [get]
func GetReview(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewResponse{Error: &s})
		return
	}

	var review models.Review
	err = models.DB.First(&review, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewResponse{Error: &s})
		return
	}

	apiResource := newReview(c, review)
	c.JSON(http.StatusOK, ReviewResponse{Data: &apiResource})
}

// @Summary		Update review
// @Description	Updates an existing review. Locked reviews cannot be changed.
// @Tags			Reviews
// @Accept			json
// @Produce		json
// @Success		200		{object}	ReviewResponse
// @Failure		400		{object}	ReviewResponse
// @Failure		404		{object}	ReviewResponse
// @Failure		500		{object}	ReviewResponse
// @Param			id		path		URIID			true	"ID formatted as string"
// @Param			review	body		ReviewUpdate	true	"Review"
// @Param			X-Actor	header		string			true	"ID of the acting reviewer"
// @Router			/v1/reviews/{id} [patch]
func UpdateReview(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, ReviewResponse{Error: &s})
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewResponse{Error: &s})
		return
	}

	var review models.Review
	err = models.DB.First(&review, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewResponse{Error: &s})
		return
	}

	if review.Status == models.ReviewStatusLocked {
		s := models.ErrReviewLocked.Error()
		c.JSON(http.StatusBadRequest, ReviewResponse{Error: &s})
		return
	}

	var update ReviewUpdate
	err = httputil.BindData(c, &update)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewResponse{Error: &s})
		return
	}

	update.apply(&review)
	err = models.DB.Save(&review).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewResponse{Error: &s})
		return
	}

	err = syncApplicationScore(review.ApplicationID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), ReviewResponse{Error: &s})
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "update_review",
		TargetType: "review",
		TargetID:   review.ID,
	})

	apiResource := newReview(c, review)
	c.JSON(http.StatusOK, ReviewResponse{Data: &apiResource})
}

// syncApplicationScore recalculates the score of the application as
// the average over all its reviews. The application status is not
// touched, workflow transitions are explicit admin updates.
func syncApplicationScore(applicationID uuid.UUID) error {
	var average float64
	err := models.DB.Model(&models.Review{}).
		Where("application_id = ?", applicationID).
		Select("AVG(score)").
		Scan(&average).Error
	if err != nil {
		return err
	}

	var application models.Application
	err = models.DB.First(&application, "id = ?", applicationID).Error
	if err != nil {
		return err
	}

	application.Score = &average
	return models.DB.Save(&application).Error
}
