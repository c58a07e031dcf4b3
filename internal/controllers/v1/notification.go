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

// RegisterNotificationRoutes registers the routes for notifications
// with the RouterGroup that is passed.
func RegisterNotificationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsNotifications)
		r.GET("", GetNotifications)
		r.POST("", CreateNotifications)
	}
	{
		r.OPTIONS("/:id", OptionsNotificationDetail)
		r.GET("/:id", GetNotification)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Notifications
// @Success		204
// @Router			/v1/notifications [options]
func OptionsNotifications(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Notifications
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/notifications/{id} [options]
func OptionsNotificationDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Notification{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Send notifications
// @Description	Creates and dispatches notifications to applicants. Delivery through the external channels is simulated, records are stored as sent.
// @Tags			Notifications
// @Accept			json
// @Produce		json
// @Success		201				{object}	NotificationCreateResponse
// @Failure		400				{object}	NotificationCreateResponse
// @Failure		404				{object}	NotificationCreateResponse
// @Failure		500				{object}	NotificationCreateResponse
// @Param			notifications	body		[]NotificationEditable	true	"Notifications"
// @Param			X-Actor			header		string					true	"ID of the acting administrator"
// @Router			/v1/notifications [post]
func CreateNotifications(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		e := err.Error()
		c.JSON(http.StatusBadRequest, NotificationCreateResponse{Error: &e})
		return
	}

	var editables []NotificationEditable

	// Bind data and return error if not possible
	err = httputil.BindData(c, &editables)
	if err != nil {
		e := err.Error()
		c.JSON(status(err), NotificationCreateResponse{Error: &e})
		return
	}

	// The final http status. Will be modified when errors occur
	status := http.StatusCreated
	r := NotificationCreateResponse{}

	for _, editable := range editables {
		notification := editable.model()

		// Dispatch is simulated, there is no carrier integration
		now := time.Now().In(time.UTC)
		notification.Status = models.NotificationStatusSent
		notification.SentAt = &now

		err = models.DB.Create(&notification).Error
		if err != nil {
			status = r.appendError(err, status)
			continue
		}

		audit.Emit(audit.Event{
			ActorID:    actorID,
			Action:     "send_notification",
			TargetType: "notification",
			TargetID:   notification.ID,
		})

		apiResource := newNotification(c, notification)
		r.Data = append(r.Data, NotificationResponse{Data: &apiResource})
	}

	c.JSON(status, r)
}

// @Summary		Get notifications
// @Description	Returns a list of notifications
// @Tags			Notifications
// @Produce		json
// @Success		200	{object}	NotificationListResponse
// @Failure		400	{object}	NotificationListResponse
// @Failure		500	{object}	NotificationListResponse
// @Router			/v1/notifications [get]
// @Param			recipient	query	string	false	"Filter by recipient ID"
// @Param			channel		query	string	false	"Filter by channel"
// @Param			status		query	string	false	"Filter by status"
// @Param			offset		query	uint	false	"The offset of the first notification returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of notifications to return. Defaults to 50."
func GetNotifications(c *gin.Context) {
	var filter NotificationQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, NotificationListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("notifications.created_at DESC").
		Where(&where, queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var notifications []models.Notification
	err := q.Find(&notifications).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), NotificationListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), NotificationListResponse{Error: &s})
		return
	}

	data := make([]Notification, 0, len(notifications))
	for _, notification := range notifications {
		data = append(data, newNotification(c, notification))
	}

	c.JSON(http.StatusOK, NotificationListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get notification
// @Description	Returns a specific notification
// @Tags			Notifications
// @Produce		json
// @Success		200	{object}	NotificationResponse
// @Failure		400	{object}	NotificationResponse
// @Failure		404	{object}	NotificationResponse
// @Failure		500	{object}	NotificationResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/notifications/{id} [get]
func GetNotification(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), NotificationResponse{Error: &s})
		return
	}

	var notification models.Notification
	err = models.DB.First(&notification, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), NotificationResponse{Error: &s})
		return
	}

	apiResource := newNotification(c, notification)
	c.JSON(http.StatusOK, NotificationResponse{Data: &apiResource})
}
