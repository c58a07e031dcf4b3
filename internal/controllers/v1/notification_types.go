package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

// NotificationEditable are the fields of a notification that the API
// allows writing to. Status and dispatch time are owned by the
// backend.
type NotificationEditable struct {
	RecipientID ez_uuid.UUID               `json:"recipientId" example:"d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
	Channel     models.NotificationChannel `json:"channel" example:"email"`
	Template    string                     `json:"template" example:"voucher-issued" default:""`
	Content     string                     `json:"content" example:"Your voucher is ready." default:""`
}

func (editable NotificationEditable) model() models.Notification {
	return models.Notification{
		RecipientID: editable.RecipientID.UUID,
		Channel:     editable.Channel,
		Template:    editable.Template,
		Content:     editable.Content,
	}
}

type NotificationLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/notifications/8a1c5e2f-9d4b-43a7-b6e0-1f3d7c2a9b54"`
	Recipient string `json:"recipient" example:"https://example.com/api/v1/applicants/d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
}

type Notification struct {
	models.DefaultModel
	NotificationEditable
	Status models.NotificationStatus `json:"status" example:"sent"`
	SentAt *time.Time                `json:"sentAt"`
	Links  NotificationLinks         `json:"links"`
}

func newNotification(c *gin.Context, model models.Notification) Notification {
	url := httputil.RequestPathV1(c)

	return Notification{
		DefaultModel: model.DefaultModel,
		NotificationEditable: NotificationEditable{
			RecipientID: ez_uuid.UUID{UUID: model.RecipientID},
			Channel:     model.Channel,
			Template:    model.Template,
			Content:     model.Content,
		},
		Status: model.Status,
		SentAt: model.SentAt,
		Links: NotificationLinks{
			Self:      fmt.Sprintf("%s/notifications/%s", url, model.ID),
			Recipient: fmt.Sprintf("%s/applicants/%s", url, model.RecipientID),
		},
	}
}

type NotificationListResponse struct {
	Data       []Notification `json:"data"`
	Error      *string        `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination    `json:"pagination"`
}

type NotificationCreateResponse struct {
	Error *string                `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  []NotificationResponse `json:"data"`
}

func (r *NotificationCreateResponse) appendError(err error, currentStatus int) int {
	s := err.Error()
	r.Data = append(r.Data, NotificationResponse{Error: &s})

	newStatus := status(err)
	if newStatus > currentStatus {
		return newStatus
	}

	return currentStatus
}

type NotificationResponse struct {
	Error *string       `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *Notification `json:"data"`
}

type NotificationQueryFilter struct {
	RecipientID ez_uuid.UUID               `form:"recipient"` // By recipient ID
	Channel     models.NotificationChannel `form:"channel"`   // By channel
	Status      models.NotificationStatus  `form:"status"`    // By status
	Offset      uint                       `form:"offset" filterField:"false"`
	Limit       int                        `form:"limit" filterField:"false"`
}

func (f NotificationQueryFilter) model() models.Notification {
	return models.Notification{
		RecipientID: f.RecipientID.UUID,
		Channel:     f.Channel,
		Status:      f.Status,
	}
}
