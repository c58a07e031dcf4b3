package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/voucherhub/backend/internal/controllers/v1"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
	"github.com/voucherhub/backend/test"
)

func createTestNotification(t *testing.T, editable v1.NotificationEditable, expectedStatus ...int) v1.NotificationResponse {
	if editable.RecipientID == ez_uuid.Nil {
		editable.RecipientID = ez_uuid.UUID{UUID: createTestApplicant(t, v1.ApplicantEditable{}).Data.ID}
	}

	if editable.Channel == "" {
		editable.Channel = models.NotificationChannelEmail
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.NotificationEditable{editable}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/notifications", body, testActor)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.NotificationCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.NotificationResponse{}
}

func (suite *TestSuiteStandard) TestNotificationsOptions() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No Notification with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "stillNotAUUID", http.StatusBadRequest},
		{"Notification exists", createTestNotification(suite.T(), v1.NotificationEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/notifications", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestNotificationsCreate() {
	notification := createTestNotification(suite.T(), v1.NotificationEditable{
		Channel:  models.NotificationChannelKakao,
		Template: "voucher-issued",
		Content:  "Your voucher is ready.",
	})

	assert.Equal(suite.T(), models.NotificationStatusSent, notification.Data.Status)
	require.NotNil(suite.T(), notification.Data.SentAt)
	assert.Equal(suite.T(), models.NotificationChannelKakao, notification.Data.Channel)
	assert.Equal(suite.T(), "voucher-issued", notification.Data.Template)
}

func (suite *TestSuiteStandard) TestNotificationsCreateFails() {
	applicant := createTestApplicant(suite.T(), v1.ApplicantEditable{})

	tests := []struct {
		name     string
		editable v1.NotificationEditable
		status   int
	}{
		{
			"Unknown recipient",
			v1.NotificationEditable{RecipientID: ez_uuid.New(), Channel: models.NotificationChannelEmail},
			http.StatusNotFound,
		},
		{
			"Unknown channel",
			v1.NotificationEditable{RecipientID: ez_uuid.UUID{UUID: applicant.Data.ID}, Channel: "carrier-pigeon"},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/notifications", []v1.NotificationEditable{tt.editable}, testActor)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestNotificationsGetFilter() {
	applicant := createTestApplicant(suite.T(), v1.ApplicantEditable{})

	_ = createTestNotification(suite.T(), v1.NotificationEditable{
		RecipientID: ez_uuid.UUID{UUID: applicant.Data.ID},
		Channel:     models.NotificationChannelEmail,
	})

	_ = createTestNotification(suite.T(), v1.NotificationEditable{
		RecipientID: ez_uuid.UUID{UUID: applicant.Data.ID},
		Channel:     models.NotificationChannelSMS,
	})

	_ = createTestNotification(suite.T(), v1.NotificationEditable{})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Recipient", fmt.Sprintf("recipient=%s", applicant.Data.ID), 2},
		{"Channel email", "channel=email", 2},
		{"Channel sms", "channel=sms", 1},
		{"Status sent", "status=sent", 3},
		{"Status failed", "status=failed", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.NotificationListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/notifications?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

func (suite *TestSuiteStandard) TestNotificationsGetSingle() {
	notification := createTestNotification(suite.T(), v1.NotificationEditable{})

	r := test.Request(suite.T(), http.MethodGet, notification.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.NotificationResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Equal(suite.T(), notification.Data.ID, response.Data.ID)
}
