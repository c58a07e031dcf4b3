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

func createTestReview(t *testing.T, editable v1.ReviewEditable, expectedStatus ...int) v1.ReviewResponse {
	if editable.ApplicationID == ez_uuid.Nil {
		editable.ApplicationID = ez_uuid.UUID{UUID: createTestApplication(t, v1.ApplicationEditable{}).Data.ID}
	}

	if editable.ReviewerID == ez_uuid.Nil {
		editable.ReviewerID = ez_uuid.New()
	}

	if editable.Round == 0 {
		editable.Round = 1
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.ReviewEditable{editable}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/reviews", body, testActor)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.ReviewCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.ReviewResponse{}
}

func (suite *TestSuiteStandard) TestReviewsOptions() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No Review with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "not-a-uuid", http.StatusBadRequest},
		{"Review exists", createTestReview(suite.T(), v1.ReviewEditable{Score: 50}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/reviews", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestReviewsCreate() {
	review := createTestReview(suite.T(), v1.ReviewEditable{
		Score:   87.5,
		Comment: "Meets all criteria",
	})

	assert.Equal(suite.T(), 87.5, review.Data.Score)
	assert.Equal(suite.T(), uint(1), review.Data.Round)
	assert.Equal(suite.T(), models.ReviewStatusPending, review.Data.Status)
}

func (suite *TestSuiteStandard) TestReviewsCreateFails() {
	application := createTestApplication(suite.T(), v1.ApplicationEditable{})

	tests := []struct {
		name     string
		editable v1.ReviewEditable
		status   int
	}{
		{
			"Unknown application",
			v1.ReviewEditable{ApplicationID: ez_uuid.New(), ReviewerID: ez_uuid.New(), Round: 1, Score: 50},
			http.StatusNotFound,
		},
		{
			"Score out of range",
			v1.ReviewEditable{ApplicationID: ez_uuid.UUID{UUID: application.Data.ID}, ReviewerID: ez_uuid.New(), Round: 1, Score: 100.5},
			http.StatusBadRequest,
		},
		{
			"Round zero",
			v1.ReviewEditable{ApplicationID: ez_uuid.UUID{UUID: application.Data.ID}, ReviewerID: ez_uuid.New(), Round: 0, Score: 50},
			http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/reviews", []v1.ReviewEditable{tt.editable}, testActor)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestReviewsCreateDuplicateRound() {
	application := createTestApplication(suite.T(), v1.ApplicationEditable{})
	reviewer := ez_uuid.New()

	editable := v1.ReviewEditable{
		ApplicationID: ez_uuid.UUID{UUID: application.Data.ID},
		ReviewerID:    reviewer,
		Round:         1,
		Score:         70,
	}

	_ = createTestReview(suite.T(), editable)

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/reviews", []v1.ReviewEditable{editable}, testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)

	var response v1.ReviewCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.Len(suite.T(), response.Data, 1)
	assert.Contains(suite.T(), *response.Data[0].Error, models.ErrReviewDuplicateRound.Error())

	// A later round by the same reviewer is fine
	editable.Round = 2
	_ = createTestReview(suite.T(), editable)
}

func (suite *TestSuiteStandard) TestReviewsSyncScore() {
	application := createTestApplication(suite.T(), v1.ApplicationEditable{})

	_ = createTestReview(suite.T(), v1.ReviewEditable{
		ApplicationID: ez_uuid.UUID{UUID: application.Data.ID},
		Score:         80,
	})

	_ = createTestReview(suite.T(), v1.ReviewEditable{
		ApplicationID: ez_uuid.UUID{UUID: application.Data.ID},
		Score:         60,
	})

	r := test.Request(suite.T(), http.MethodGet, application.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var scored v1.ApplicationResponse
	test.DecodeResponse(suite.T(), &r, &scored)
	require.NotNil(suite.T(), scored.Data.Score)
	assert.InDelta(suite.T(), 70.0, *scored.Data.Score, 0.001)

	// The review workflow never moves applications on its own
	assert.Equal(suite.T(), models.ApplicationStatusSubmitted, scored.Data.Status)
}

func (suite *TestSuiteStandard) TestReviewsGetFilter() {
	application := createTestApplication(suite.T(), v1.ApplicationEditable{})
	reviewer := ez_uuid.New()

	_ = createTestReview(suite.T(), v1.ReviewEditable{
		ApplicationID: ez_uuid.UUID{UUID: application.Data.ID},
		ReviewerID:    reviewer,
		Round:         1,
		Score:         80,
	})

	_ = createTestReview(suite.T(), v1.ReviewEditable{
		ApplicationID: ez_uuid.UUID{UUID: application.Data.ID},
		ReviewerID:    reviewer,
		Round:         2,
		Score:         65,
		Status:        models.ReviewStatusLocked,
	})

	_ = createTestReview(suite.T(), v1.ReviewEditable{Score: 40})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Application", fmt.Sprintf("application=%s", application.Data.ID), 2},
		{"Reviewer", fmt.Sprintf("reviewer=%s", reviewer), 2},
		{"Round", "round=2", 1},
		{"Status locked", "status=locked", 1},
		{"Unknown application", fmt.Sprintf("application=%s", uuid.New()), 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.ReviewListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/reviews?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

func (suite *TestSuiteStandard) TestReviewsUpdate() {
	review := createTestReview(suite.T(), v1.ReviewEditable{Score: 50})

	r := test.Request(suite.T(), http.MethodPatch, review.Data.Links.Self, map[string]any{
		"score":  90.0,
		"status": models.ReviewStatusCompleted,
	}, testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.ReviewResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	assert.Equal(suite.T(), 90.0, updated.Data.Score)
	assert.Equal(suite.T(), models.ReviewStatusCompleted, updated.Data.Status)
}

func (suite *TestSuiteStandard) TestReviewsUpdateLocked() {
	review := createTestReview(suite.T(), v1.ReviewEditable{
		Score:  50,
		Status: models.ReviewStatusLocked,
	})

	r := test.Request(suite.T(), http.MethodPatch, review.Data.Links.Self, map[string]any{
		"score": 10.0,
	}, testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.ReviewResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), *response.Error, models.ErrReviewLocked.Error())
}
