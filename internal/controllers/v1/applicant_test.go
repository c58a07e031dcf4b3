package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	v1 "github.com/voucherhub/backend/internal/controllers/v1"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
	"github.com/voucherhub/backend/test"
)

func createTestApplicant(t *testing.T, editable v1.ApplicantEditable, expectedStatus ...int) v1.ApplicantResponse {
	if editable.Email == "" {
		editable.Email = fmt.Sprintf("%s@example.com", uuid.New())
	}

	if editable.Name == "" {
		editable.Name = uuid.NewString()
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.ApplicantEditable{editable}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/applicants", body, testActor)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.ApplicantCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.ApplicantResponse{}
}

func (suite *TestSuiteStandard) TestApplicantsOptions() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No Applicant with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Applicant exists", createTestApplicant(suite.T(), v1.ApplicantEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/applicants", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestApplicantsCreate() {
	a := createTestApplicant(suite.T(), v1.ApplicantEditable{
		Name:  "Kim Minji",
		Email: "minji@example.com",
	})

	assert.Equal(suite.T(), "Kim Minji", a.Data.Name)
	assert.Equal(suite.T(), "minji@example.com", a.Data.Email)
}

func (suite *TestSuiteStandard) TestApplicantsCreateDuplicateEmail() {
	a := createTestApplicant(suite.T(), v1.ApplicantEditable{})

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/applicants", []v1.ApplicantEditable{{
		Name:  "Duplicate",
		Email: a.Data.Email,
	}}, testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusConflict)

	var response v1.ApplicantCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), *response.Data[0].Error, models.ErrDuplicate.Error())
}

func (suite *TestSuiteStandard) TestApplicantsGetFilter() {
	_ = createTestApplicant(suite.T(), v1.ApplicantEditable{
		Name:               "Kim Minji",
		VerificationStatus: models.VerificationStatusVerified,
	})

	_ = createTestApplicant(suite.T(), v1.ApplicantEditable{
		Name: "Lee Minho",
	})

	_ = createTestApplicant(suite.T(), v1.ApplicantEditable{
		Name: "Park Jisoo",
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Name fragment", "name=Min", 2},
		{"Verified", "verificationStatus=verified", 1},
		{"Pending", "verificationStatus=pending", 2},
		{"No match", "name=doesnotexist", 0},
		{"Limit 1", "limit=1", 1},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.ApplicantListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/applicants?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

func (suite *TestSuiteStandard) TestApplicantsUpdate() {
	a := createTestApplicant(suite.T(), v1.ApplicantEditable{})

	r := test.Request(suite.T(), http.MethodPatch, a.Data.Links.Self, map[string]any{
		"verificationStatus": models.VerificationStatusVerified,
	}, testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.ApplicantResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	assert.Equal(suite.T(), models.VerificationStatusVerified, updated.Data.VerificationStatus)
}

func (suite *TestSuiteStandard) TestApplicantsDelete() {
	a := createTestApplicant(suite.T(), v1.ApplicantEditable{})

	r := test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)
}

func (suite *TestSuiteStandard) TestApplicantsDeleteWithApplications() {
	program := publishedProgram(suite.T())
	applicant := createTestApplicant(suite.T(), v1.ApplicantEditable{})

	_ = createTestApplication(suite.T(), v1.ApplicationEditable{
		ProgramID:   ez_uuid.UUID{UUID: program.Data.ID},
		ApplicantID: ez_uuid.UUID{UUID: applicant.Data.ID},
	})

	r := test.Request(suite.T(), http.MethodDelete, applicant.Data.Links.Self, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)
}
