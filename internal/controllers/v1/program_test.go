package v1_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	v1 "github.com/voucherhub/backend/internal/controllers/v1"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
	"github.com/voucherhub/backend/test"
)

func createTestProgram(t *testing.T, editable v1.ProgramEditable, expectedStatus ...int) v1.ProgramResponse {
	if editable.Title == "" {
		editable.Title = uuid.NewString()
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	body := []v1.ProgramEditable{editable}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/programs", body, testActor)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.ProgramCreateResponse
	test.DecodeResponse(t, &r, &response)

	if r.Code == http.StatusCreated {
		return response.Data[0]
	}

	return v1.ProgramResponse{}
}

// publishedProgram creates a program that currently accepts
// applications.
func publishedProgram(t *testing.T) v1.ProgramResponse {
	start := time.Now().Add(-time.Hour)
	end := time.Now().Add(time.Hour)

	return createTestProgram(t, v1.ProgramEditable{
		Status: models.ProgramStatusPublished,
		Budget: decimal.NewFromInt(150000),
		Schedule: models.Schedule{
			ApplicationStart: &start,
			ApplicationEnd:   &end,
		},
	})
}

func (suite *TestSuiteStandard) TestProgramsOptions() {
	tests := []struct {
		name   string
		id     string
		status int
	}{
		{"No Program with this ID", uuid.New().String(), http.StatusNotFound},
		{"Not a valid UUID", "NotParseableAsUUID", http.StatusBadRequest},
		{"Program exists", createTestProgram(suite.T(), v1.ProgramEditable{}).Data.ID.String(), http.StatusNoContent},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			path := fmt.Sprintf("%s/%s", "http://example.com/v1/programs", tt.id)
			r := test.Request(t, http.MethodOptions, path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.status == http.StatusNoContent {
				assert.Equal(t, "GET, PATCH, DELETE", r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestProgramsCreate() {
	p := createTestProgram(suite.T(), v1.ProgramEditable{
		Title:  "Youth culture voucher 2026",
		Budget: decimal.NewFromInt(150000),
	})

	assert.Equal(suite.T(), "Youth culture voucher 2026", p.Data.Title)
	assert.Equal(suite.T(), models.ProgramStatusDraft, p.Data.Status, "New programs default to draft")
	assert.NotEmpty(suite.T(), p.Data.Links.Self)
}

func (suite *TestSuiteStandard) TestProgramsCreateFails() {
	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Broken Body", `[{ "title": 2 }]`, http.StatusBadRequest},
		{"No body", "", http.StatusBadRequest},
		{"Unknown status", `[{ "status": "running" }]`, http.StatusBadRequest},
		{"Negative budget", `[{ "budget": "-100" }]`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/programs", tt.body, testActor)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestProgramsCreateNoActor() {
	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/programs", `[{ "title": "No actor" }]`)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response v1.ProgramCreateResponse
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), *response.Error, "X-Actor")
}

func (suite *TestSuiteStandard) TestProgramsGetSingle() {
	p := createTestProgram(suite.T(), v1.ProgramEditable{})

	tests := []struct {
		name   string
		id     string
		status int
		method string
	}{
		{"GET Existing Program", p.Data.ID.String(), http.StatusOK, http.MethodGet},
		{"GET No Program with this ID", uuid.New().String(), http.StatusNotFound, http.MethodGet},
		{"GET Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodGet},
		{"PATCH Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodPatch},
		{"DELETE Invalid ID (string)", "notaUUID", http.StatusBadRequest, http.MethodDelete},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, tt.method, fmt.Sprintf("http://example.com/v1/programs/%s", tt.id), "", testActor)

			var program v1.ProgramResponse
			test.DecodeResponse(t, &r, &program)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestProgramsGetFilter() {
	_ = createTestProgram(suite.T(), v1.ProgramEditable{
		Title:       "Youth culture voucher",
		Description: "Support for cultural activities",
		Status:      models.ProgramStatusPublished,
	})

	_ = createTestProgram(suite.T(), v1.ProgramEditable{
		Title:       "Small business energy grant",
		Description: "Winter energy support",
	})

	_ = createTestProgram(suite.T(), v1.ProgramEditable{
		Title:       "Student book voucher",
		Description: "Vouchers for school books",
	})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Status draft", "status=draft", 2},
		{"Status published", "status=published", 1},
		{"Title fragment", "title=voucher", 2},
		{"Search in description", "search=support", 2},
		{"Search in title", "search=book", 1},
		{"No match", "title=doesnotexist", 0},
		{"Offset 2", "offset=2", 1},
		{"Limit 1", "limit=1", 1},
		{"Limit 0", "limit=0", 0},
		{"Limit -1", "limit=-1", 3},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.ProgramListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/programs?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}

func (suite *TestSuiteStandard) TestProgramsPagination() {
	for i := 0; i < 3; i++ {
		_ = createTestProgram(suite.T(), v1.ProgramEditable{})
	}

	var response v1.ProgramListResponse
	r := test.Request(suite.T(), http.MethodGet, "http://example.com/v1/programs?offset=1&limit=1", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &response)

	assert.Equal(suite.T(), 1, response.Pagination.Count)
	assert.Equal(suite.T(), uint(1), response.Pagination.Offset)
	assert.Equal(suite.T(), 1, response.Pagination.Limit)
	assert.Equal(suite.T(), int64(3), response.Pagination.Total)
}

func (suite *TestSuiteStandard) TestProgramsUpdate() {
	p := createTestProgram(suite.T(), v1.ProgramEditable{Title: "Initial title"})

	r := test.Request(suite.T(), http.MethodPatch, p.Data.Links.Self, map[string]any{
		"title":  "Updated title",
		"status": models.ProgramStatusPublished,
	}, testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated v1.ProgramResponse
	test.DecodeResponse(suite.T(), &r, &updated)

	assert.Equal(suite.T(), "Updated title", updated.Data.Title)
	assert.Equal(suite.T(), models.ProgramStatusPublished, updated.Data.Status)
}

func (suite *TestSuiteStandard) TestProgramsUpdateFails() {
	p := createTestProgram(suite.T(), v1.ProgramEditable{})

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Invalid type", `{"title": 2}`, http.StatusBadRequest},
		{"Unknown status", `{"status": "running"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPatch, p.Data.Links.Self, tt.body, testActor)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestProgramsDelete() {
	p := createTestProgram(suite.T(), v1.ProgramEditable{})

	r := test.Request(suite.T(), http.MethodDelete, p.Data.Links.Self, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, p.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestProgramsDeleteWithApplications() {
	program := publishedProgram(suite.T())
	applicant := createTestApplicant(suite.T(), v1.ApplicantEditable{})

	_ = createTestApplication(suite.T(), v1.ApplicationEditable{
		ProgramID:   ez_uuid.UUID{UUID: program.Data.ID},
		ApplicantID: ez_uuid.UUID{UUID: applicant.Data.ID},
	})

	r := test.Request(suite.T(), http.MethodDelete, program.Data.Links.Self, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), response.Error, models.ErrProgramHasApplications.Error())
}

func (suite *TestSuiteStandard) TestProgramsDBClosed() {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{
			"Creation fails",
			func(t *testing.T) {
				createTestProgram(t, v1.ProgramEditable{}, http.StatusInternalServerError)
			},
		},
		{
			"GET fails",
			func(t *testing.T) {
				r := test.Request(t, http.MethodGet, "http://example.com/v1/programs", "")
				test.AssertHTTPStatus(t, &r, http.StatusInternalServerError)
			},
		},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			suite.CloseDB()

			tt.test(t)
		})
	}
}
