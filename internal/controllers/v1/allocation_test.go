package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	v1 "github.com/voucherhub/backend/internal/controllers/v1"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
	"github.com/voucherhub/backend/test"
)

// programWithApplications creates a published program with the given
// number of submitted applications, each by its own applicant.
func programWithApplications(t *testing.T, count int) v1.ProgramResponse {
	program := publishedProgram(t)

	for i := 0; i < count; i++ {
		_ = createTestApplication(t, v1.ApplicationEditable{
			ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
		})
	}

	return program
}

func createTestAllocation(t *testing.T, editable v1.AllocationEditable, expectedStatus ...int) v1.AllocationResponse {
	if editable.Rules.VoucherAmount.IsZero() {
		editable.Rules.VoucherAmount = decimal.NewFromInt(50000)
	}

	// Default to 201 Created as expected status
	if len(expectedStatus) == 0 {
		expectedStatus = append(expectedStatus, http.StatusCreated)
	}

	r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations", editable, testActor)
	test.AssertHTTPStatus(t, &r, expectedStatus...)

	var response v1.AllocationResponse
	test.DecodeResponse(t, &r, &response)
	return response
}

func (suite *TestSuiteStandard) TestAllocationsOptions() {
	program := publishedProgram(suite.T())
	a := createTestAllocation(suite.T(), v1.AllocationEditable{
		ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
	})

	tests := []struct {
		name   string
		path   string
		status int
		allow  string
	}{
		{"Collection", "http://example.com/v1/allocations", http.StatusNoContent, "GET, POST"},
		{"Simulation", "http://example.com/v1/allocations/simulate", http.StatusNoContent, "POST"},
		{"Detail", a.Data.Links.Self, http.StatusNoContent, "GET, DELETE"},
		{"Confirmation", a.Data.Links.Confirm, http.StatusNoContent, "POST"},
		{"No Allocation with this ID", fmt.Sprintf("http://example.com/v1/allocations/%s", uuid.New()), http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodOptions, tt.path, "")
			test.AssertHTTPStatus(t, &r, tt.status)

			if tt.allow != "" {
				assert.Equal(t, tt.allow, r.Header().Get("allow"))
			}
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsSimulate() {
	program := programWithApplications(suite.T(), 5)

	r := test.Request(suite.T(), http.MethodPost, "http://example.com/v1/allocations/simulate", v1.AllocationEditable{
		ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
		Rules: models.AllocationRules{
			VoucherAmount: decimal.NewFromInt(50000),
		},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var response v1.SimulationResponse
	test.DecodeResponse(suite.T(), &r, &response)
	require.NotNil(suite.T(), response.Data)

	// 150000 budget at 50000 per voucher pays for three applicants
	assert.Equal(suite.T(), 5, response.Data.TotalApplicants)
	assert.Equal(suite.T(), 5, response.Data.EligibleApplicants)
	assert.Equal(suite.T(), 3, response.Data.SelectedApplicants)
	assert.True(suite.T(), response.Data.RemainingBudget.IsZero(), "remaining budget is %s", response.Data.RemainingBudget)

	// Simulation persists nothing
	var list v1.AllocationListResponse
	r = test.Request(suite.T(), http.MethodGet, "http://example.com/v1/allocations", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &list)
	assert.Empty(suite.T(), list.Data)
}

func (suite *TestSuiteStandard) TestAllocationsSimulateFails() {
	program := programWithApplications(suite.T(), 1)

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Unknown program", v1.AllocationEditable{ProgramID: ez_uuid.New(), Rules: models.AllocationRules{VoucherAmount: decimal.NewFromInt(50000)}}, http.StatusNotFound},
		{"Broken body", `{ "programId": 2 }`, http.StatusBadRequest},
		{"Zero amount", v1.AllocationEditable{ProgramID: ez_uuid.UUID{UUID: program.Data.ID}}, http.StatusBadRequest},
		{"Negative amount", v1.AllocationEditable{ProgramID: ez_uuid.UUID{UUID: program.Data.ID}, Rules: models.AllocationRules{VoucherAmount: decimal.NewFromInt(-50000)}}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations/simulate", tt.body)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsCreate() {
	program := programWithApplications(suite.T(), 2)

	a := createTestAllocation(suite.T(), v1.AllocationEditable{
		ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
	})

	assert.Equal(suite.T(), models.AllocationStatusDraft, a.Data.Status)
	assert.Equal(suite.T(), 2, a.Data.Results.SelectedApplicants)
	assert.Nil(suite.T(), a.Data.ConfirmedBy)
	assert.Contains(suite.T(), a.Data.Links.Confirm, "/confirm")
}

func (suite *TestSuiteStandard) TestAllocationsCreateFails() {
	program := publishedProgram(suite.T())

	tests := []struct {
		name   string
		body   any
		status int
	}{
		{"Unknown program", v1.AllocationEditable{ProgramID: ez_uuid.New(), Rules: models.AllocationRules{VoucherAmount: decimal.NewFromInt(50000)}}, http.StatusNotFound},
		{"Amount not positive", v1.AllocationEditable{ProgramID: ez_uuid.UUID{UUID: program.Data.ID}}, http.StatusBadRequest},
		{"No body", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodPost, "http://example.com/v1/allocations", tt.body, testActor)
			test.AssertHTTPStatus(t, &r, tt.status)
		})
	}
}

func (suite *TestSuiteStandard) TestAllocationsConfirm() {
	program := programWithApplications(suite.T(), 2)

	a := createTestAllocation(suite.T(), v1.AllocationEditable{
		ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
	})

	r := test.Request(suite.T(), http.MethodPost, a.Data.Links.Confirm, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var confirmed v1.AllocationResponse
	test.DecodeResponse(suite.T(), &r, &confirmed)
	assert.Equal(suite.T(), models.AllocationStatusConfirmed, confirmed.Data.Status)
	require.NotNil(suite.T(), confirmed.Data.ConfirmedBy)
	assert.Equal(suite.T(), testActor["X-Actor"], confirmed.Data.ConfirmedBy.String())
	assert.NotNil(suite.T(), confirmed.Data.ConfirmedAt)

	// One voucher per selected applicant
	var vouchers v1.VoucherListResponse
	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/vouchers?program=%s", program.Data.ID), "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
	test.DecodeResponse(suite.T(), &r, &vouchers)
	require.Len(suite.T(), vouchers.Data, 2)

	for _, voucher := range vouchers.Data {
		assert.Equal(suite.T(), models.VoucherStatusActive, voucher.Status)
		assert.True(suite.T(), voucher.Amount.Equal(decimal.NewFromInt(50000)))
		assert.True(suite.T(), voucher.Balance.Equal(voucher.Amount))
	}

	// Confirming again is a no-op
	r = test.Request(suite.T(), http.MethodPost, a.Data.Links.Confirm, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodGet, fmt.Sprintf("http://example.com/v1/vouchers?program=%s", program.Data.ID), "")
	test.DecodeResponse(suite.T(), &r, &vouchers)
	assert.Len(suite.T(), vouchers.Data, 2)
}

func (suite *TestSuiteStandard) TestAllocationsDelete() {
	program := publishedProgram(suite.T())

	a := createTestAllocation(suite.T(), v1.AllocationEditable{
		ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
	})

	r := test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	r = test.Request(suite.T(), http.MethodGet, a.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNotFound)
}

func (suite *TestSuiteStandard) TestAllocationsDeleteConfirmed() {
	program := programWithApplications(suite.T(), 1)

	a := createTestAllocation(suite.T(), v1.AllocationEditable{
		ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
	})

	r := test.Request(suite.T(), http.MethodPost, a.Data.Links.Confirm, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = test.Request(suite.T(), http.MethodDelete, a.Data.Links.Self, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusBadRequest)

	var response struct {
		Error string `json:"error"`
	}
	test.DecodeResponse(suite.T(), &r, &response)
	assert.Contains(suite.T(), response.Error, models.ErrAllocationConfirmed.Error())
}

func (suite *TestSuiteStandard) TestAllocationsGetFilter() {
	program := publishedProgram(suite.T())
	otherProgram := publishedProgram(suite.T())

	_ = createTestAllocation(suite.T(), v1.AllocationEditable{ProgramID: ez_uuid.UUID{UUID: program.Data.ID}})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{ProgramID: ez_uuid.UUID{UUID: program.Data.ID}})
	_ = createTestAllocation(suite.T(), v1.AllocationEditable{ProgramID: ez_uuid.UUID{UUID: otherProgram.Data.ID}})

	tests := []struct {
		name  string
		query string
		len   int
	}{
		{"Program", fmt.Sprintf("program=%s", program.Data.ID), 2},
		{"Status draft", "status=draft", 3},
		{"Status confirmed", "status=confirmed", 0},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			var response v1.AllocationListResponse
			r := test.Request(t, http.MethodGet, fmt.Sprintf("http://example.com/v1/allocations?%s", tt.query), "")
			test.AssertHTTPStatus(t, &r, http.StatusOK)
			test.DecodeResponse(t, &r, &response)

			assert.Equal(t, tt.len, len(response.Data), "Request ID: %s", r.Result().Header.Get("x-request-id"))
		})
	}
}
