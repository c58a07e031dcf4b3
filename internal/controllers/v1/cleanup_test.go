package v1_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	v1 "github.com/voucherhub/backend/internal/controllers/v1"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
	"github.com/voucherhub/backend/test"
)

func (suite *TestSuiteStandard) TestCleanup() {
	program := programWithApplications(suite.T(), 2)

	allocation := createTestAllocation(suite.T(), v1.AllocationEditable{
		ProgramID: ez_uuid.UUID{UUID: program.Data.ID},
	})

	r := test.Request(suite.T(), http.MethodPost, allocation.Data.Links.Confirm, "", testActor)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	_ = createTestNotification(suite.T(), v1.NotificationEditable{})
	_ = createTestReview(suite.T(), v1.ReviewEditable{Score: 50})

	r = test.Request(suite.T(), http.MethodDelete, "http://example.com/v1?confirm=yes-please-delete-everything", "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusNoContent)

	// No resources must be left, not even audit logs
	for name, model := range map[string]any{
		"applicant":     &models.Applicant{},
		"program":       &models.Program{},
		"application":   &models.Application{},
		"review":        &models.Review{},
		"allocation":    &models.Allocation{},
		"voucher":       &models.Voucher{},
		"voucher usage": &models.VoucherUsage{},
		"notification":  &models.Notification{},
		"file":          &models.File{},
		"audit log":     &models.AuditLog{},
	} {
		var count int64
		err := models.DB.Model(model).Count(&count).Error
		assert.NoError(suite.T(), err, "count for %s failed", name)
		assert.Zerof(suite.T(), count, "%d %s resources are left", count, name)
	}
}

func (suite *TestSuiteStandard) TestCleanupFails() {
	program := createTestProgram(suite.T(), v1.ProgramEditable{})

	tests := []struct {
		name    string
		confirm string
	}{
		{"No confirmation", ""},
		{"Wrong confirmation", "on-second-thought-rather-not"},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := test.Request(t, http.MethodDelete, fmt.Sprintf("http://example.com/v1?confirm=%s", tt.confirm), "")
			test.AssertHTTPStatus(t, &r, http.StatusBadRequest)
		})
	}

	// Nothing was deleted
	r := test.Request(suite.T(), http.MethodGet, program.Data.Links.Self, "")
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)
}
