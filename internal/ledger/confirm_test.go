package ledger_test

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voucherhub/backend/internal/ledger"
	"github.com/voucherhub/backend/internal/models"
)

// draftAllocation creates a draft allocation whose result selects the
// given applicants at 50000 each.
func (suite *TestSuiteStandard) draftAllocation(program models.Program, applicants ...models.Applicant) models.Allocation {
	amount := decimal.NewFromInt(50000)

	var selections []models.AllocationSelection
	for _, applicant := range applicants {
		selections = append(selections, models.AllocationSelection{
			ApplicationID: uuid.New(),
			ApplicantID:   applicant.ID,
			Amount:        amount,
		})
	}

	allocation := models.Allocation{
		ProgramID: program.ID,
		Rules: models.AllocationRules{
			VoucherAmount: amount,
		},
		Results: models.AllocationResult{
			TotalApplicants:    len(applicants),
			EligibleApplicants: len(applicants),
			SelectedApplicants: len(selections),
			AllocatedBudget:    amount.Mul(decimal.NewFromInt(int64(len(selections)))),
			RemainingBudget:    decimal.Zero,
			Results:            selections,
		},
	}

	err := models.DB.Create(&allocation).Error
	if err != nil {
		suite.Assert().FailNow("Allocation could not be saved", "Error: %s, Allocation: %#v", err, allocation)
	}

	return allocation
}

func (suite *TestSuiteStandard) TestConfirmAllocation() {
	program := suite.createTestProgram(models.Program{})
	first := suite.createTestApplicant(models.Applicant{})
	second := suite.createTestApplicant(models.Applicant{})

	allocation := suite.draftAllocation(program, first, second)
	actor := uuid.New()

	confirmed, err := ledger.ConfirmAllocation(models.DB, allocation.ID, actor)
	require.Nil(suite.T(), err)

	assert.Equal(suite.T(), models.AllocationStatusConfirmed, confirmed.Status)
	require.NotNil(suite.T(), confirmed.ConfirmedBy)
	assert.Equal(suite.T(), actor, *confirmed.ConfirmedBy)
	assert.NotNil(suite.T(), confirmed.ConfirmedAt)

	// One voucher per selection
	var vouchers []models.Voucher
	require.Nil(suite.T(), models.DB.Where("program_id = ?", program.ID).Find(&vouchers).Error)
	require.Len(suite.T(), vouchers, 2)

	for _, voucher := range vouchers {
		assert.Equal(suite.T(), models.VoucherStatusActive, voucher.Status)
		assert.True(suite.T(), voucher.Amount.Equal(decimal.NewFromInt(50000)))
		assert.Equal(suite.T(), actor, voucher.IssuedBy)
	}
}

func (suite *TestSuiteStandard) TestConfirmAllocationIdempotent() {
	program := suite.createTestProgram(models.Program{})
	applicant := suite.createTestApplicant(models.Applicant{})

	allocation := suite.draftAllocation(program, applicant)

	_, err := ledger.ConfirmAllocation(models.DB, allocation.ID, uuid.New())
	require.Nil(suite.T(), err)

	// The second confirmation must not issue a second voucher batch
	confirmed, err := ledger.ConfirmAllocation(models.DB, allocation.ID, uuid.New())
	require.Nil(suite.T(), err)
	assert.Equal(suite.T(), models.AllocationStatusConfirmed, confirmed.Status)

	var count int64
	require.Nil(suite.T(), models.DB.Model(&models.Voucher{}).Where("program_id = ?", program.ID).Count(&count).Error)
	assert.Equal(suite.T(), int64(1), count)
}

func (suite *TestSuiteStandard) TestConfirmAllocationRollback() {
	program := suite.createTestProgram(models.Program{})
	applicant := suite.createTestApplicant(models.Applicant{})

	allocation := suite.draftAllocation(program, applicant)

	// Remove the applicant so that issuance inside the confirmation
	// fails and the whole transaction rolls back
	require.Nil(suite.T(), models.DB.Delete(&applicant).Error)

	_, err := ledger.ConfirmAllocation(models.DB, allocation.ID, uuid.New())
	require.ErrorIs(suite.T(), err, models.ErrResourceNotFound)

	var stored models.Allocation
	require.Nil(suite.T(), models.DB.First(&stored, "id = ?", allocation.ID).Error)
	assert.Equal(suite.T(), models.AllocationStatusDraft, stored.Status)

	var count int64
	require.Nil(suite.T(), models.DB.Model(&models.Voucher{}).Where("program_id = ?", program.ID).Count(&count).Error)
	assert.Equal(suite.T(), int64(0), count)
}

func (suite *TestSuiteStandard) TestConfirmAllocationNotFound() {
	_, err := ledger.ConfirmAllocation(models.DB, uuid.New(), uuid.New())
	assert.ErrorIs(suite.T(), err, models.ErrResourceNotFound)
}
