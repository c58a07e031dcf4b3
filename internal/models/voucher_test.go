package models_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/models"
)

func (suite *TestSuiteStandard) TestVoucherAfterSave() {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		balance decimal.Decimal
		err     error
	}{
		{"Balance equals amount", decimal.NewFromInt(50000), decimal.NewFromInt(50000), nil},
		{"Partially used", decimal.NewFromInt(50000), decimal.NewFromInt(20000), nil},
		{"Negative balance", decimal.NewFromInt(50000), decimal.NewFromInt(-1), models.ErrGeneral},
		{"Balance above amount", decimal.NewFromInt(50000), decimal.NewFromInt(50001), models.ErrGeneral},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			voucher := models.Voucher{
				Amount:  tt.amount,
				Balance: tt.balance,
			}

			err := voucher.AfterSave(&gorm.DB{})
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func (suite *TestSuiteStandard) TestVoucherExpired() {
	now := time.Date(2024, 6, 14, 0, 0, 0, 0, time.UTC)

	open := models.Voucher{}
	assert.False(suite.T(), open.Expired(now))

	future := now.Add(time.Hour)
	assert.False(suite.T(), models.Voucher{ExpiryDate: &future}.Expired(now))

	past := now.Add(-time.Hour)
	assert.True(suite.T(), models.Voucher{ExpiryDate: &past}.Expired(now))
}

func (suite *TestSuiteStandard) TestVoucherDefaults() {
	program := suite.createTestProgram(models.Program{})
	applicant := suite.createTestApplicant(models.Applicant{})

	voucher := suite.createTestVoucher(models.Voucher{
		ProgramID:   program.ID,
		ApplicantID: applicant.ID,
	})

	// The defaults are set by the database, read the row back
	var fetched models.Voucher
	err := models.DB.First(&fetched, "id = ?", voucher.ID).Error
	assert.Nil(suite.T(), err)

	assert.Equal(suite.T(), models.VoucherStatusActive, fetched.Status)
	assert.Equal(suite.T(), uint(1), fetched.UsageLimit)
}

func (suite *TestSuiteStandard) TestVoucherUsageDefaults() {
	program := suite.createTestProgram(models.Program{})
	applicant := suite.createTestApplicant(models.Applicant{})

	voucher := suite.createTestVoucher(models.Voucher{
		ProgramID:   program.ID,
		ApplicantID: applicant.ID,
	})

	usage := models.VoucherUsage{
		VoucherID: voucher.ID,
		Amount:    decimal.NewFromInt(10000),
	}
	err := models.DB.Create(&usage).Error

	assert.Nil(suite.T(), err)
	assert.False(suite.T(), usage.UsageDate.IsZero())
}
