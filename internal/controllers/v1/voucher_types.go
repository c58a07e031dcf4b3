package v1

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/ledger"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

// VoucherIssue is the request body for issuing a voucher directly,
// outside of an allocation confirmation.
type VoucherIssue struct {
	ProgramID   ez_uuid.UUID    `json:"programId" example:"438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	ApplicantID ez_uuid.UUID    `json:"applicantId" example:"d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
	Amount      decimal.Decimal `json:"amount" example:"50000"` // In minor units, must be positive
	ExpiryDate  *time.Time      `json:"expiryDate"`
	UsageLimit  uint            `json:"usageLimit" example:"1" default:"1"`
}

type VoucherLinks struct {
	Self      string `json:"self" example:"https://example.com/api/v1/vouchers/2f6b8c1d-5a3e-47d9-b0f4-9c2e7a1d8b36"`
	Program   string `json:"program" example:"https://example.com/api/v1/programs/438cc6c0-9baf-49fd-a75a-d76bd5cab19c"`
	Applicant string `json:"applicant" example:"https://example.com/api/v1/applicants/d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
	Use       string `json:"use" example:"https://example.com/api/v1/vouchers/2f6b8c1d-5a3e-47d9-b0f4-9c2e7a1d8b36/use"`
}

type Voucher struct {
	models.DefaultModel
	Code        string               `json:"code" example:"K7Q2D9XWM4PL"`
	ProgramID   ez_uuid.UUID         `json:"programId"`
	ApplicantID ez_uuid.UUID         `json:"applicantId"`
	Amount      decimal.Decimal      `json:"amount" example:"50000"`
	Balance     decimal.Decimal      `json:"balance" example:"32000"`
	UsageLimit  uint                 `json:"usageLimit" example:"1"`
	Status      models.VoucherStatus `json:"status" example:"active"`
	ExpiryDate  *time.Time           `json:"expiryDate"`
	IssuedBy    ez_uuid.UUID         `json:"issuedBy"`
	Links       VoucherLinks         `json:"links"`
}

func newVoucher(c *gin.Context, model models.Voucher) Voucher {
	url := httputil.RequestPathV1(c)

	return Voucher{
		DefaultModel: model.DefaultModel,
		Code:         model.Code,
		ProgramID:    ez_uuid.UUID{UUID: model.ProgramID},
		ApplicantID:  ez_uuid.UUID{UUID: model.ApplicantID},
		Amount:       model.Amount,
		Balance:      model.Balance,
		UsageLimit:   model.UsageLimit,
		Status:       model.Status,
		ExpiryDate:   model.ExpiryDate,
		IssuedBy:     ez_uuid.UUID{UUID: model.IssuedBy},
		Links: VoucherLinks{
			Self:      fmt.Sprintf("%s/vouchers/%s", url, model.ID),
			Program:   fmt.Sprintf("%s/programs/%s", url, model.ProgramID),
			Applicant: fmt.Sprintf("%s/applicants/%s", url, model.ApplicantID),
			Use:       fmt.Sprintf("%s/vouchers/%s/use", url, model.ID),
		},
	}
}

type VoucherListResponse struct {
	Data       []Voucher   `json:"data"`
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination `json:"pagination"`
}

type VoucherResponse struct {
	Error *string  `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *Voucher `json:"data"`
}

type VoucherQueryFilter struct {
	Code        string               `form:"code" filterField:"false"` // By redemption code
	ProgramID   ez_uuid.UUID         `form:"program"`                  // By program ID
	ApplicantID ez_uuid.UUID         `form:"applicant"`                // By applicant ID
	Status      models.VoucherStatus `form:"status"`                   // By status
	Offset      uint                 `form:"offset" filterField:"false"`
	Limit       int                  `form:"limit" filterField:"false"`
}

func (f VoucherQueryFilter) model() models.Voucher {
	return models.Voucher{
		ProgramID:   f.ProgramID.UUID,
		ApplicantID: f.ApplicantID.UUID,
		Status:      f.Status,
	}
}

// VoucherUse is the request body for debiting a voucher.
type VoucherUse struct {
	Amount       decimal.Decimal `json:"amount" example:"18000"` // In minor units, must be positive
	MerchantName string          `json:"merchantName" example:"Book store Jongno" default:""`
}

// VoucherUseData is the outcome of a successful debit.
type VoucherUseData struct {
	RemainingBalance decimal.Decimal      `json:"remainingBalance" example:"32000"`
	Status           models.VoucherStatus `json:"status" example:"active"`
}

type VoucherUseResponse struct {
	Error *string         `json:"error" example:"the voucher balance is lower than the requested amount"`
	Data  *VoucherUseData `json:"data"`
}

func newVoucherUseData(result ledger.UseResult) VoucherUseData {
	return VoucherUseData{
		RemainingBalance: result.RemainingBalance,
		Status:           result.Status,
	}
}

// VoucherUsageRecord is the API representation of a single debit.
type VoucherUsageRecord struct {
	models.DefaultModel
	VoucherID    ez_uuid.UUID    `json:"voucherId"`
	Amount       decimal.Decimal `json:"amount" example:"18000"`
	MerchantName string          `json:"merchantName" example:"Book store Jongno"`
	UsageDate    time.Time       `json:"usageDate"`
}

func newVoucherUsageRecord(model models.VoucherUsage) VoucherUsageRecord {
	return VoucherUsageRecord{
		DefaultModel: model.DefaultModel,
		VoucherID:    ez_uuid.UUID{UUID: model.VoucherID},
		Amount:       model.Amount,
		MerchantName: model.MerchantName,
		UsageDate:    model.UsageDate,
	}
}

type VoucherUsageListResponse struct {
	Error *string              `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  []VoucherUsageRecord `json:"data"`
}
