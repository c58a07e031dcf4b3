package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/slices"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

// RegisterAdminRoutes registers the administrative routes with the
// RouterGroup that is passed.
func RegisterAdminRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("/dashboard", OptionsAdminDashboard)
		r.GET("/dashboard", GetAdminDashboard)
	}
	{
		r.OPTIONS("/audit-logs", OptionsAuditLogs)
		r.GET("/audit-logs", GetAuditLogs)
	}
}

// Dashboard is the administrative overview of the platform.
type Dashboard struct {
	Programs          int64           `json:"programs" example:"12"`
	PublishedPrograms int64           `json:"publishedPrograms" example:"4"`
	Applicants        int64           `json:"applicants" example:"1947"`
	Applications      int64           `json:"applications" example:"2205"`
	Vouchers          int64           `json:"vouchers" example:"731"`
	ActiveVouchers    int64           `json:"activeVouchers" example:"204"`
	TotalBudget       decimal.Decimal `json:"totalBudget" example:"18000000"`   // Sum over all program budgets
	IssuedAmount      decimal.Decimal `json:"issuedAmount" example:"12150000"`  // Sum over all voucher amounts
	OutstandingAmount decimal.Decimal `json:"outstandingAmount" example:"3800000"` // Sum over all voucher balances
}

type DashboardResponse struct {
	Error *string    `json:"error" example:"an error occurred on the server during your request"`
	Data  *Dashboard `json:"data"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Admin
// @Success		204
// @Router			/v1/admin/dashboard [options]
func OptionsAdminDashboard(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Admin
// @Success		204
// @Router			/v1/admin/audit-logs [options]
func OptionsAuditLogs(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Get dashboard
// @Description	Returns entity counts and budget totals for the administrative overview
// @Tags			Admin
// @Produce		json
// @Success		200	{object}	DashboardResponse
// @Failure		500	{object}	DashboardResponse
// @Router			/v1/admin/dashboard [get]
func GetAdminDashboard(c *gin.Context) {
	var dashboard Dashboard

	counts := []struct {
		model any
		query string
		args  []any
		value *int64
	}{
		{&models.Program{}, "", nil, &dashboard.Programs},
		{&models.Program{}, "status = ?", []any{models.ProgramStatusPublished}, &dashboard.PublishedPrograms},
		{&models.Applicant{}, "", nil, &dashboard.Applicants},
		{&models.Application{}, "", nil, &dashboard.Applications},
		{&models.Voucher{}, "", nil, &dashboard.Vouchers},
		{&models.Voucher{}, "status = ?", []any{models.VoucherStatusActive}, &dashboard.ActiveVouchers},
	}

	for _, count := range counts {
		q := models.DB.Model(count.model)
		if count.query != "" {
			q = q.Where(count.query, count.args...)
		}

		if err := q.Count(count.value).Error; err != nil {
			s := err.Error()
			c.JSON(http.StatusInternalServerError, DashboardResponse{Error: &s})
			return
		}
	}

	sums := []struct {
		model  any
		column string
		value  *decimal.Decimal
	}{
		{&models.Program{}, "budget", &dashboard.TotalBudget},
		{&models.Voucher{}, "amount", &dashboard.IssuedAmount},
		{&models.Voucher{}, "balance", &dashboard.OutstandingAmount},
	}

	for _, sum := range sums {
		err := models.DB.Model(sum.model).
			Select("COALESCE(SUM(" + sum.column + "), 0)").
			Scan(sum.value).Error
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusInternalServerError, DashboardResponse{Error: &s})
			return
		}
	}

	c.JSON(http.StatusOK, DashboardResponse{Data: &dashboard})
}

type AuditLogListResponse struct {
	Data       []models.AuditLog `json:"data"`
	Error      *string           `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination       `json:"pagination"`
}

type AuditLogQueryFilter struct {
	ActorID    ez_uuid.UUID `form:"actor"`      // By acting user
	Action     string       `form:"action"`     // By action
	TargetType string       `form:"targetType"` // By target type
	TargetID   ez_uuid.UUID `form:"target"`     // By target ID
	Offset     uint         `form:"offset" filterField:"false"`
	Limit      int          `form:"limit" filterField:"false"`
}

func (f AuditLogQueryFilter) model() models.AuditLog {
	return models.AuditLog{
		ActorID:    f.ActorID.UUID,
		Action:     f.Action,
		TargetType: f.TargetType,
		TargetID:   f.TargetID.UUID,
	}
}

// @Summary		Get audit logs
// @Description	Returns the audit trail, newest first. Audit logs are append-only and cannot be changed through the API.
// @Tags			Admin
// @Produce		json
// @Success		200	{object}	AuditLogListResponse
// @Failure		400	{object}	AuditLogListResponse
// @Failure		500	{object}	AuditLogListResponse
// @Router			/v1/admin/audit-logs [get]
// @Param			actor		query	string	false	"Filter by acting user ID"
// @Param			action		query	string	false	"Filter by action"
// @Param			targetType	query	string	false	"Filter by target type"
// @Param			target		query	string	false	"Filter by target ID"
// @Param			offset		query	uint	false	"The offset of the first audit log returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of audit logs to return. Defaults to 50."
func GetAuditLogs(c *gin.Context) {
	var filter AuditLogQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, AuditLogListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("audit_logs.timestamp DESC").
		Where(&where, queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var logs []models.AuditLog
	err := q.Find(&logs).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AuditLogListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), AuditLogListResponse{Error: &s})
		return
	}

	c.JSON(http.StatusOK, AuditLogListResponse{
		Data: logs,
		Pagination: &Pagination{
			Count:  len(logs),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}
