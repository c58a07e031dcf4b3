package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/voucherhub/backend/internal/httperror"
	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/ledger"
	"github.com/voucherhub/backend/internal/models"
)

// RegisterVoucherRoutes registers the routes for vouchers with the
// RouterGroup that is passed.
func RegisterVoucherRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsVouchers)
		r.GET("", GetVouchers)
		r.POST("", IssueVoucher)
	}
	{
		r.OPTIONS("/:id", OptionsVoucherDetail)
		r.GET("/:id", GetVoucher)
	}
	{
		r.OPTIONS("/:id/use", OptionsVoucherUse)
		r.POST("/:id/use", UseVoucher)
	}
	{
		r.OPTIONS("/:id/cancel", OptionsVoucherCancel)
		r.POST("/:id/cancel", CancelVoucher)
	}
	{
		r.OPTIONS("/:id/usage", OptionsVoucherUsage)
		r.GET("/:id/usage", GetVoucherUsage)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vouchers
// @Success		204
// @Router			/v1/vouchers [options]
func OptionsVouchers(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vouchers
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vouchers/{id} [options]
func OptionsVoucherDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Voucher{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vouchers
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vouchers/{id}/use [options]
func OptionsVoucherUse(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Voucher{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vouchers
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vouchers/{id}/cancel [options]
func OptionsVoucherCancel(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Voucher{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Vouchers
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/vouchers/{id}/usage [options]
func OptionsVoucherUsage(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.Voucher{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	httputil.OptionsGet(c)
}

// @Summary		Issue voucher
// @Description	Issues a voucher with a unique redemption code and the full amount as its starting balance
// @Tags			Vouchers
// @Accept			json
// @Produce		json
// @Success		201		{object}	VoucherResponse
// @Failure		400		{object}	VoucherResponse
// @Failure		404		{object}	VoucherResponse
// @Failure		500		{object}	VoucherResponse
// @Param			voucher	body		VoucherIssue	true	"Voucher"
// @Param			X-Actor	header		string			true	"ID of the acting administrator"
// @Router			/v1/vouchers [post]
func IssueVoucher(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, VoucherResponse{Error: &s})
		return
	}

	var issue VoucherIssue
	err = httputil.BindData(c, &issue)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherResponse{Error: &s})
		return
	}

	voucher, err := ledger.Issue(models.DB, ledger.IssueRequest{
		ProgramID:   issue.ProgramID.UUID,
		ApplicantID: issue.ApplicantID.UUID,
		Amount:      issue.Amount,
		ExpiryDate:  issue.ExpiryDate,
		UsageLimit:  issue.UsageLimit,
		IssuedBy:    actorID,
	})
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherResponse{Error: &s})
		return
	}

	apiResource := newVoucher(c, voucher)
	c.JSON(http.StatusCreated, VoucherResponse{Data: &apiResource})
}

// @Summary		Get vouchers
// @Description	Returns a list of vouchers
// @Tags			Vouchers
// @Produce		json
// @Success		200	{object}	VoucherListResponse
// @Failure		400	{object}	VoucherListResponse
// @Failure		500	{object}	VoucherListResponse
// @Router			/v1/vouchers [get]
// @Param			code		query	string	false	"Filter by redemption code"
// @Param			program		query	string	false	"Filter by program ID"
// @Param			applicant	query	string	false	"Filter by applicant ID"
// @Param			status		query	string	false	"Filter by status"
// @Param			offset		query	uint	false	"The offset of the first voucher returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of vouchers to return. Defaults to 50."
func GetVouchers(c *gin.Context) {
	var filter VoucherQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, VoucherListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("vouchers.created_at DESC").
		Where(&where, queryFields...)

	if filter.Code != "" {
		q = q.Where("code = ?", filter.Code)
	}

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var vouchers []models.Voucher
	err := q.Find(&vouchers).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherListResponse{Error: &s})
		return
	}

	data := make([]Voucher, 0, len(vouchers))
	for _, voucher := range vouchers {
		data = append(data, newVoucher(c, voucher))
	}

	c.JSON(http.StatusOK, VoucherListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get voucher
// @Description	Returns a specific voucher
// @Tags			Vouchers
// @Produce		json
// @Success		200	{object}	VoucherResponse
// @Failure		400	{object}	VoucherResponse
// @Failure		404	{object}	VoucherResponse
// @Failure		500	{object}	VoucherResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/vouchers/{id} [get]
func GetVoucher(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherResponse{Error: &s})
		return
	}

	var voucher models.Voucher
	err = models.DB.First(&voucher, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherResponse{Error: &s})
		return
	}

	apiResource := newVoucher(c, voucher)
	c.JSON(http.StatusOK, VoucherResponse{Data: &apiResource})
}

// @Summary		Use voucher
// @Description	Debits the voucher. The voucher must belong to the acting user, be active, not expired and hold at least the requested amount.
// @Tags			Vouchers
// @Accept			json
// @Produce		json
// @Success		200		{object}	VoucherUseResponse
// @Failure		400		{object}	VoucherUseResponse
// @Failure		404		{object}	VoucherUseResponse
// @Failure		500		{object}	VoucherUseResponse
// @Param			id		path		URIID		true	"ID formatted as string"
// @Param			usage	body		VoucherUse	true	"Usage"
// @Param			X-Actor	header		string		true	"ID of the applicant using the voucher"
// @Router			/v1/vouchers/{id}/use [post]
func UseVoucher(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, VoucherUseResponse{Error: &s})
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherUseResponse{Error: &s})
		return
	}

	var use VoucherUse
	err = httputil.BindData(c, &use)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherUseResponse{Error: &s})
		return
	}

	result, err := ledger.Use(models.DB, uri.ID.UUID, actorID, use.Amount, use.MerchantName)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherUseResponse{Error: &s})
		return
	}

	data := newVoucherUseData(result)
	c.JSON(http.StatusOK, VoucherUseResponse{Data: &data})
}

// @Summary		Cancel voucher
// @Description	Cancels an active voucher regardless of its balance. Used, expired and cancelled vouchers are terminal.
// @Tags			Vouchers
// @Produce		json
// @Success		200		{object}	VoucherResponse
// @Failure		400		{object}	VoucherResponse
// @Failure		404		{object}	VoucherResponse
// @Failure		500		{object}	VoucherResponse
// @Param			id		path		URIID	true	"ID formatted as string"
// @Param			X-Actor	header		string	true	"ID of the acting administrator"
// @Router			/v1/vouchers/{id}/cancel [post]
func CancelVoucher(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, VoucherResponse{Error: &s})
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherResponse{Error: &s})
		return
	}

	voucher, err := ledger.Cancel(models.DB, uri.ID.UUID, actorID)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherResponse{Error: &s})
		return
	}

	apiResource := newVoucher(c, voucher)
	c.JSON(http.StatusOK, VoucherResponse{Data: &apiResource})
}

// @Summary		Get voucher usage
// @Description	Returns the usage records of a voucher, newest first
// @Tags			Vouchers
// @Produce		json
// @Success		200	{object}	VoucherUsageListResponse
// @Failure		400	{object}	VoucherUsageListResponse
// @Failure		404	{object}	VoucherUsageListResponse
// @Failure		500	{object}	VoucherUsageListResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/vouchers/{id}/usage [get]
func GetVoucherUsage(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherUsageListResponse{Error: &s})
		return
	}

	err = models.DB.First(&models.Voucher{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherUsageListResponse{Error: &s})
		return
	}

	var usage []models.VoucherUsage
	err = models.DB.
		Where("voucher_id = ?", uri.ID.UUID).
		Order("usage_date DESC").
		Find(&usage).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), VoucherUsageListResponse{Error: &s})
		return
	}

	data := make([]VoucherUsageRecord, 0, len(usage))
	for _, u := range usage {
		data = append(data, newVoucherUsageRecord(u))
	}

	c.JSON(http.StatusOK, VoucherUsageListResponse{Data: data})
}
