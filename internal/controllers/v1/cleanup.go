package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/httperror"
	"github.com/voucherhub/backend/internal/models"
)

// RegisterCleanupRoutes registers the routes for cleanup with the
// RouterGroup that is passed.
func RegisterCleanupRoutes(r *gin.RouterGroup) {
	r.DELETE("", Cleanup)
}

// @Summary		Delete everything
// @Description	Permanently deletes all resources, including the audit trail. Only for testing environments.
// @Tags			v1
// @Success		204
// @Failure		400		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			confirm	query		string	false	"Confirmation to delete all resources. Must have the value 'yes-please-delete-everything'"
// @Router			/v1 [delete]
func Cleanup(c *gin.Context) {
	var params struct {
		Confirm string `form:"confirm"`
	}

	err := c.Bind(&params)
	if err != nil || params.Confirm != "yes-please-delete-everything" {
		c.JSON(http.StatusBadRequest, httperror.New(errCleanupConfirmation))
		return
	}

	// Referencing resources are deleted before the resources they
	// reference so that no deletion guard can trigger
	deletionOrder := []any{
		&models.VoucherUsage{},
		&models.Voucher{},
		&models.Notification{},
		&models.File{},
		&models.Review{},
		&models.Allocation{},
		&models.Application{},
		&models.Program{},
		&models.Applicant{},
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		for _, model := range deletionOrder {
			err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error
			if err != nil {
				return err
			}
		}

		// Audit logs refuse deletion at the model layer, the
		// cleanup facility goes around the hook on purpose
		return tx.Exec("DELETE FROM audit_logs").Error
	})
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	c.Status(http.StatusNoContent)
}
