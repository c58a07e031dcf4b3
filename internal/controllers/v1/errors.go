package v1

import (
	"errors"
	"net/http"

	"gorm.io/gorm"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
)

// status returns the appropriate HTTP status for an error of the
// core. Unknown errors are considered client errors, the core wraps
// everything unexpected in ErrGeneral.
func status(err error) int {
	switch {
	case errors.Is(err, models.ErrGeneral):
		return http.StatusInternalServerError

	case errors.Is(err, models.ErrResourceNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict

	case errors.Is(err, models.ErrVoucherCodeGeneration):
		return http.StatusInternalServerError

	case errors.Is(err, httputil.ErrRequestBodyEmpty), errors.Is(err, httputil.ErrRequestBodyInvalid):
		return http.StatusBadRequest
	}

	// ErrValidation, ErrInvalidState, ErrVoucherInsufficientBalance
	// and bind errors
	return http.StatusBadRequest
}

// Cleanup errors
var errCleanupConfirmation = errors.New("the confirmation for the cleanup API call was incorrect")

// Actor errors
var errActorMissing = errors.New("the X-Actor header must be set to the ID of the acting user")
