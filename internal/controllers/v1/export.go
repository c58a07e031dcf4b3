package v1

import (
	"encoding/json"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
)

// RegisterExportRoutes registers the routes for exports with the
// RouterGroup that is passed.
func RegisterExportRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", OptionsExport)
	r.GET("", GetExport)
}

type ExportResponse struct {
	Error *string                    `json:"error" example:"an error occurred on the server during your request"`
	Data  map[string]json.RawMessage `json:"data"`
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Export
// @Success		204
// @Router			/v1/export [options]
func OptionsExport(c *gin.Context) {
	httputil.OptionsGet(c)
}

// @Summary		Export
// @Description	Returns all resources of the instance, keyed by resource type
// @Tags			Export
// @Produce		json
// @Success		200	{object}	ExportResponse
// @Failure		500	{object}	ExportResponse
// @Router			/v1/export [get]
func GetExport(c *gin.Context) {
	data := make(map[string]json.RawMessage, len(models.Registry))

	for _, model := range models.Registry {
		raw, err := model.Export()
		if err != nil {
			s := err.Error()
			c.JSON(http.StatusInternalServerError, ExportResponse{Error: &s})
			return
		}

		data[reflect.TypeOf(model).Name()] = raw
	}

	c.JSON(http.StatusOK, ExportResponse{Data: data})
}
