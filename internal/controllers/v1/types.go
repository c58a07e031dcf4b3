package v1

import (
	"github.com/gin-gonic/gin"
	google_uuid "github.com/google/uuid"

	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

type URIID struct {
	ID ez_uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

// Pagination contains information about the pagination for
// collection endpoints.
type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

// actor reads the acting user from the X-Actor header.
//
// Authentication is handled by an external gateway, the backend only
// needs to know who acts for ownership checks and the audit trail.
func actor(c *gin.Context) (google_uuid.UUID, error) {
	id, err := google_uuid.Parse(c.GetHeader("X-Actor"))
	if err != nil {
		return google_uuid.Nil, errActorMissing
	}

	return id, nil
}
