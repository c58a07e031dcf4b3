package v1

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

type FileLinks struct {
	Self  string `json:"self" example:"https://example.com/api/v1/files/4d8e2a6f-1b9c-45d3-a7e8-0f6b3c9d2e15"`
	Owner string `json:"owner" example:"https://example.com/api/v1/applicants/d1b4b1a8-2b5b-4a2a-9d5b-8a0d6f9b3a11"`
}

type File struct {
	models.DefaultModel
	Filename     string       `json:"filename" example:"4d8e2a6f-income-statement.pdf"`
	OriginalName string       `json:"originalName" example:"income-statement.pdf"`
	Path         string       `json:"path" example:"uploads/4d8e2a6f-income-statement.pdf"`
	Size         int64        `json:"size" example:"182734"`
	MimeType     string       `json:"mimeType" example:"application/pdf"`
	Checksum     string       `json:"checksum" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
	OwnerID      ez_uuid.UUID `json:"ownerId"`
	Links        FileLinks    `json:"links"`
}

func newFile(c *gin.Context, model models.File) File {
	url := httputil.RequestPathV1(c)

	return File{
		DefaultModel: model.DefaultModel,
		Filename:     model.Filename,
		OriginalName: model.OriginalName,
		Path:         model.Path,
		Size:         model.Size,
		MimeType:     model.MimeType,
		Checksum:     model.Checksum,
		OwnerID:      ez_uuid.UUID{UUID: model.OwnerID},
		Links: FileLinks{
			Self:  fmt.Sprintf("%s/files/%s", url, model.ID),
			Owner: fmt.Sprintf("%s/applicants/%s", url, model.OwnerID),
		},
	}
}

type FileListResponse struct {
	Data       []File      `json:"data"`
	Error      *string     `json:"error" example:"the specified resource ID is not a valid UUID"`
	Pagination *Pagination `json:"pagination"`
}

type FileResponse struct {
	Error *string `json:"error" example:"the specified resource ID is not a valid UUID"`
	Data  *File   `json:"data"`
}

type FileQueryFilter struct {
	OwnerID  ez_uuid.UUID `form:"owner"`    // By owner ID
	Checksum string       `form:"checksum"` // By content checksum
	Offset   uint         `form:"offset" filterField:"false"`
	Limit    int          `form:"limit" filterField:"false"`
}

func (f FileQueryFilter) model() models.File {
	return models.File{
		OwnerID:  f.OwnerID.UUID,
		Checksum: f.Checksum,
	}
}
