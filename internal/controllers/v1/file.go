package v1

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/slices"

	"github.com/voucherhub/backend/internal/audit"
	"github.com/voucherhub/backend/internal/httperror"
	"github.com/voucherhub/backend/internal/httputil"
	"github.com/voucherhub/backend/internal/models"
	ez_uuid "github.com/voucherhub/backend/internal/uuid"
)

// RegisterFileRoutes registers the routes for files with the
// RouterGroup that is passed.
func RegisterFileRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", OptionsFiles)
		r.GET("", GetFiles)
		r.POST("", CreateFile)
	}
	{
		r.OPTIONS("/:id", OptionsFileDetail)
		r.GET("/:id", GetFile)
		r.DELETE("/:id", DeleteFile)
	}
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Files
// @Success		204
// @Router			/v1/files [options]
func OptionsFiles(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// @Summary		Allowed HTTP verbs
// @Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
// @Tags			Files
// @Success		204
// @Failure		400	{object}	httperror.Error
// @Failure		404	{object}	httperror.Error
// @Param			id	path		URIID	true	"ignored, but needed: https://github.com/swaggo/swag/issues/1014"
// @Router			/v1/files/{id} [options]
func OptionsFileDetail(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.First(&models.File{}, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	c.Header("allow", "GET, DELETE")
	c.Status(http.StatusNoContent)
}

// @Summary		Upload file
// @Description	Registers an uploaded file for an applicant. The content hash is stored for duplicate detection, the content itself lives in external storage.
// @Tags			Files
// @Accept			multipart/form-data
// @Produce		json
// @Success		201		{object}	FileResponse
// @Failure		400		{object}	FileResponse
// @Failure		404		{object}	FileResponse
// @Failure		500		{object}	FileResponse
// @Param			file	formData	file	true	"The file to upload"
// @Param			owner	formData	string	true	"ID of the applicant owning the file"
// @Param			X-Actor	header		string	true	"ID of the acting user"
// @Router			/v1/files [post]
func CreateFile(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, FileResponse{Error: &s})
		return
	}

	var owner ez_uuid.UUID
	err = owner.UnmarshalParam(c.PostForm("owner"))
	if err != nil {
		s := fmt.Sprintf("the owner form field is not a valid UUID: %s", err)
		c.JSON(http.StatusBadRequest, FileResponse{Error: &s})
		return
	}

	formFile, err := c.FormFile("file")
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, FileResponse{Error: &s})
		return
	}

	open, err := formFile.Open()
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, FileResponse{Error: &s})
		return
	}
	defer open.Close()

	content, err := io.ReadAll(open)
	if err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, FileResponse{Error: &s})
		return
	}

	id := ez_uuid.New()
	filename := fmt.Sprintf("%s-%s", id, formFile.Filename)

	file := models.File{
		DefaultModel: models.DefaultModel{ID: id.UUID},
		Filename:     filename,
		OriginalName: formFile.Filename,
		Path:         fmt.Sprintf("uploads/%s", filename),
		Size:         int64(len(content)),
		MimeType:     formFile.Header.Get("Content-Type"),
		Checksum:     models.Sha256String(content),
		OwnerID:      owner.UUID,
	}

	err = models.DB.Create(&file).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FileResponse{Error: &s})
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "upload_file",
		TargetType: "file",
		TargetID:   file.ID,
	})

	apiResource := newFile(c, file)
	c.JSON(http.StatusCreated, FileResponse{Data: &apiResource})
}

// @Summary		Get files
// @Description	Returns a list of file records
// @Tags			Files
// @Produce		json
// @Success		200	{object}	FileListResponse
// @Failure		400	{object}	FileListResponse
// @Failure		500	{object}	FileListResponse
// @Router			/v1/files [get]
// @Param			owner		query	string	false	"Filter by owner ID"
// @Param			checksum	query	string	false	"Filter by content checksum"
// @Param			offset		query	uint	false	"The offset of the first file returned. Defaults to 0."
// @Param			limit		query	int		false	"Maximum number of files to return. Defaults to 50."
func GetFiles(c *gin.Context) {
	var filter FileQueryFilter

	if err := c.Bind(&filter); err != nil {
		s := err.Error()
		c.JSON(http.StatusBadRequest, FileListResponse{Error: &s})
		return
	}

	queryFields, setFields := httputil.GetURLFields(c.Request.URL, filter)
	where := filter.model()

	q := models.DB.
		Order("files.created_at DESC").
		Where(&where, queryFields...)

	q = q.Offset(int(filter.Offset))

	limit := 50
	if slices.Contains(setFields, "Limit") {
		limit = filter.Limit
	}
	q = q.Limit(limit)

	var files []models.File
	err := q.Find(&files).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FileListResponse{Error: &s})
		return
	}

	var count int64
	err = q.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FileListResponse{Error: &s})
		return
	}

	data := make([]File, 0, len(files))
	for _, file := range files {
		data = append(data, newFile(c, file))
	}

	c.JSON(http.StatusOK, FileListResponse{
		Data: data,
		Pagination: &Pagination{
			Count:  len(data),
			Offset: filter.Offset,
			Limit:  limit,
			Total:  count,
		},
	})
}

// @Summary		Get file
// @Description	Returns a specific file record
// @Tags			Files
// @Produce		json
// @Success		200	{object}	FileResponse
// @Failure		400	{object}	FileResponse
// @Failure		404	{object}	FileResponse
// @Failure		500	{object}	FileResponse
// @Param			id	path		URIID	true	"ID formatted as string"
// @Router			/v1/files/{id} [get]
func GetFile(c *gin.Context) {
	var uri URIID
	err := c.ShouldBindUri(&uri)
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FileResponse{Error: &s})
		return
	}

	var file models.File
	err = models.DB.First(&file, "id = ?", uri.ID.UUID).Error
	if err != nil {
		s := err.Error()
		c.JSON(status(err), FileResponse{Error: &s})
		return
	}

	apiResource := newFile(c, file)
	c.JSON(http.StatusOK, FileResponse{Data: &apiResource})
}

// @Summary		Delete file
// @Description	Deletes a file record
// @Tags			Files
// @Success		204
// @Failure		400		{object}	httperror.Error
// @Failure		404		{object}	httperror.Error
// @Failure		500		{object}	httperror.Error
// @Param			id		path		URIID	true	"ID formatted as string"
// @Param			X-Actor	header		string	true	"ID of the acting user"
// @Router			/v1/files/{id} [delete]
func DeleteFile(c *gin.Context) {
	actorID, err := actor(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, httperror.New(err))
		return
	}

	var uri URIID
	err = c.ShouldBindUri(&uri)
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	var file models.File
	err = models.DB.First(&file, "id = ?", uri.ID.UUID).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	err = models.DB.Delete(&file).Error
	if err != nil {
		c.JSON(status(err), httperror.New(err))
		return
	}

	audit.Emit(audit.Event{
		ActorID:    actorID,
		Action:     "delete_file",
		TargetType: "file",
		TargetID:   file.ID,
	})

	c.Status(http.StatusNoContent)
}
