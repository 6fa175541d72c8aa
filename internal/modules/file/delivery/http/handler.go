package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"vocalstudio.app/backend/internal/modules/file/dto"
	fileService "vocalstudio.app/backend/internal/modules/file/service"
	"vocalstudio.app/backend/pkg/apperror"
	commonDto "vocalstudio.app/backend/pkg/dto"
	"vocalstudio.app/backend/pkg/response"
	"vocalstudio.app/backend/pkg/validator"
)

type FileHandler struct {
	fileService fileService.FileService
}

func NewFileHandler(fileService fileService.FileService) *FileHandler {
	return &FileHandler{fileService: fileService}
}

func fileID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperror.NotFound("File not found")
	}
	return id, nil
}

func (h *FileHandler) GetFiles(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query dto.ListFilesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.fileService.List(c.Request.Context(), actor, query)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to get files")
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *FileHandler) UploadFile(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	var input dto.UploadFileInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.fileService.Upload(c.Request.Context(), actor, header, input)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "File upload failed")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *FileHandler) DownloadFile(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := fileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	url, err := h.fileService.DownloadURL(c.Request.Context(), actor, id)
	if err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to download file")
		return
	}
	c.Redirect(http.StatusFound, url)
}

func (h *FileHandler) DeleteFile(c *gin.Context) {
	actor, err := response.GetActor(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	id, err := fileID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.fileService.Delete(c.Request.Context(), actor, id); err != nil {
		response.ResponseErrorWithFallback(c, err, "Failed to delete file")
		return
	}
	c.JSON(http.StatusOK, commonDto.MessageResponse{Message: "File deleted successfully"})
}

// UploadHandler serves /api/upload, which stores files without recording
// them and answers with the {success, data} envelope.
type UploadHandler struct {
	fileService fileService.FileService
}

func NewUploadHandler(fileService fileService.FileService) *UploadHandler {
	return &UploadHandler{fileService: fileService}
}

func uploadFailure(c *gin.Context, err error) {
	code := apperror.MapErrorToStatus(err)
	if code == http.StatusInternalServerError {
		zap.L().Error("upload failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	response.UploadError(c, code, apperror.PublicMessage(err, "File upload failed"))
}

func (h *UploadHandler) UploadSingle(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.UploadError(c, http.StatusBadRequest, "No file uploaded")
		return
	}

	stored, err := h.fileService.Store(c.Request.Context(), "file", []*multipart.FileHeader{header})
	if err != nil {
		uploadFailure(c, err)
		return
	}
	response.UploadSuccess(c, http.StatusOK, gin.H{"file": stored[0]})
}

func (h *UploadHandler) UploadMultiple(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		response.UploadError(c, http.StatusBadRequest, "No files uploaded")
		return
	}

	stored, err := h.fileService.Store(c.Request.Context(), "files", form.File["files"])
	if err != nil {
		uploadFailure(c, err)
		return
	}
	response.UploadSuccess(c, http.StatusOK, gin.H{"files": stored})
}
