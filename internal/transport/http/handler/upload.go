package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"assignment-helper/internal/app"
	"assignment-helper/internal/transport/http/middleware"
	"assignment-helper/internal/transport/http/response"
)

// multipartOverhead covers boundaries and headers around the file part.
const multipartOverhead = 1 << 20

type UploadHandler struct {
	uploadService *app.UploadService
	maxFileSize   int64
}

type UploadResponse struct {
	Message       string `json:"message"`
	AssignmentID  uint   `json:"assignment_id"`
	AnalysisJobID uint   `json:"analysis_job_id"`
}

func NewUploadHandler(uploadService *app.UploadService, maxFileSize int64) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, maxFileSize: maxFileSize}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		middleware.Unauthorized(c, "could not validate credentials")
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize+multipartOverhead)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, "File too large")
			return
		}
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "read uploaded file failed")
		return
	}
	defer file.Close()

	assignment, err := h.uploadService.Upload(c.Request.Context(), app.UploadInput{
		StudentID:        studentID,
		OriginalFilename: fileHeader.Filename,
		Size:             fileHeader.Size,
		Content:          file,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrFileTypeNotAllowed):
			response.Error(c, http.StatusBadRequest, response.CodeFileTypeNotAllowed, "File type not allowed")
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, "File too large")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid file name")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed")
		}
		return
	}

	response.OK(c, UploadResponse{
		Message:       "File uploaded successfully",
		AssignmentID:  assignment.ID,
		AnalysisJobID: assignment.ID,
	})
}
