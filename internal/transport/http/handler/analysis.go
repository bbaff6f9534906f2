package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"assignment-helper/internal/app"
	"assignment-helper/internal/transport/http/middleware"
	"assignment-helper/internal/transport/http/response"
)

type AnalysisHandler struct {
	analysisService *app.AnalysisService
}

func NewAnalysisHandler(analysisService *app.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		middleware.Unauthorized(c, "could not validate credentials")
		return
	}
	analysisID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.analysisService.GetAnalysis(c.Request.Context(), studentID, analysisID)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	response.OK(c, result)
}

func (h *AnalysisHandler) ListAssignments(c *gin.Context) {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		middleware.Unauthorized(c, "could not validate credentials")
		return
	}

	list, err := h.analysisService.ListAssignments(c.Request.Context(), studentID)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	response.OK(c, gin.H{"assignments": list})
}

func (h *AnalysisHandler) LatestForAssignment(c *gin.Context) {
	studentID, ok := middleware.StudentID(c)
	if !ok {
		middleware.Unauthorized(c, "could not validate credentials")
		return
	}
	assignmentID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.analysisService.LatestForAssignment(c.Request.Context(), studentID, assignmentID)
	if err != nil {
		writeAnalysisError(c, err)
		return
	}
	response.OK(c, result)
}

func writeAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, app.ErrAnalysisNotFound):
		response.Error(c, http.StatusNotFound, response.CodeAnalysisNotFound, "Analysis not found")
	case errors.Is(err, app.ErrAssignmentNotFound):
		response.Error(c, http.StatusNotFound, response.CodeAssignmentNotFound, "Assignment not found")
	case errors.Is(err, app.ErrAccessDenied):
		response.Error(c, http.StatusForbidden, response.CodeAccessDenied, "Access denied")
	case errors.Is(err, app.ErrUnauthorized):
		middleware.Unauthorized(c, "could not validate credentials")
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "internal server error")
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
