package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"assignment-helper/internal/app"
	"assignment-helper/internal/transport/http/response"
)

const maxCallbackBody = 4 << 20

// InternalHandler serves the unauthenticated callbacks used by the analysis
// workflow. Errors here carry their cause in "detail".
type InternalHandler struct {
	ingestionService *app.IngestionService
	contentAnalyzer  *app.ContentAnalyzer
}

type StoreAnalysisResponse struct {
	Status     string `json:"status"`
	AnalysisID uint   `json:"analysis_id"`
}

type AnalyzeContentRequest struct {
	Text string `json:"text" binding:"required"`
	TopK int    `json:"top_k"`
}

func NewInternalHandler(ingestionService *app.IngestionService, contentAnalyzer *app.ContentAnalyzer) *InternalHandler {
	return &InternalHandler{
		ingestionService: ingestionService,
		contentAnalyzer:  contentAnalyzer,
	}
}

func (h *InternalHandler) StoreAnalysis(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxCallbackBody))
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadRequest, "read request body failed", err.Error())
		return
	}

	payload, err := app.DecodeAnalysisPayload(body)
	if err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadRequest, "invalid analysis payload", err.Error())
		return
	}

	result, err := h.ingestionService.Store(c.Request.Context(), "http", payload)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadRequest, "invalid analysis payload", err.Error())
		case errors.Is(err, app.ErrAssignmentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeAssignmentNotFound, "Assignment not found")
		default:
			_ = c.Error(err)
			response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to store analysis", err.Error())
		}
		return
	}

	response.OK(c, StoreAnalysisResponse{Status: "success", AnalysisID: result.ID})
}

func (h *InternalHandler) AnalyzeContent(c *gin.Context) {
	var req AnalyzeContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithDetail(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload", err.Error())
		return
	}

	report, err := h.contentAnalyzer.AnalyzeContent(c.Request.Context(), req.Text, req.TopK)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "text is required")
			return
		}
		_ = c.Error(err)
		response.ErrorWithDetail(c, http.StatusInternalServerError, response.CodeInternalServer, "content analysis failed", err.Error())
		return
	}
	response.OK(c, report)
}
