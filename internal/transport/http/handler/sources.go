package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"assignment-helper/internal/app"
	"assignment-helper/internal/transport/http/response"
)

type SourceHandler struct {
	retrievalService *app.RetrievalService
}

type SourceSearchResponse struct {
	Query   string            `json:"query"`
	Sources []app.SourceMatch `json:"sources"`
}

func NewSourceHandler(retrievalService *app.RetrievalService) *SourceHandler {
	return &SourceHandler{retrievalService: retrievalService}
}

func (h *SourceHandler) Search(c *gin.Context) {
	// An empty query is valid and simply finds nothing; only a missing one is rejected.
	query, ok := c.GetQuery("query")
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "query is required")
		return
	}

	topK := app.DefaultTopK
	if raw := c.Query("top_k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "top_k must be an integer")
			return
		}
		topK = app.ClampTopK(parsed)
	}

	sources, err := h.retrievalService.Search(c.Request.Context(), query, topK)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "source search failed")
		return
	}
	response.OK(c, SourceSearchResponse{Query: query, Sources: sources})
}
