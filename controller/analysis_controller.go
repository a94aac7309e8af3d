package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/itish2003/searchdoc/formatting"
	"github.com/itish2003/searchdoc/models"
	"github.com/itish2003/searchdoc/services"
)

// AnalysisController handles POST /analyze. It depends on the
// AnalysisService for the pipeline and only maps its errors to HTTP.
type AnalysisController struct {
	analysis services.AnalysisService
	log      *zap.Logger
}

// NewAnalysisController creates a new AnalysisController.
// It is called from the router to inject the analysis service.
func NewAnalysisController(analysis services.AnalysisService, log *zap.Logger) *AnalysisController {
	return &AnalysisController{analysis: analysis, log: log}
}

// Analyze accepts JSON or a url-encoded form.
func (ac *AnalysisController) Analyze(c *gin.Context) {
	var req models.AnalyzeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "Search query is required"})
		return
	}

	resp, err := ac.analysis.Analyze(c.Request.Context(), req)
	if err != nil {
		status, body := analysisError(err)
		if status >= http.StatusInternalServerError {
			ac.log.Error("analysis failed",
				zap.String("request_id", c.GetString(requestIDKey)),
				zap.String("query", req.Query),
				zap.Error(err))
		}
		_ = c.Error(err)
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func analysisError(err error) (int, models.ErrorResponse) {
	switch {
	case errors.Is(err, services.ErrEmptyQuery):
		return http.StatusBadRequest, models.ErrorResponse{Error: "Search query is required"}
	case errors.Is(err, formatting.ErrEmptyResults):
		return http.StatusNotFound, models.ErrorResponse{Error: "No search results found"}
	default:
		return http.StatusInternalServerError, models.ErrorResponse{Error: "An error occurred during analysis: " + err.Error()}
	}
}
