package visitors_querying

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	visitors_core "visitorlogs/internal/features/visitors/core"

	"github.com/gin-gonic/gin"
)

type VisitorsController struct {
	visitorQueryService *VisitorQueryService
	logger              *slog.Logger
}

func (c *VisitorsController) RegisterRoutes(router *gin.RouterGroup) {
	visitorRoutes := router.Group("/visitors")

	visitorRoutes.GET("", c.GetVisitors)
	visitorRoutes.POST("/generate", c.GenerateVisitors)
}

// GetVisitors
// @Summary List visitor logs
// @Description Get the generated visitor logs, optionally filtered by ip and url substrings
// @Tags visitors
// @Produce json
// @Param ip query string false "Substring of the visitor IP"
// @Param url query string false "Substring of the visited URL"
// @Success 200 {array} visitors_core.LogRecord
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /visitors [get]
func (c *VisitorsController) GetVisitors(ctx *gin.Context) {
	var request GetVisitorsRequestDTO
	if err := ctx.ShouldBindQuery(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters"})
		return
	}

	visitors, err := c.visitorQueryService.GetVisitors(&request)
	if err != nil {
		c.logger.Error("Error reading visitor logs", slog.String("error", err.Error()))
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load visitor data"})
		return
	}

	ctx.JSON(http.StatusOK, visitors)
}

// GenerateVisitors
// @Summary Generate visitor logs
// @Description Regenerate the visitor log batch. The body is optional
// @Tags visitors
// @Accept json
// @Produce json
// @Param request body GenerateVisitorsRequestDTO false "Batch generation options"
// @Success 200 {object} GenerateVisitorsResponseDTO
// @Failure 400 {object} map[string]string
// @Failure 429 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Failure 507 {object} map[string]string
// @Router /visitors/generate [post]
func (c *VisitorsController) GenerateVisitors(ctx *gin.Context) {
	var request GenerateVisitorsRequestDTO
	if err := ctx.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	response, err := c.visitorQueryService.GenerateVisitors(ctx.Request.Context(), &request)
	if err != nil {
		c.handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, response)
}

func (c *VisitorsController) handleError(ctx *gin.Context, err error) {
	var validationErr *visitors_core.ValidationError
	if errors.As(err, &validationErr) {
		statusCode := c.getStatusCodeForValidationError(validationErr.Code)
		ctx.JSON(statusCode, gin.H{
			"error": validationErr.Message,
			"code":  validationErr.Code,
		})
		return
	}

	c.logger.Error("Failed to generate visitor logs", slog.String("error", err.Error()))

	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate visitor logs"})
}

func (c *VisitorsController) getStatusCodeForValidationError(errorCode string) int {
	switch errorCode {
	case visitors_core.ErrorInvalidCount:
		return http.StatusBadRequest
	case visitors_core.ErrorInsufficientDiskSpace:
		return http.StatusInsufficientStorage
	case visitors_core.ErrorOutputNotWritable:
		return http.StatusInternalServerError
	case visitors_core.ErrorRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadRequest
	}
}
