package http

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/haircarelog/haircarelog-api/internal/adapters/handler/http/middleware"
	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/core/services"
)

const (
	msgNoLogsInWindow   = "No logs found in the last 30 days. Please add a log before generating the report."
	msgReportFailed     = "An unexpected error occurred while generating the report. Please try again later."
	msgReportNotEmailed = "The report could not be emailed. Please try again later."
)

type ReportHandler struct {
	svc *services.ReportService
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

type emailReportRequest struct {
	Email string `json:"email"`
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup, limiters ...gin.HandlerFunc) {
	reports := router.Group("/reports", limiters...)
	{
		reports.GET("/generate", h.Generate)
		reports.POST("/mailreport", h.Email)
	}
}

// Generate godoc
// @Summary  Download the 30-day report
// @Tags     reports
// @Produce  application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Success  200  {file}    file
// @Failure  400  {object}  map[string]string
// @Failure  404  {object}  map[string]string
// @Router   /reports/generate [get]
func (h *ReportHandler) Generate(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No user found in request"})
		return
	}

	rep, err := h.svc.GenerateReportForDownload(c.Request.Context(), userID)
	if err != nil {
		handleReportError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.Filename))
	c.Header("Content-Length", strconv.Itoa(rep.Size))
	c.Data(http.StatusOK, rep.ContentType, rep.Content)
}

// Email godoc
// @Summary  Email the 30-day report as an attachment
// @Tags     reports
// @Accept   json
// @Produce  json
// @Param    body  body      emailReportRequest  true  "recipient"
// @Success  200   {object}  map[string]interface{}
// @Failure  400   {object}  map[string]string
// @Failure  502   {object}  map[string]string
// @Router   /reports/mailreport [post]
func (h *ReportHandler) Email(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No user found in request"})
		return
	}

	var req emailReportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email is required to send report"})
		return
	}

	if _, err := h.svc.EmailReportToRecipient(c.Request.Context(), userID, req.Email); err != nil {
		handleReportError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Report emailed successfully."})
}

// handleReportError keeps the client message generic; the full error is
// attached to the context for the request logger.
func handleReportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNoLogsInWindow):
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoLogsInWindow})
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	case errors.Is(err, domain.ErrInvalidEmail):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email format"})
	case errors.Is(err, domain.ErrReportDelivery):
		_ = c.Error(err)
		c.JSON(http.StatusBadGateway, gin.H{"error": msgReportNotEmailed})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgReportFailed})
	}
}
