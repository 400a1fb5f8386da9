package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/haircarelog/haircarelog-api/internal/adapters/handler/http/middleware"
	"github.com/haircarelog/haircarelog-api/internal/core/domain"
	"github.com/haircarelog/haircarelog-api/internal/core/services"
)

const (
	maxPhotoBytes  = 10 << 20
	photoFormField = "scalp_photo"
)

type LogHandler struct {
	svc *services.LogService
}

func NewLogHandler(svc *services.LogService) *LogHandler {
	return &LogHandler{svc: svc}
}

type createLogRequest struct {
	Symptoms        domain.Symptoms        `json:"symptoms"`
	SymptomTiming   domain.SymptomTiming   `json:"symptom_timing"`
	ProductsUsed    domain.ProductsUsed    `json:"products_used"`
	HaircareRoutine domain.HaircareRoutine `json:"haircare_routine"`
	StressLevel     int                    `json:"stress_level"`
	DietLifestyle   domain.DietLifestyle   `json:"diet_lifestyle"`
	PersonalNotes   string                 `json:"personal_notes"`
}

func (h *LogHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/logs")
	{
		logs.POST("", h.Create)
		logs.GET("/month-count", h.MonthCount)
		logs.GET("/last", h.Last)
		logs.GET("/trend", h.Trend)
	}
}

// Create godoc
// @Summary  Add a daily scalp log
// @Tags     logs
// @Accept   json,mpfd
// @Produce  json
// @Success  201  {object}  domain.ScalpLog
// @Failure  400  {object}  map[string]string
// @Router   /logs [post]
func (h *LogHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	var (
		req   createLogRequest
		photo *services.PhotoUpload
		err   error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req, photo, err = bindMultipartLog(c)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if photo != nil {
		if closer, ok := photo.Body.(io.Closer); ok {
			defer closer.Close()
		}
	}

	created, err := h.svc.Create(c.Request.Context(), services.CreateLogInput{
		UserID:          userID,
		Symptoms:        req.Symptoms,
		SymptomTiming:   req.SymptomTiming,
		ProductsUsed:    req.ProductsUsed,
		HaircareRoutine: req.HaircareRoutine,
		StressLevel:     req.StressLevel,
		DietLifestyle:   req.DietLifestyle,
		PersonalNotes:   req.PersonalNotes,
		Photo:           photo,
	})
	if err != nil {
		handleLogError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// bindMultipartLog reads a form where nested objects arrive as JSON strings.
// The caller closes the photo body.
func bindMultipartLog(c *gin.Context) (createLogRequest, *services.PhotoUpload, error) {
	var req createLogRequest

	jsonFields := []struct {
		name string
		dst  interface{}
	}{
		{"symptoms", &req.Symptoms},
		{"symptom_timing", &req.SymptomTiming},
		{"products_used", &req.ProductsUsed},
		{"haircare_routine", &req.HaircareRoutine},
		{"diet_lifestyle", &req.DietLifestyle},
	}
	for _, f := range jsonFields {
		raw := strings.TrimSpace(c.PostForm(f.name))
		if raw == "" {
			continue
		}
		if err := json.Unmarshal([]byte(raw), f.dst); err != nil {
			return req, nil, fmt.Errorf("%s: invalid JSON", f.name)
		}
	}

	if raw := strings.TrimSpace(c.PostForm("stress_level")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return req, nil, fmt.Errorf("stress_level: must be an integer")
		}
		req.StressLevel = n
	}
	req.PersonalNotes = c.PostForm("personal_notes")

	fh, err := c.FormFile(photoFormField)
	if errors.Is(err, http.ErrMissingFile) {
		return req, nil, nil
	}
	if err != nil {
		return req, nil, fmt.Errorf("%s: %w", photoFormField, err)
	}
	if fh.Size > maxPhotoBytes {
		return req, nil, fmt.Errorf("%s: file too large", photoFormField)
	}

	f, err := fh.Open()
	if err != nil {
		return req, nil, fmt.Errorf("%s: %w", photoFormField, err)
	}
	return req, &services.PhotoUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Body:        f,
	}, nil
}

func (h *LogHandler) MonthCount(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	count, err := h.svc.MonthCount(c.Request.Context(), userID)
	if err != nil {
		handleLogError(c, err)
		return
	}
	c.JSON(http.StatusOK, count)
}

func (h *LogHandler) Last(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	info, err := h.svc.LastLogInfo(c.Request.Context(), userID)
	if err != nil {
		handleLogError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (h *LogHandler) Trend(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user context missing"})
		return
	}

	points, err := h.svc.SymptomTrend(c.Request.Context(), userID)
	if err != nil {
		handleLogError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func handleLogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidLog):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrUnsupportedPhotoType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported photo type"})
	case errors.Is(err, domain.ErrNoLogs):
		c.JSON(http.StatusNotFound, gin.H{"error": "No logs found"})
	case errors.Is(err, services.ErrPhotoStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo uploads are disabled"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
