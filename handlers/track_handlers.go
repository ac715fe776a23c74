package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"velocars/api/enrich"
	"velocars/api/models"
	"velocars/api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ViewStore is the slice of the analytics store the tracking endpoints use.
type ViewStore interface {
	InsertPageView(ctx context.Context, view *models.PageView) (string, error)
	InsertCarView(ctx context.Context, view *models.CarView) error
	BackfillDuration(ctx context.Context, req *models.PageDurationRequest) error
}

// LocationResolver maps a caller IP to coarse geography.
type LocationResolver interface {
	Resolve(ctx context.Context, ip string) enrich.Location
}

type TrackHandlers struct {
	Store  ViewStore
	Geo    LocationResolver
	logger *zap.Logger
}

func NewTrackHandlers(store ViewStore, geo LocationResolver, logger *zap.Logger) *TrackHandlers {
	return &TrackHandlers{Store: store, Geo: geo, logger: logger}
}

// RecordPageView handles POST /api/track/page-view. Returns the new row id so
// the client can attach a duration when the visitor leaves.
func (h *TrackHandlers) RecordPageView(c *gin.Context) {
	var req models.PageViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.PagePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pagePath is required"})
		return
	}

	ip := utils.ClientIP(c.Request)
	device := enrich.DetectDevice(c.Request.UserAgent())

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	location := h.Geo.Resolve(ctx, ip)

	timestamp := time.Now().UTC()
	if req.StartTime != "" {
		if parsed, err := time.Parse(time.RFC3339, req.StartTime); err == nil {
			timestamp = parsed.UTC()
		}
	}

	view := &models.PageView{
		PagePath:   req.PagePath,
		PageTitle:  req.PageTitle,
		SessionID:  req.SessionID,
		UserID:     callerID(c),
		Referrer:   c.Request.Referer(),
		IPAddress:  ip,
		UserAgent:  c.Request.UserAgent(),
		DeviceType: device.Type,
		Browser:    device.Browser,
		OS:         device.OS,
		Country:    location.Country,
		City:       location.City,
		Region:     location.Region,
		Timestamp:  timestamp,
	}

	id, err := h.Store.InsertPageView(ctx, view)
	if err != nil {
		h.logger.Error("failed to record page view", zap.String("page_path", req.PagePath), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record page view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "pageViewId": id})
}

// RecordPageDuration handles POST /api/track/page-duration. The browser fires
// this on unload and never reads the response, so persistence errors are
// logged rather than surfaced.
func (h *TrackHandlers) RecordPageDuration(c *gin.Context) {
	var req models.PageDurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.Duration == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "duration is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	if err := h.Store.BackfillDuration(ctx, &req); err != nil {
		h.logger.Error("failed to back-fill page duration",
			zap.String("page_view_id", req.PageViewID),
			zap.String("session_id", req.SessionID),
			zap.String("page_path", req.PagePath),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RecordCarView handles POST /api/track/car-view.
func (h *TrackHandlers) RecordCarView(c *gin.Context) {
	var req models.CarViewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.CarID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "carId is required"})
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = utils.FallbackSessionID()
	}

	ip := utils.ClientIP(c.Request)
	device := enrich.DetectDevice(c.Request.UserAgent())

	ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
	defer cancel()

	location := h.Geo.Resolve(ctx, ip)

	view := &models.CarView{
		CarID:      req.CarID,
		SessionID:  sessionID,
		UserID:     callerID(c),
		IPAddress:  ip,
		UserAgent:  c.Request.UserAgent(),
		DeviceType: device.Type,
		Browser:    device.Browser,
		OS:         device.OS,
		Country:    location.Country,
		City:       location.City,
		Region:     location.Region,
		Timestamp:  time.Now().UTC(),
	}

	if err := h.Store.InsertCarView(ctx, view); err != nil {
		h.logger.Error("failed to record car view", zap.String("car_id", req.CarID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record car view"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// callerID returns the authenticated user id when the optional identity
// middleware resolved one, else "".
func callerID(c *gin.Context) string {
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(int); ok {
			return strconv.Itoa(id)
		}
	}
	return ""
}
