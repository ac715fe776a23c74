package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"velocars/api/models"
	"velocars/api/store"
	"velocars/api/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StatsSource is the slice of the analytics store the reporting endpoints read.
type StatsSource interface {
	PageViewStats(ctx context.Context, pagePath string, days int) (*models.ViewStats, error)
	CarViewStats(ctx context.Context, carID string, days int) (*models.ViewStats, error)
	TopPages(ctx context.Context, days int, limit uint64) ([]models.TopPage, error)
	TopCars(ctx context.Context, days int, limit uint64) ([]models.TopCar, error)
	DeviceBreakdown(ctx context.Context, days int) ([]models.BucketCount, error)
	LocationBreakdown(ctx context.Context, days int, limit uint64) ([]models.BucketCount, error)
}

// CarCatalog resolves car ids from the event log against the rental catalog.
type CarCatalog interface {
	GetCarByID(ctx context.Context, id string) (*models.Car, error)
	GetCarNames(ctx context.Context, ids []string) (map[string]string, error)
}

// StatsHandlers serves the admin dashboard. Everything here is derived from
// the event log at read time; there are no stored counters to drift.
type StatsHandlers struct {
	Analytics StatsSource
	Cars      CarCatalog
	logger    *zap.Logger
}

func NewStatsHandlers(analytics StatsSource, cars CarCatalog, logger *zap.Logger) *StatsHandlers {
	return &StatsHandlers{Analytics: analytics, Cars: cars, logger: logger}
}

// GetPageStats handles GET /api/stats/pages?days=N&path=/cars.
func (h *StatsHandlers) GetPageStats(c *gin.Context) {
	days := utils.ParseTrailingDays(c.Query("days"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	stats, err := h.Analytics.PageViewStats(ctx, c.Query("path"), days)
	if err != nil {
		h.logger.Error("failed to query page stats", zap.Int("days", days), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve page statistics"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTopPages handles GET /api/stats/pages/top?days=N&limit=K.
func (h *StatsHandlers) GetTopPages(c *gin.Context) {
	days := utils.ParseTrailingDays(c.Query("days"))
	limit := parseLimit(c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Analytics.TopPages(ctx, days, limit)
	if err != nil {
		h.logger.Error("failed to query top pages", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top pages"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetCarStats handles GET /api/stats/cars?carId=...&days=N. When a car id is
// given, the catalog row rides along with the stats; an id unknown to the
// catalog is a 404.
func (h *StatsHandlers) GetCarStats(c *gin.Context) {
	days := utils.ParseTrailingDays(c.Query("days"))
	carID := c.Query("carId")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var car *models.Car
	if carID != "" {
		found, err := h.Cars.GetCarByID(ctx, carID)
		if err != nil {
			if errors.Is(err, store.ErrCarNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Car not found"})
				return
			}
			// Counts are still useful when the catalog is unavailable.
			h.logger.Warn("failed to load car for stats", zap.String("car_id", carID), zap.Error(err))
		}
		car = found
	}

	stats, err := h.Analytics.CarViewStats(ctx, carID, days)
	if err != nil {
		h.logger.Error("failed to query car stats", zap.String("car_id", carID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve car statistics"})
		return
	}

	if carID != "" {
		c.JSON(http.StatusOK, gin.H{"car": car, "stats": stats})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetTopCars handles GET /api/stats/cars/top?days=N&limit=K. Car names come
// from the catalog; ids with no catalog row are returned bare.
func (h *StatsHandlers) GetTopCars(c *gin.Context) {
	days := utils.ParseTrailingDays(c.Query("days"))
	limit := parseLimit(c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Analytics.TopCars(ctx, days, limit)
	if err != nil {
		h.logger.Error("failed to query top cars", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve top cars"})
		return
	}

	ids := make([]string, 0, len(results))
	for _, r := range results {
		ids = append(ids, r.CarID)
	}
	names, err := h.Cars.GetCarNames(ctx, ids)
	if err != nil {
		// The counts are still useful without names.
		h.logger.Warn("failed to resolve car names for top cars", zap.Error(err))
		names = map[string]string{}
	}
	for i := range results {
		results[i].CarName = names[results[i].CarID]
	}

	c.JSON(http.StatusOK, results)
}

// GetDeviceBreakdown handles GET /api/stats/devices?days=N.
func (h *StatsHandlers) GetDeviceBreakdown(c *gin.Context) {
	days := utils.ParseTrailingDays(c.Query("days"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Analytics.DeviceBreakdown(ctx, days)
	if err != nil {
		h.logger.Error("failed to query device breakdown", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve device breakdown"})
		return
	}

	c.JSON(http.StatusOK, results)
}

// GetLocationBreakdown handles GET /api/stats/locations?days=N&limit=K.
func (h *StatsHandlers) GetLocationBreakdown(c *gin.Context) {
	days := utils.ParseTrailingDays(c.Query("days"))
	limit := parseLimit(c.Query("limit"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	results, err := h.Analytics.LocationBreakdown(ctx, days, limit)
	if err != nil {
		h.logger.Error("failed to query location breakdown", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve location breakdown"})
		return
	}

	c.JSON(http.StatusOK, results)
}

func parseLimit(raw string) uint64 {
	if raw == "" {
		return 10
	}
	limit, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || limit == 0 {
		return 10
	}
	return limit
}
