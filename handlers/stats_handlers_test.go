package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"velocars/api/models"
	"velocars/api/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type fakeStatsSource struct {
	stats         *models.ViewStats
	topCars       []models.TopCar
	carStatsCalls int
}

func (f *fakeStatsSource) PageViewStats(ctx context.Context, pagePath string, days int) (*models.ViewStats, error) {
	return f.stats, nil
}

func (f *fakeStatsSource) CarViewStats(ctx context.Context, carID string, days int) (*models.ViewStats, error) {
	f.carStatsCalls++
	return f.stats, nil
}

func (f *fakeStatsSource) TopPages(ctx context.Context, days int, limit uint64) ([]models.TopPage, error) {
	return nil, nil
}

func (f *fakeStatsSource) TopCars(ctx context.Context, days int, limit uint64) ([]models.TopCar, error) {
	return f.topCars, nil
}

func (f *fakeStatsSource) DeviceBreakdown(ctx context.Context, days int) ([]models.BucketCount, error) {
	return nil, nil
}

func (f *fakeStatsSource) LocationBreakdown(ctx context.Context, days int, limit uint64) ([]models.BucketCount, error) {
	return nil, nil
}

type fakeCatalog struct {
	cars  map[string]*models.Car
	names map[string]string
}

func (f fakeCatalog) GetCarByID(ctx context.Context, id string) (*models.Car, error) {
	if car, ok := f.cars[id]; ok {
		return car, nil
	}
	return nil, store.ErrCarNotFound
}

func (f fakeCatalog) GetCarNames(ctx context.Context, ids []string) (map[string]string, error) {
	return f.names, nil
}

func newStatsRouter(src StatsSource, catalog CarCatalog) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewStatsHandlers(src, catalog, zap.NewNop())

	r := gin.New()
	r.GET("/api/stats/cars", h.GetCarStats)
	r.GET("/api/stats/cars/top", h.GetTopCars)
	return r
}

func getJSON(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetCarStatsUnknownCarIs404(t *testing.T) {
	src := &fakeStatsSource{stats: &models.ViewStats{}}
	r := newStatsRouter(src, fakeCatalog{})

	w := getJSON(r, "/api/stats/cars?carId=ghost")

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for a car the catalog does not know", w.Code)
	}
	if src.carStatsCalls != 0 {
		t.Errorf("stats query ran %d time(s) for an unknown car", src.carStatsCalls)
	}
}

func TestGetCarStatsIncludesCatalogRow(t *testing.T) {
	src := &fakeStatsSource{stats: &models.ViewStats{TotalViews: 12, UniqueSessions: 5}}
	catalog := fakeCatalog{cars: map[string]*models.Car{
		"car-42": {ID: "car-42", Name: "SUV Roamer", Brand: "Velo"},
	}}
	r := newStatsRouter(src, catalog)

	w := getJSON(r, "/api/stats/cars?carId=car-42&days=7")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Car   models.Car       `json:"car"`
		Stats models.ViewStats `json:"stats"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Car.Name != "SUV Roamer" {
		t.Errorf("car name = %q, want the catalog row attached", resp.Car.Name)
	}
	if resp.Stats.TotalViews != 12 || resp.Stats.UniqueSessions != 5 {
		t.Errorf("stats = %+v, want totals from the event log", resp.Stats)
	}
}

func TestGetCarStatsUnfiltered(t *testing.T) {
	src := &fakeStatsSource{stats: &models.ViewStats{TotalViews: 3}}
	r := newStatsRouter(src, fakeCatalog{})

	w := getJSON(r, "/api/stats/cars")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp models.ViewStats
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.TotalViews != 3 {
		t.Errorf("TotalViews = %d, want bare stats when no carId filter is given", resp.TotalViews)
	}
}

func TestGetTopCarsResolvesNames(t *testing.T) {
	src := &fakeStatsSource{topCars: []models.TopCar{
		{CarID: "car-42", Views: 7},
		{CarID: "car-gone", Views: 2},
	}}
	catalog := fakeCatalog{names: map[string]string{"car-42": "SUV Roamer"}}
	r := newStatsRouter(src, catalog)

	w := getJSON(r, "/api/stats/cars/top?days=30")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp []models.TopCar
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("got %d results, want 2", len(resp))
	}
	if resp[0].CarName != "SUV Roamer" {
		t.Errorf("CarName = %q, want name resolved from the catalog", resp[0].CarName)
	}
	if resp[1].CarName != "" {
		t.Errorf("CarName = %q, want empty for an id missing from the catalog", resp[1].CarName)
	}
}
