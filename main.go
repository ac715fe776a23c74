package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"velocars/api/database"
	"velocars/api/enrich"
	"velocars/api/handlers"
	"velocars/api/logger"
	"velocars/api/middleware"
	"velocars/api/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	zapLogger, err := logger.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	dbClient, err := database.NewPostgresDB(zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize PostgreSQL", zap.Error(err))
	}
	defer dbClient.Close()

	chClient, err := database.NewClickHouseDB(zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize ClickHouse", zap.Error(err))
	}
	defer chClient.Close()

	redisClient, err := database.NewRedisDB(zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	userStore := store.NewUserStore(dbClient.DB, zapLogger)
	carStore := store.NewCarStore(dbClient.DB, zapLogger)
	analyticsStore := store.NewAnalyticsStore(chClient, zapLogger)

	geoResolver := enrich.NewGeoResolver(zapLogger)

	authHandlers := handlers.NewAuthHandlers(userStore, zapLogger)
	trackHandlers := handlers.NewTrackHandlers(analyticsStore, geoResolver, zapLogger)
	statsHandlers := handlers.NewStatsHandlers(analyticsStore, carStore, zapLogger)

	r := gin.Default()
	r.Use(middleware.CORSMiddleware())

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		// Public tracking surface: anonymous visitors allowed, identity
		// attached when a token is present.
		track := api.Group("/track")
		track.Use(
			middleware.RateLimit(redisClient, zapLogger, 120, time.Minute),
			middleware.IdentifyUser(),
		)
		{
			track.POST("/page-view", trackHandlers.RecordPageView)
			track.POST("/page-duration", trackHandlers.RecordPageDuration)
			track.POST("/car-view", trackHandlers.RecordCarView)
		}

		stats := api.Group("/stats")
		stats.Use(middleware.AuthRequired(zapLogger))
		{
			stats.GET("/pages", statsHandlers.GetPageStats)
			stats.GET("/pages/top", statsHandlers.GetTopPages)
			stats.GET("/cars", statsHandlers.GetCarStats)
			stats.GET("/cars/top", statsHandlers.GetTopCars)
			stats.GET("/devices", statsHandlers.GetDeviceBreakdown)
			stats.GET("/locations", statsHandlers.GetLocationBreakdown)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		zapLogger.Info("analytics API listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server exiting")
}
