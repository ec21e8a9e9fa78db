package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"marketplace-client/clients"
	"marketplace-client/config"
	"marketplace-client/controllers"
	"marketplace-client/logger"
	"marketplace-client/routes"
)

func main() {
	cfg := config.Load()

	logger.Initialize(cfg.Env)
	defer logger.Sync()

	backend := clients.NewBackendClient(cfg.BackendURL, cfg.RequestTimeout)

	redisClient, err := clients.NewRedisClient(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("failed to connect to Redis", zap.Error(err))
	}
	feed := clients.NewRealtimeFeed(redisClient, logger.Log)

	cartCtrl := controllers.NewCartController(backend, cfg.ShippingCostCents, logger.Log)
	notifCtrl := controllers.NewNotificationController(backend, feed, logger.Log)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.RequestLogger())

	routes.RegisterRoutes(router, cfg.JWTSecret, cartCtrl, notifCtrl)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: router,
	}

	go func() {
		logger.Log.Info("marketplace client core running", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Log.Info("shutting down gracefully")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("shutdown error", zap.Error(err))
	}
	_ = redisClient.Close()
	logger.Log.Info("server shutdown complete")
}
