package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	version         = "0.1.0"
	defaultPort     = "8080"
	shutdownTimeout = 30 * time.Second
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "lode-api").Logger()

	port := getEnv("PORT", defaultPort)

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(logger)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logger.Info().Str("port", port).Msg("starting lode API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	// In-flight load tests get the shutdown window to finish.
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server exited")
}

func newRouter(logger zerolog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery())

	handler := &APIHandler{logger: logger}
	router.GET("/health", handler.HealthCheck)
	router.POST("/load-test", handler.RunLoadTest)

	return router
}

// requestLogger emits one structured log line per handled request.
func requestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
