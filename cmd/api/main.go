package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rollbook/internal/auth"
	"rollbook/internal/catalog"
	"rollbook/internal/config"
	"rollbook/internal/httpmiddleware"
	"rollbook/internal/queue"
	"rollbook/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	var gateway store.Gateway
	if cfg.PersistBackend == "postgres" {
		pg, err := store.NewPostgresGateway(ctx, cfg.DatabaseURL, cfg.StoreKey)
		if err != nil {
			return err
		}
		defer pg.Close()
		gateway = pg
	} else {
		gateway = store.NewFileGateway(cfg.DataFile)
	}

	st, err := gateway.Load(ctx)
	if err != nil {
		if errors.Is(err, store.ErrCorrupt) {
			// start empty, leave the bad blob in place
			log.Printf("warning: saved store ignored: %v", err)
		} else {
			return err
		}
	}

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(redisClient.Client, "")
	} else {
		q = queue.NewInMemory(64)
	}

	srv := newServer(cfg, st, gateway, catalog.Default(), q)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewSimpleTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		status := http.StatusOK
		redisHealthy := true
		if cfg.QueueBackend == "redis" {
			redisHealthy = redisClient.Healthy(c.Request.Context())
			if !redisHealthy {
				status = http.StatusServiceUnavailable
			}
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy})
	})

	r.POST("/v1/login", srv.handleLogin)
	r.GET("/v1/today", srv.handleToday)

	authed := r.Group("/v1", auth.RequireAuth(cfg.JWTSigningKey, cfg.JWTIssuer))
	authed.GET("/notifications", srv.handleListNotifications)
	authed.POST("/notifications/read", srv.handleMarkAllRead)
	authed.POST("/attendance", srv.handleRecordAttendance)
	authed.POST("/attendance/self", srv.handleRecordOwnAttendance)
	authed.GET("/attendance", srv.handleQueryAttendance)
	authed.GET("/reports/summary", srv.handleSubjectSummary)

	admin := authed.Group("", auth.RequireRole(auth.RoleAdmin))
	admin.GET("/students", srv.handleListStudents)
	admin.POST("/students", srv.handleAddStudent)
	admin.DELETE("/students/:regNo", srv.handleDeleteStudent)
	admin.GET("/holidays", srv.handleListHolidays)
	admin.POST("/holidays", srv.handleAddHoliday)
	admin.DELETE("/holidays/:date", srv.handleRemoveHoliday)
	admin.GET("/medicals", srv.handleListMedicals)
	admin.POST("/medicals", srv.handleSubmitMedical)
	admin.DELETE("/medicals", srv.handleDeleteMedical)
	admin.GET("/reports/students", srv.handleFullReport)
	admin.POST("/save", srv.handleSave)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv.saveOnShutdown(shutdownCtx)

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
