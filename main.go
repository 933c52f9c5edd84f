package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "SELP-backend/docs"
	"SELP-backend/internal/lending/contributors"
	"SELP-backend/internal/lending/equipment"
	"SELP-backend/internal/lending/requests"
	"SELP-backend/internal/platform/auth"
	"SELP-backend/internal/platform/db"
	"SELP-backend/internal/platform/mail"
	"SELP-backend/internal/platform/metrics"
	"SELP-backend/internal/platform/session"
)

// @title School Equipment Lending Portal API
// @version 1.0
// @description 機材の閲覧・借用申請・承認/返却を行うバックエンドAPI
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// .env → 設定読み込み（秘密情報は環境変数優先）
	_ = godotenv.Load()
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)
	if mode != "dev" && mode != "release" {
		fmt.Println("config.mode must be dev or release")
		return
	}

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()
	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	// Redis: ログアウト失効リスト & last_seen スロットリング
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: 0})
	{
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatalf("redis: %v", err)
		}
	}
	defer rdb.Close()
	sessions := session.NewStore(rdb)

	if cfg.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := db.Seed(ctx, conn); err != nil {
			log.Fatalf("seed: %v", err)
		}
		cancel()
	}

	metrics.Register()

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス & メトリクス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secret := []byte(cfg.JWT.Secret)
	ttl := time.Duration(cfg.JWT.TTLHours) * time.Hour

	authSvc := auth.NewService(conn, secret, ttl, sessions, mail.LogMailer{})
	authed := auth.Chain(
		auth.RequireAuth(secret, sessions),
		auth.TouchLastSeen(sessions, auth.NewStore(conn), 5*time.Minute),
	)

	// /api
	api := r.Group("/api")
	auth.RegisterRoutes(api.Group("/auth"), authSvc, authed)
	equipment.RegisterRoutes(api, equipment.NewService(conn), authed)
	requests.RegisterRoutes(api, requests.NewService(conn, cfg.Policy.MaxBorrowDays), authed)
	contributors.RegisterRoutes(api, contributors.NewService(conn), authed)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	go func() {
		var err error
		if cfg.Certificate.Cert != "" && cfg.Certificate.Key != "" {
			certFile := fmt.Sprintf("config/tls/%s/%s", mode, cfg.Certificate.Cert)
			keyFile := fmt.Sprintf("config/tls/%s/%s", mode, cfg.Certificate.Key)
			log.Printf("[INFO] listening on https://0.0.0.0%s", cfg.Addr)
			err = srv.ListenAndServeTLS(certFile, keyFile)
		} else {
			log.Printf("[INFO] listening on http://0.0.0.0%s", cfg.Addr)
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
