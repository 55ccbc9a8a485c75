package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "libris-backend/docs"
	"libris-backend/internal/library/books"
	"libris-backend/internal/library/borrows"
	"libris-backend/internal/library/libraries"
	"libris-backend/internal/library/members"
	"libris-backend/internal/library/seed"
	"libris-backend/internal/platform/auth"
	"libris-backend/internal/platform/config"
	"libris-backend/internal/platform/db"
	"libris-backend/internal/platform/logging"
)

// @title           Libris API
// @version         1.0
// @description     Library management backend: catalog, members, branches and the borrowing ledger.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}

	log, err := logging.New(cfg.LogLevel, cfg.Mode == "release")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	log.Info("starting", zap.String("mode", cfg.Mode))

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer conn.Close()
	log.Info("connected to database", zap.String("db", cfg.DB.DBName))

	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logging.RequestLogger(log), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == "dev" {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Location"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	secret := []byte(cfg.JWTSecret)
	public := r.Group("/api/v1")
	authed := r.Group("/api/v1", auth.RequireAuth(secret))
	staff := r.Group("/api/v1", auth.RequireAuth(secret), auth.RequireRole(auth.StaffRoles()...))
	admin := r.Group("/api/v1", auth.RequireAuth(secret), auth.RequireRole(auth.AdminRoles()...))
	superadmin := r.Group("/api/v1", auth.RequireAuth(secret), auth.RequireRole(auth.RoleSuperAdmin))

	authSvc := auth.NewService(conn, secret)
	bookSvc := books.NewService(conn, log)
	memberSvc := members.NewService(conn, log)
	librarySvc := libraries.NewService(conn, log)
	borrowSvc := borrows.NewService(conn, log)
	seeder := seed.New(conn, log)

	auth.RegisterRoutes(public, admin, superadmin, authSvc)
	books.RegisterRoutes(authed, staff, admin, bookSvc)
	members.RegisterRoutes(authed, staff, admin, memberSvc)
	libraries.RegisterRoutes(authed, staff, admin, librarySvc, bookSvc)
	borrows.RegisterRoutes(authed, staff, borrowSvc)
	seed.RegisterRoutes(admin, seeder)

	if cfg.SeedOnBoot {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := seeder.Run(ctx); err != nil {
			log.Fatal("seeding failed", zap.Error(err))
		}
		cancel()
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		var err error
		if cfg.Server.CertFile != "" && cfg.Server.KeyFile != "" {
			log.Info("listening with TLS", zap.String("addr", srv.Addr))
			err = srv.ListenAndServeTLS(cfg.Server.CertFile, cfg.Server.KeyFile)
		} else {
			log.Info("listening", zap.String("addr", srv.Addr))
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("shutdown failed", zap.Error(err))
	}
}
