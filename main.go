package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/William19D/rv-parks-for-sale-sub001/internal/config"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/database"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/handler"
	applog "github.com/William19D/rv-parks-for-sale-sub001/internal/log"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/middleware"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/mongo"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/repository"
	"github.com/William19D/rv-parks-for-sale-sub001/internal/service"
)

func main() {
	// missing .env is fine, the platform sets the environment in production
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		applog.L().WithError(err).Fatal("configuration error")
	}
	applog.Init(cfg.Environment)
	log := applog.L()

	ctx := context.Background()

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("db connect error")
	}
	if err := database.EnsureSchema(ctx, db); err != nil {
		log.WithError(err).Fatal("schema bootstrap error")
	}

	mongoClient, err := mongo.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("mongo connect error")
	}

	listingRepo := repository.NewListingRepository(db)
	imageRepo := repository.NewImageRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	mediaRepo := repository.NewMediaRepository(mongoClient, cfg.MongoDB)

	svc := service.NewListingService(listingRepo, imageRepo, documentRepo, mediaRepo, log)
	svc.RefreshSnapshot(ctx)

	listingHandler := &handler.ListingHandler{Svc: svc, Log: log}
	mediaHandler := &handler.MediaHandler{Svc: svc}
	adminHandler := &handler.AdminHandler{Svc: svc}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api := r.Group("/api")

	// open routes
	listingHandler.RegisterPublic(api)
	mediaHandler.RegisterPublic(api)

	// JWT required
	protected := api.Group("/")
	protected.Use(middleware.Auth(cfg.JWTSecret))
	{
		listingHandler.RegisterProtected(protected)
		mediaHandler.RegisterProtected(protected)

		admin := protected.Group("/")
		admin.Use(middleware.AdminOnly())
		adminHandler.RegisterRoutes(admin)
	}

	log.Infof("listing service running on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.WithError(err).Fatal("server error")
	}
}
