package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/templui/drive/internal/config"
	"github.com/templui/drive/internal/db"
	"github.com/templui/drive/internal/repository"
	"github.com/templui/drive/internal/service"
	"github.com/templui/drive/internal/storage"
	"github.com/templui/drive/internal/validation"
)

type App struct {
	Cfg              *config.Config
	DB               *sqlx.DB
	Storage          storage.Storage
	AuthService      *service.AuthService
	EmailService     *service.EmailService
	AccessService    *service.AccessService
	HierarchyService *service.HierarchyService
	FileService      *service.FileService
	ShareService     *service.ShareService
	LinkService      *service.LinkService
	StarService      *service.StarService
	ListingService   *service.ListingService
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(ctx, cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Run database migrations
	err = db.RunMigrations(ctx, database.DB, cfg.DBDriver)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Storage
	fileStorage, err := storage.New(ctx, cfg)
	if err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	return Wire(cfg, database, fileStorage), nil
}

// Wire builds every service on top of an open database and object store
func Wire(cfg *config.Config, database *sqlx.DB, fileStorage storage.Storage) *App {
	// Repositories
	userRepository := repository.NewUserRepository(database)
	folderRepository := repository.NewFolderRepository(database)
	fileRepository := repository.NewFileRepository(database)
	shareRepository := repository.NewShareRepository(database)
	linkShareRepository := repository.NewLinkShareRepository(database)
	starRepository := repository.NewStarRepository(database)

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppURL,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	accessService := service.NewAccessService(folderRepository, fileRepository, shareRepository)
	hierarchyService := service.NewHierarchyService(folderRepository, fileRepository, accessService)
	fileService := service.NewFileService(
		fileRepository,
		hierarchyService,
		accessService,
		fileStorage,
		validation.UploadPolicy{MaxBytes: cfg.UploadMaxBytes, AllowedTypes: cfg.UploadAllowedTypes},
		cfg.S3UploadURLExpiry,
		cfg.S3DownloadURLExpiry,
	)
	shareService := service.NewShareService(
		shareRepository,
		linkShareRepository,
		userRepository,
		accessService,
		emailService,
		cfg.AppURL,
	)
	linkService := service.NewLinkService(
		linkShareRepository,
		accessService,
		fileStorage,
		cfg.PublicLinkURL,
		cfg.LinkPasswordCost,
		cfg.S3DownloadURLExpiry,
	)
	authService := service.NewAuthService(userRepository, emailService, cfg.JWTSecret, cfg.JWTExpiry)

	return &App{
		Cfg:              cfg,
		DB:               database,
		Storage:          fileStorage,
		AuthService:      authService,
		EmailService:     emailService,
		AccessService:    accessService,
		HierarchyService: hierarchyService,
		FileService:      fileService,
		ShareService:     shareService,
		LinkService:      linkService,
		StarService:      service.NewStarService(starRepository, accessService),
		ListingService:   service.NewListingService(folderRepository, fileRepository),
	}
}

func (a *App) Close() error {
	return db.Close(a.DB)
}
