package routes

import (
	"net/http"

	"github.com/templui/drive/internal/app"
	"github.com/templui/drive/internal/handler"
	"github.com/templui/drive/internal/middleware"
	"github.com/templui/drive/internal/service"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	health := handler.NewHealthHandler(app.DB)
	auth := handler.NewAuthHandler(app.AuthService)
	folder := handler.NewFolderHandler(app.HierarchyService)
	file := handler.NewFileHandler(app.FileService, app.HierarchyService, app.Cfg.UploadMaxBytes)
	share := handler.NewShareHandler(app.ShareService, app.LinkService)
	listing := handler.NewListingHandler(app.ListingService, app.StarService)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /health", health.Health)

	// Auth (rate limited)
	rateLimitAuth := middleware.RateLimitAuth()
	mux.HandleFunc("POST /api/auth/register", rateLimitAuth(auth.Register))
	mux.HandleFunc("POST /api/auth/login", rateLimitAuth(auth.Login))

	// Link shares (unauthenticated, rate limited)
	rateLimitPublic := middleware.RateLimitPublic(app.Cfg.RateLimitPublic, app.Cfg.RateLimitWindow)
	mux.HandleFunc("GET /api/public-share/{token}", rateLimitPublic(share.ResolveLink))

	// ============================================================================
	// PROTECTED ROUTES (/api/*)
	// ============================================================================

	mux.HandleFunc("GET /api/auth/me", middleware.RequireAuth(auth.Me))

	// Folders
	mux.HandleFunc("POST /api/folders", middleware.RequireAuth(folder.Create))
	mux.HandleFunc("GET /api/folders", middleware.RequireAuth(folder.List))
	mux.HandleFunc("GET /api/folders/{id}", middleware.RequireAuth(folder.Show))
	mux.HandleFunc("PATCH /api/folders/{id}", middleware.RequireAuth(folder.Update))
	mux.HandleFunc("DELETE /api/folders/{id}", middleware.RequireAuth(folder.Delete))

	// Files
	mux.HandleFunc("POST /api/files/init", middleware.RequireAuth(file.InitUpload))
	mux.HandleFunc("POST /api/files/upload", middleware.RequireAuth(file.Upload))
	mux.HandleFunc("POST /api/files/complete", middleware.RequireAuth(file.CompleteUpload))
	mux.HandleFunc("GET /api/files/{id}", middleware.RequireAuth(file.Show))
	mux.HandleFunc("PATCH /api/files/{id}", middleware.RequireAuth(file.Update))
	mux.HandleFunc("DELETE /api/files/{id}", middleware.RequireAuth(file.Delete))

	// Listings and stars
	mux.HandleFunc("GET /api/recent", middleware.RequireAuth(listing.Recent))
	mux.HandleFunc("GET /api/trash", middleware.RequireAuth(listing.Trash))
	mux.HandleFunc("GET /api/search", middleware.RequireAuth(listing.Search))
	mux.HandleFunc("GET /api/starred", middleware.RequireAuth(listing.Starred))
	mux.HandleFunc("POST /api/stars", middleware.RequireAuth(listing.ToggleStar))

	// Shares
	mux.HandleFunc("POST /api/shares", middleware.RequireAuth(share.Create))
	mux.HandleFunc("GET /api/shares/{type}/{id}", middleware.RequireAuth(share.List))
	mux.HandleFunc("DELETE /api/shares/{id}", middleware.RequireAuth(share.Delete))
	mux.HandleFunc("GET /api/shared", middleware.RequireAuth(share.SharedWithMe))
	mux.HandleFunc("POST /api/link-shares", middleware.RequireAuth(share.CreateLink))
	mux.HandleFunc("DELETE /api/link-shares/{id}", middleware.RequireAuth(share.DeleteLink))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		handler.Error(w, r, service.ErrNotFound)
	})

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestLogging,
		middleware.SecurityHeaders,
		middleware.CORS(app.Cfg.CORSOrigins), // Answers preflight before auth
		middleware.AuthMiddleware(app.AuthService),
	)
}
