// Package controller HTTP surface: router, handlers, middleware, responses
package controller

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"tele-drive/conf"
	"tele-drive/controller/handler"
	"tele-drive/controller/middleware"
	"tele-drive/controller/respond"
	"tele-drive/docs"
	"tele-drive/service/file_service"
	"tele-drive/service/import_service"
	"tele-drive/service/scan_service"
	"tele-drive/service/share_service"
)

// SetupRouter setup the drive HTTP router
func SetupRouter(
	importService *import_service.ImportService,
	scanService *scan_service.ScanService,
	fileService *file_service.FileService,
	shareService *share_service.ShareService,
) *gin.Engine {
	// Set Swagger host from config
	docs.SwaggerInfo.Host = conf.Cfg.SwaggerBaseUrl

	// Create Gin engine
	r := gin.Default()

	// Add CORS middleware
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Allow all origins, can be configured to specific domains
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "X-CSRF-Token", "Authorization", "Accept", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * 3600, // 12 hours
	}))

	// Add timing middleware
	r.Use(respond.TimingMiddleware())

	// Browser sessions live for a day; re-importing refreshes them
	sessions := middleware.NewSessionStore(24 * time.Hour)

	// Create handlers
	sessionHandler := handler.NewSessionHandler(importService, sessions)
	scanHandler := handler.NewScanHandler(scanService)
	fileHandler := handler.NewFileHandler(fileService)
	folderHandler := handler.NewFolderHandler(fileService)
	shareHandler := handler.NewShareHandler(shareService)

	// API route group
	api := r.Group("/api")
	{
		// Session bootstrap (no auth: this is how a session is obtained)
		api.POST("/session/import", sessionHandler.Import)
		api.POST("/session/logout", sessionHandler.Logout)
		api.GET("/csrf-token", sessionHandler.CSRFToken)

		// Authenticated routes; every mutating method under here must carry
		// the session's CSRF token
		auth := api.Group("", middleware.RequireAuth(sessions), middleware.RequireCSRF(sessions))
		{
			// Scan lifecycle
			scan := auth.Group("/scan")
			{
				scan.POST("/start", scanHandler.StartScan)
				scan.GET("/:id", scanHandler.GetScan)
				scan.POST("/:id/cancel", scanHandler.CancelScan)
				scan.GET("/:id/events", scanHandler.StreamEvents)
			}
			auth.GET("/scans", scanHandler.ListScans)

			// File management
			files := auth.Group("/files")
			{
				files.GET("", fileHandler.ListFiles)
				files.POST("/upload", fileHandler.Upload)
				files.GET("/:id", fileHandler.GetFile)
				files.DELETE("/:id", fileHandler.DeleteFile)
				files.PUT("/:id/favorite", fileHandler.SetFavorite)
				files.GET("/:id/download", fileHandler.DownloadFile)
			}

			// Folder management
			folders := auth.Group("/folders")
			{
				folders.POST("", folderHandler.CreateFolder)
				folders.GET("", folderHandler.ListFolders)
				folders.PUT("/:id/move", folderHandler.MoveFolder)
				folders.DELETE("/:id", folderHandler.DeleteFolder)
			}

			// Share link management
			shares := auth.Group("/shares")
			{
				shares.POST("", shareHandler.CreateShare)
				shares.GET("", shareHandler.ListShares)
				shares.DELETE("/:token", shareHandler.RevokeShare)
			}
		}
	}

	// Public share surface (no session required)
	share := r.Group("/share")
	{
		share.GET("/:token", shareHandler.Landing)
		share.POST("/:token/verify", shareHandler.VerifyPassword)
		share.GET("/:token/download", shareHandler.Download)
	}

	// Swagger documentation route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
