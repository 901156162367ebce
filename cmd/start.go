package cmd

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"coursebot/handler"
	"coursebot/service"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the course assistant server",
	Long:  `Starts the HTTP server: question answering, document upload and management.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		ragService, err := buildRAGService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize RAG service: %v", err)
		}

		ctx := context.Background()
		pages, err := ragService.InitializeBase(ctx)
		if err != nil {
			log.Fatalf("Failed to initialize base collection: %v", err)
		}
		log.Printf("Base collection ready (%d pages)", pages)
		if err := ragService.InitializeUser(ctx); err != nil {
			log.Fatalf("Failed to initialize user collection: %v", err)
		}

		documentService, err := service.NewDocumentService(cfg.UploadDir, cfg.MaxUploadSizeMB)
		if err != nil {
			log.Fatalf("Failed to initialize document store: %v", err)
		}
		batchService := service.NewBatchService(documentService, ragService)
		websocketService := service.NewWebSocketService(ragService)

		// Initialize handlers
		corsHandler := handler.NewCorsHandler()
		askHandler := handler.NewAskHandler(ragService)
		uploadHandler := handler.NewUploadHandler(batchService)
		documentHandler := handler.NewDocumentHandler(documentService, ragService)
		statusHandler := handler.NewStatusHandler(documentService, ragService)

		// Setup Gin router
		router := gin.Default()
		router.Use(corsHandler.CorsMiddleware)

		apiV1 := router.Group("/api/v1")
		{
			apiV1.POST("/ask", askHandler.HandleAsk)
			apiV1.GET("/status", statusHandler.HandleStatus)

			apiV1.POST("/documents/upload", uploadHandler.HandleUpload)
			apiV1.POST("/documents/upload/retry", uploadHandler.HandleRetry)
			apiV1.GET("/documents/upload/state", uploadHandler.HandleBatchState)

			apiV1.GET("/documents", documentHandler.HandleList)
			apiV1.DELETE("/documents/:file_id", documentHandler.HandleDelete)
			apiV1.GET("/documents/:file_id/download", documentHandler.HandleDownload)
		}
		router.GET("/ws/ask", gin.WrapF(websocketService.HandleAsk))

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := router.Run(":" + cfg.Port); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(startCmd)
}
