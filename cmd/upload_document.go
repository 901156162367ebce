package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"coursebot/service"
	"coursebot/types"
)

// uploadDocumentCmd represents the upload-document command
var uploadDocumentCmd = &cobra.Command{
	Use:   "upload-document",
	Short: "Upload a single PDF into the user collection",
	Long: `Runs one PDF through the full upload pipeline: validation,
deduplication, storage and indexing into the user collection.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		filePath, _ := cmd.Flags().GetString("file")
		if filePath == "" {
			log.Fatal("--file is required")
		}

		content, err := os.ReadFile(filePath)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", filePath, err)
		}

		ragService, err := buildRAGService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize RAG service: %v", err)
		}
		if err := ragService.InitializeUser(context.Background()); err != nil {
			log.Fatalf("Failed to initialize user collection: %v", err)
		}
		documentService, err := service.NewDocumentService(cfg.UploadDir, cfg.MaxUploadSizeMB)
		if err != nil {
			log.Fatalf("Failed to initialize document store: %v", err)
		}
		batchService := service.NewBatchService(documentService, ragService)

		batchService.SetFiles([]service.BatchFile{
			{
				Name:         filepath.Base(filePath),
				DeclaredType: "application/pdf",
				Content:      content,
			},
		})
		state, err := batchService.Process(context.Background())
		if err != nil {
			log.Fatalf("Upload failed: %v", err)
		}
		for _, fs := range state.Files {
			if fs.Status == types.BatchFileFailed {
				log.Fatalf("Upload failed: %s", fs.Error)
			}
			fmt.Printf("Uploaded %s (%d chunks indexed)\n", fs.Name, fs.Chunks)
		}
	},
}

func init() {
	rootCmd.AddCommand(uploadDocumentCmd)
	uploadDocumentCmd.Flags().StringP("file", "f", "", "Path to the PDF to upload")
}
