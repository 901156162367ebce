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
	"coursebot/utils"
)

// batchUploadCmd represents the batch-upload command
var batchUploadCmd = &cobra.Command{
	Use:   "batch-upload",
	Short: "Upload every PDF under a directory into the user collection",
	Long: `Walks a directory for PDFs and runs them through the batch upload
coordinator. Per-file failures are reported at the end; one bad file
does not abort the rest.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		directory, _ := cmd.Flags().GetString("directory")
		if directory == "" {
			log.Fatal("--directory is required")
		}

		paths, err := utils.ListPDFFiles(directory)
		if err != nil {
			log.Fatalf("Failed to scan %s: %v", directory, err)
		}
		if len(paths) == 0 {
			log.Fatalf("No PDF files found under %s", directory)
		}

		files := make([]service.BatchFile, 0, len(paths))
		for _, path := range paths {
			content, err := os.ReadFile(path)
			if err != nil {
				log.Fatalf("Failed to read %s: %v", path, err)
			}
			files = append(files, service.BatchFile{
				Name:         filepath.Base(path),
				DeclaredType: "application/pdf",
				Content:      content,
			})
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

		batchService.SetFiles(files)
		state, err := batchService.Process(context.Background())
		if err != nil {
			log.Fatalf("Batch upload failed: %v", err)
		}

		for _, fs := range state.Files {
			switch fs.Status {
			case types.BatchFileSuccess:
				fmt.Printf("ok     %s (%d chunks)\n", fs.Name, fs.Chunks)
			case types.BatchFileFailed:
				fmt.Printf("failed %s: %s\n", fs.Name, fs.Error)
			}
		}
		fmt.Printf("Batch %s: %d succeeded, %d failed\n", state.BatchID, state.SuccessCount, state.FailedCount)
		if state.FailedCount > 0 {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(batchUploadCmd)
	batchUploadCmd.Flags().StringP("directory", "d", "", "Directory to scan for PDF files")
}
