package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"coursebot/database"
)

// indexBaseCmd represents the index-base command
var indexBaseCmd = &cobra.Command{
	Use:   "index-base",
	Short: "Build the base collection from the course material directory",
	Long: `Indexes every PDF under the configured base docs directory into the
base collection. An existing persisted collection is reused as-is;
pass --rebuild to discard it and index from scratch.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		rebuild, _ := cmd.Flags().GetBool("rebuild")

		if rebuild {
			switch cfg.VectorStore.Backend {
			case "local":
				dir := filepath.Join(cfg.VectorStore.RootDir, "base")
				if err := os.RemoveAll(dir); err != nil {
					log.Fatalf("Failed to remove persisted base collection: %v", err)
				}
			case "weaviate":
				client, err := database.NewWeaviateClient(cfg.VectorStore.Weaviate)
				if err != nil {
					log.Fatalf("Failed to connect to Weaviate: %v", err)
				}
				base, err := database.NewWeaviateStore(client, cfg.VectorStore.Weaviate.BaseClass)
				if err != nil {
					log.Fatalf("Failed to open base class: %v", err)
				}
				if err := base.Drop(context.Background()); err != nil {
					log.Fatalf("Failed to drop base class: %v", err)
				}
			}
		}

		ragService, err := buildRAGService(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize RAG service: %v", err)
		}
		pages, err := ragService.InitializeBase(context.Background())
		if err != nil {
			log.Fatalf("Failed to build base collection: %v", err)
		}
		fmt.Printf("Base collection ready: %d pages indexed\n", pages)
	},
}

func init() {
	rootCmd.AddCommand(indexBaseCmd)
	indexBaseCmd.Flags().BoolP("rebuild", "r", false, "Discard the persisted base collection and index from scratch")
}
