package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"coursebot/config"
	"coursebot/database"
	"coursebot/service"
	"coursebot/types"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "coursebot",
	Short: "Course material assistant backend",
	Long: `coursebot indexes course PDFs and user-uploaded documents into a
dual vector index and answers questions strictly from the indexed
material. Run "coursebot start" to serve the HTTP API, or use the
index/upload subcommands for offline administration.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/config.yaml", "config file")
}

// initConfig reads in ENV variables if set.
func initConfig() {
	viper.AutomaticEnv() // read in environment variables that match
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load config:", err)
		os.Exit(1)
	}
	return cfg
}

// buildVectorStores opens the base and user collections for the configured
// backend. The local backend keeps each collection in its own directory so
// the base collection can be invalidated by removing its directory alone.
func buildVectorStores(cfg *config.Config) (database.VectorStore, database.VectorStore, error) {
	switch cfg.VectorStore.Backend {
	case "weaviate":
		client, err := database.NewWeaviateClient(cfg.VectorStore.Weaviate)
		if err != nil {
			return nil, nil, err
		}
		base, err := database.NewWeaviateStore(client, cfg.VectorStore.Weaviate.BaseClass)
		if err != nil {
			return nil, nil, err
		}
		user, err := database.NewWeaviateStore(client, cfg.VectorStore.Weaviate.UserClass)
		if err != nil {
			return nil, nil, err
		}
		return base, user, nil
	case "local":
		base, err := database.NewLocalStore(filepath.Join(cfg.VectorStore.RootDir, "base"))
		if err != nil {
			return nil, nil, err
		}
		user, err := database.NewLocalStore(filepath.Join(cfg.VectorStore.RootDir, "user"))
		if err != nil {
			return nil, nil, err
		}
		return base, user, nil
	default:
		return nil, nil, fmt.Errorf("unknown vector store backend %q", cfg.VectorStore.Backend)
	}
}

func buildAIService(cfg *config.Config) (service.AIService, error) {
	switch cfg.AI.Provider {
	case "gemini":
		return service.NewGeminiService(cfg.Gemini.APIKeys, cfg.Gemini.Model)
	case "openai":
		return service.NewOpenAIService(cfg.AI.Endpoint, cfg.AI.OpenAIAPIKey, cfg.AI.Model), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
}

func buildRAGService(cfg *config.Config) (*service.RAGService, error) {
	base, user, err := buildVectorStores(cfg)
	if err != nil {
		return nil, err
	}
	ai, err := buildAIService(cfg)
	if err != nil {
		return nil, err
	}
	embedder := service.NewOpenAIEmbedder(cfg.AI.Endpoint, cfg.AI.OpenAIAPIKey, cfg.AI.EmbeddingModel)
	pdfService := service.NewPDFService(types.DocumentServiceConfig{
		ChunkSize:    cfg.Chunking.ChunkSize,
		ChunkOverlap: cfg.Chunking.ChunkOverlap,
	})
	return service.NewRAGService(base, user, embedder, pdfService, cfg.BaseDocsDir, ai), nil
}
