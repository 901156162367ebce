package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"

	"coursebot/database"
)

type Config struct {
	Port            string            `mapstructure:"port"`
	UploadDir       string            `mapstructure:"upload_dir"`
	BaseDocsDir     string            `mapstructure:"base_docs_dir"`
	MaxUploadSizeMB int64             `mapstructure:"max_upload_size_mb"`
	Chunking        ChunkingConfig    `mapstructure:"chunking"`
	VectorStore     VectorStoreConfig `mapstructure:"vector_store"`
	AI              AIConfig          `mapstructure:"ai"`
	Gemini          GeminiConfig      `mapstructure:"gemini"`
}

type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

// VectorStoreConfig selects the collection backend. "local" persists both
// collections under RootDir (base/ and user/ subdirectories); "weaviate"
// uses one class per collection on a remote instance.
type VectorStoreConfig struct {
	Backend  string                  `mapstructure:"backend"`
	RootDir  string                  `mapstructure:"root_dir"`
	Weaviate database.WeaviateConfig `mapstructure:"weaviate"`
}

type AIConfig struct {
	Provider       string `mapstructure:"provider"`
	Endpoint       string `mapstructure:"endpoint"`
	OpenAIAPIKey   string `mapstructure:"OPENAI_API_KEY"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

type GeminiConfig struct {
	APIKeys []string `mapstructure:"GEMINI_API_KEYS"`
	Model   string   `mapstructure:"model"`
}

func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("port", "8080")
	v.SetDefault("upload_dir", "UserUploads")
	v.SetDefault("base_docs_dir", "CourseMaterials")
	v.SetDefault("max_upload_size_mb", 50)
	v.SetDefault("chunking.chunk_size", 1000)
	v.SetDefault("chunking.chunk_overlap", 200)
	v.SetDefault("vector_store.backend", "local")
	v.SetDefault("vector_store.root_dir", "vector_db")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.model", "gpt-3.5-turbo")
	v.SetDefault("ai.embedding_model", "text-embedding-3-small")
	v.SetDefault("gemini.model", "gemini-1.5-flash")

	// A missing config file is fine: every setting has a default and
	// secrets come from the environment.
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	v.BindEnv("ai.OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("vector_store.weaviate.WEAVIATE_APIKEY", "WEAVIATE_APIKEY")
	v.BindEnv("gemini.GEMINI_API_KEYS", "GEMINI_API_KEYS")

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}
