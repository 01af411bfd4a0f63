package types

import "time"

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	// BaseURL is the OpenAI-compatible API base (default "https://api.openai.com/v1").
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the embedding model identifier (default "text-embedding-3-small").
	Model string `json:"model" yaml:"model"`

	// APIKey authenticates against the provider. Usually loaded from
	// .secrets/openai-api-key rather than the config file.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Dimension is the vector dimensionality (default 1536).
	Dimension int `json:"dimension" yaml:"dimension"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// IndexConfig holds settings for the vector index backend.
type IndexConfig struct {
	// URL is the Qdrant base URL (e.g. "http://localhost:6333").
	URL string `json:"url" yaml:"url"`

	// APIKey is an optional Qdrant API key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Collection is the collection name (default "vehicle-knowledge").
	Collection string `json:"collection" yaml:"collection"`

	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// RetrieverConfig holds settings for the semantic retriever and its caches.
type RetrieverConfig struct {
	// TopK is the default number of results per retrieval (default 5).
	TopK int `json:"top_k" yaml:"top_k"`

	// MinScore drops candidates scoring below it (default 0.3).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// Rerank enables blended re-scoring of the candidate pool.
	Rerank bool `json:"rerank" yaml:"rerank"`

	// EmbeddingTTL is how long cached query embeddings stay valid
	// (default 60m; text-to-vector mappings are stable).
	EmbeddingTTL time.Duration `json:"embedding_ttl" yaml:"embedding_ttl"`

	// ResultTTL is how long cached result sets stay valid (default 15m;
	// the underlying knowledge may be re-seeded).
	ResultTTL time.Duration `json:"result_ttl" yaml:"result_ttl"`
}

// CatalogConfig holds settings for the component/taxonomy catalog.
type CatalogConfig struct {
	// DBPath is the SQLite database path. ":memory:" keeps the catalog
	// in-process, which is the default since it is rebuilt from the seed
	// at every start.
	DBPath string `json:"db_path" yaml:"db_path"`

	// SeedPath overrides the embedded components seed file.
	SeedPath string `json:"seed_path,omitempty" yaml:"seed_path,omitempty"`
}

// SeedConfig holds settings for knowledge-base seeding.
type SeedConfig struct {
	// DocsDir is the directory of YAML knowledge documents.
	DocsDir string `json:"docs_dir" yaml:"docs_dir"`
}

// EngineConfig groups all stage configurations for the diagnostic engine.
type EngineConfig struct {
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Retriever RetrieverConfig `json:"retriever" yaml:"retriever"`
	Catalog   CatalogConfig   `json:"catalog" yaml:"catalog"`
	Seed      SeedConfig      `json:"seed" yaml:"seed"`
}

// WithDefaults fills zero-valued fields with the documented defaults.
func (c EngineConfig) WithDefaults() EngineConfig {
	if c.Embedding.BaseURL == "" {
		c.Embedding.BaseURL = "https://api.openai.com/v1"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Embedding.Dimension <= 0 {
		c.Embedding.Dimension = 1536
	}
	if c.Embedding.Timeout <= 0 {
		c.Embedding.Timeout = 30 * time.Second
	}
	if c.Index.Collection == "" {
		c.Index.Collection = "vehicle-knowledge"
	}
	if c.Index.Timeout <= 0 {
		c.Index.Timeout = 15 * time.Second
	}
	if c.Retriever.TopK <= 0 {
		c.Retriever.TopK = 5
	}
	if c.Retriever.MinScore <= 0 {
		c.Retriever.MinScore = 0.3
	}
	if c.Retriever.EmbeddingTTL <= 0 {
		c.Retriever.EmbeddingTTL = 60 * time.Minute
	}
	if c.Retriever.ResultTTL <= 0 {
		c.Retriever.ResultTTL = 15 * time.Minute
	}
	if c.Catalog.DBPath == "" {
		c.Catalog.DBPath = ":memory:"
	}
	if c.Seed.DocsDir == "" {
		c.Seed.DocsDir = "data/knowledge"
	}
	return c
}
