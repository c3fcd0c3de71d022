package config

import (
	_ "embed"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed models.yaml
var modelsYAML []byte

type Config struct {
	Clip     ClipConfig
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
	Database DatabaseConfig
	Search   SearchConfig
	Web      WebConfig
	Models   ModelsConfig
}

// ClipConfig points at the multimodal embedding sidecar. Images and
// text embedded by the same model land in one shared vector space.
type ClipConfig struct {
	URL string // defaults to http://localhost:8000
	Dim int    // defaults to 1024
}

type OpenAIConfig struct {
	Token   string
	BaseURL string // optional, for OpenAI-compatible endpoints
	TextDim int    // text embedding dimension (default 1536)
}

type GeminiConfig struct {
	APIKey string
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type SearchConfig struct {
	Limit         int     // max results per vector space (default 16)
	MinSimilarity float64 // cosine similarity floor, 0 disables filtering
}

type WebConfig struct {
	ListenAddr string // defaults to :8080
}

// ModelsConfig names the models used per provider. Defaults come from
// the embedded models.yaml and can be overridden by environment.
type ModelsConfig struct {
	OpenAI struct {
		Embedding string `yaml:"embedding"`
		Chat      string `yaml:"chat"`
	} `yaml:"openai"`
	Gemini struct {
		OCR   string `yaml:"ocr"`
		Blend string `yaml:"blend"`
	} `yaml:"gemini"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a float in [0, 1].
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 && f <= 1 {
		return f
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var models ModelsConfig
	if err := yaml.Unmarshal(modelsYAML, &models); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded models.yaml: " + err.Error())
	}

	models.OpenAI.Embedding = envString("OPENAI_EMBEDDING_MODEL", models.OpenAI.Embedding)
	models.OpenAI.Chat = envString("OPENAI_CHAT_MODEL", models.OpenAI.Chat)
	models.Gemini.OCR = envString("GEMINI_OCR_MODEL", models.Gemini.OCR)
	models.Gemini.Blend = envString("GEMINI_BLEND_MODEL", models.Gemini.Blend)

	return &Config{
		Clip: ClipConfig{
			URL: envString("CLIP_URL", "http://localhost:8000"),
			Dim: envInt("CLIP_DIM", 1024),
		},
		OpenAI: OpenAIConfig{
			Token:   os.Getenv("OPENAI_TOKEN"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			TextDim: envInt("OPENAI_TEXT_DIM", 1536),
		},
		Gemini: GeminiConfig{
			APIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Search: SearchConfig{
			Limit:         envInt("SEARCH_LIMIT", 16),
			MinSimilarity: envFloat("SEARCH_MIN_SIMILARITY", 0),
		},
		Web: WebConfig{
			ListenAddr: envString("LISTEN_ADDR", ":8080"),
		},
		Models: models,
	}
}
