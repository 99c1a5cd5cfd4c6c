package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DB         DBConfig
	Server     ServerConfig
	Redis      RedisConfig
	Logger     LoggerConfig
	LLM        LLMConfig
	Embedding  EmbeddingConfig
	Generation GenerationConfig
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type LoggerConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// LLMConfig groups every completion backend plus retry and cache tuning.
type LLMConfig struct {
	Remote RemoteLLMConfig
	Local  LocalLLMConfig
	Retry  RetryConfig
	Cache  CompletionCacheConfig
}

// RemoteLLMConfig describes the hosted chat model. Provider is one of
// "openai" (any OpenAI-compatible API, DeepSeek by default), "gemini" or
// "langchain".
type RemoteLLMConfig struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

// LocalLLMConfig points at an Ollama server hosting the local models.
// An empty model name leaves that backend unregistered.
type LocalLLMConfig struct {
	ServerURL       string
	QAModel         string
	DistractorModel string
	SummaryModel    string
	Timeout         time.Duration
}

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

type CompletionCacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type EmbeddingConfig struct {
	Source string // "ollama", "openai" or "" to disable
	Ollama OllamaEmbeddingConfig
	OpenAI OpenAIEmbeddingConfig
}

type OllamaEmbeddingConfig struct {
	ServerURL string
	Model     string
}

type OpenAIEmbeddingConfig struct {
	APIKey string
	Model  string
}

type GenerationConfig struct {
	DefaultCount     int
	MaxQuestions     int
	WordsPerQuestion int
	DedupThreshold   float64
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", 120)
	v.SetDefault("server.write_timeout", 120)

	v.SetDefault("db.port", 5432)
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")

	v.SetDefault("llm.remote.provider", "openai")
	v.SetDefault("llm.remote.base_url", "https://api.deepseek.com/v1")
	v.SetDefault("llm.remote.model", "deepseek-chat")
	v.SetDefault("llm.remote.timeout", 60)

	v.SetDefault("llm.local.server_url", "http://localhost:11434")
	v.SetDefault("llm.local.timeout", 60)

	v.SetDefault("llm.retry.max_attempts", 3)
	v.SetDefault("llm.retry.initial_delay", 1)

	v.SetDefault("llm.cache.enabled", false)
	v.SetDefault("llm.cache.ttl", 3600)

	v.SetDefault("embedding.ollama.server_url", "http://localhost:11434")
	v.SetDefault("embedding.openai.model", "text-embedding-3-small")

	v.SetDefault("generation.default_count", 5)
	v.SetDefault("generation.max_questions", 10)
	v.SetDefault("generation.words_per_question", 100)
	v.SetDefault("generation.dedup_threshold", 0.92)
}

// LoadConfig reads config.yaml when present, then environment variables.
// Durations in the file are given in seconds.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		v.AddConfigPath("../../config")
		v.AddConfigPath("../../")
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if configFile := v.ConfigFileUsed(); configFile != "" {
		absPath, _ := filepath.Abs(configFile)
		fmt.Printf("Using config file: %s\n", absPath)
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	config := &Config{
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			DBName:   v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  seconds(v, "server.read_timeout"),
			WriteTimeout: seconds(v, "server.write_timeout"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		LLM: LLMConfig{
			Remote: RemoteLLMConfig{
				Provider: v.GetString("llm.remote.provider"),
				BaseURL:  v.GetString("llm.remote.base_url"),
				APIKey:   v.GetString("llm.remote.api_key"),
				Model:    v.GetString("llm.remote.model"),
				Timeout:  seconds(v, "llm.remote.timeout"),
			},
			Local: LocalLLMConfig{
				ServerURL:       v.GetString("llm.local.server_url"),
				QAModel:         v.GetString("llm.local.qa_model"),
				DistractorModel: v.GetString("llm.local.distractor_model"),
				SummaryModel:    v.GetString("llm.local.summary_model"),
				Timeout:         seconds(v, "llm.local.timeout"),
			},
			Retry: RetryConfig{
				MaxAttempts:  v.GetInt("llm.retry.max_attempts"),
				InitialDelay: seconds(v, "llm.retry.initial_delay"),
			},
			Cache: CompletionCacheConfig{
				Enabled: v.GetBool("llm.cache.enabled"),
				TTL:     seconds(v, "llm.cache.ttl"),
			},
		},
		Embedding: EmbeddingConfig{
			Source: v.GetString("embedding.source"),
			Ollama: OllamaEmbeddingConfig{
				ServerURL: v.GetString("embedding.ollama.server_url"),
				Model:     v.GetString("embedding.ollama.model"),
			},
			OpenAI: OpenAIEmbeddingConfig{
				APIKey: v.GetString("embedding.openai.api_key"),
				Model:  v.GetString("embedding.openai.model"),
			},
		},
		Generation: GenerationConfig{
			DefaultCount:     v.GetInt("generation.default_count"),
			MaxQuestions:     v.GetInt("generation.max_questions"),
			WordsPerQuestion: v.GetInt("generation.words_per_question"),
			DedupThreshold:   v.GetFloat64("generation.dedup_threshold"),
		},
	}

	// Provider-specific variables win over the generic ones
	if key := os.Getenv("DEEPSEEK_API_KEY"); key != "" && config.LLM.Remote.APIKey == "" {
		config.LLM.Remote.APIKey = key
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" && config.Embedding.OpenAI.APIKey == "" {
		config.Embedding.OpenAI.APIKey = key
	}
	if host := os.Getenv("DB_HOST"); host != "" {
		config.DB.Host = host
	}
	if user := os.Getenv("DB_USER"); user != "" {
		config.DB.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		config.DB.Password = password
	}
	if dbname := os.Getenv("DB_NAME"); dbname != "" {
		config.DB.DBName = dbname
	}
	if redisAddress := os.Getenv("REDIS_ADDRESS"); redisAddress != "" {
		config.Redis.Address = redisAddress
	}

	return config
}

// seconds reads an integer key as a number of seconds. Values already
// written as durations ("30s") are accepted too.
func seconds(v *viper.Viper, key string) time.Duration {
	if d := v.GetDuration(key); d >= time.Millisecond {
		return d
	}
	return time.Duration(v.GetInt(key)) * time.Second
}

// GetDSN returns the Postgres connection string used by sqlx.
func (c *Config) GetDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User,
		c.DB.Password,
		c.DB.Host,
		c.DB.Port,
		c.DB.DBName,
		c.DB.SSLMode,
	)
}

// GetMigrateURL returns the DSN with the scheme golang-migrate's pgx v5
// driver registers.
func (c *Config) GetMigrateURL() string {
	return strings.Replace(c.GetDSN(), "postgres://", "pgx5://", 1)
}

// DatabaseEnabled reports whether enough settings exist to open a connection.
func (c *Config) DatabaseEnabled() bool {
	return c.DB.Host != "" && c.DB.DBName != ""
}
