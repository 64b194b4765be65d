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
	Server  ServerConfig
	Logger  LoggerConfig
	LLM     LLMConfig
	Quiz    QuizConfig
	Session SessionConfig
	Redis   RedisConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// APIBaseURL is where cmd/quizcli sends its requests.
	APIBaseURL string
}

type LoggerConfig struct {
	Env   string
	Level string
}

// LLMConfig selects and configures the hosted model.
type LLMConfig struct {
	Provider    string // gemini, openai, ollama or anthropic
	Model       string
	APIKey      string
	ServerURL   string // ollama only
	Temperature float64
	MaxTokens   int
	// StructuredOutput asks providers that support it for a JSON reply
	// constrained by the quiz schema.
	StructuredOutput bool
}

type QuizConfig struct {
	Language     string
	MaxQuestions int
	// SingleTopicPool is how many questions are requested from the model
	// when a topic-only quiz asks for a single question.
	SingleTopicPool int
	StrictSchema    bool
}

type SessionConfig struct {
	Expiration time.Duration
	CookieName string
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// providerKeyEnv maps a provider to the environment variable holding its key.
var providerKeyEnv = map[string]string{
	"gemini":    "GEMINI_API_KEY",
	"openai":    "OPENAI_API_KEY",
	"anthropic": "ANTHROPIC_API_KEY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8090)
	v.SetDefault("server.read_timeout", "20s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.api_base_url", "http://localhost:8090")

	v.SetDefault("logger.env", "development")
	v.SetDefault("logger.level", "info")

	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.server_url", "http://localhost:11434")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 4096)
	v.SetDefault("llm.structured_output", false)

	v.SetDefault("quiz.language", "Korean")
	v.SetDefault("quiz.max_questions", 10)
	v.SetDefault("quiz.single_topic_pool", 3)
	v.SetDefault("quiz.strict_schema", false)

	v.SetDefault("session.expiration", "30m")
	v.SetDefault("session.cookie_name", "study_session")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)
}

// LoadConfig reads config.yaml when present and applies environment
// overrides. A missing config file is not an error.
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

	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

	cfg := &Config{
		Server: ServerConfig{
			Port:         v.GetInt("server.port"),
			ReadTimeout:  v.GetDuration("server.read_timeout"),
			WriteTimeout: v.GetDuration("server.write_timeout"),
			APIBaseURL:   v.GetString("server.api_base_url"),
		},
		Logger: LoggerConfig{
			Env:   v.GetString("logger.env"),
			Level: v.GetString("logger.level"),
		},
		LLM: LLMConfig{
			Provider:         strings.ToLower(v.GetString("llm.provider")),
			Model:            v.GetString("llm.model"),
			APIKey:           v.GetString("llm.api_key"),
			ServerURL:        v.GetString("llm.server_url"),
			Temperature:      v.GetFloat64("llm.temperature"),
			MaxTokens:        v.GetInt("llm.max_tokens"),
			StructuredOutput: v.GetBool("llm.structured_output"),
		},
		Quiz: QuizConfig{
			Language:        v.GetString("quiz.language"),
			MaxQuestions:    v.GetInt("quiz.max_questions"),
			SingleTopicPool: v.GetInt("quiz.single_topic_pool"),
			StrictSchema:    v.GetBool("quiz.strict_schema"),
		},
		Session: SessionConfig{
			Expiration: v.GetDuration("session.expiration"),
			CookieName: v.GetString("session.cookie_name"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
	}

	if env := os.Getenv("ENV"); env != "" && os.Getenv("LOGGER_ENV") == "" {
		cfg.Logger.Env = env
	}
	// Provider specific key variables win over an empty llm.api_key.
	if cfg.LLM.APIKey == "" {
		if name, ok := providerKeyEnv[cfg.LLM.Provider]; ok {
			cfg.LLM.APIKey = os.Getenv(name)
		}
	}

	if cfg.Quiz.MaxQuestions < 1 {
		return nil, fmt.Errorf("quiz.max_questions must be positive, got %d", cfg.Quiz.MaxQuestions)
	}
	if cfg.Quiz.SingleTopicPool < 1 {
		return nil, fmt.Errorf("quiz.single_topic_pool must be positive, got %d", cfg.Quiz.SingleTopicPool)
	}

	return cfg, nil
}
