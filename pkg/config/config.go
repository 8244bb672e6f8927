package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Telegram     TelegramConfig     `mapstructure:"telegram"`
	NLU          NLUConfig          `mapstructure:"nlu"`
	OpenAI       OpenAIConfig       `mapstructure:"openai"`
	Classifier   ClassifierConfig   `mapstructure:"classifier"`
	Confirmation ConfirmationConfig `mapstructure:"confirmation"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Store        StoreConfig        `mapstructure:"store"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

// NLUConfig points at the external intent-classification endpoint.
// Backend selects the transport: "http" posts to URL and expects a
// {completion} body, "openai" uses the chat-completions API instead.
type NLUConfig struct {
	Backend string        `mapstructure:"backend"`
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type ClassifierConfig struct {
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold"`
	CategoryThreshold   float64       `mapstructure:"category_threshold"`
	HistoryDepth        int           `mapstructure:"history_depth"`
	HistoryTTL          time.Duration `mapstructure:"history_ttl"`
}

type ConfirmationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type ConversationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// StoreConfig selects where pending actions and conversation state live.
type StoreConfig struct {
	Backend       string        `mapstructure:"backend"` // redis, postgres or memory
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"` // empty disables the /metrics listener
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432
	if u.Port() != "" {
		port, err = strconv.Atoi(u.Port())
		if err != nil {
			return DatabaseConfig{}, fmt.Errorf("invalid port in DATABASE_URL: %v", err)
		}
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  "disable",
	}, nil
}

func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("nlu.backend", "http")
	v.SetDefault("nlu.url", "http://localhost:8087/v1/complete")
	v.SetDefault("nlu.timeout", 10*time.Second)
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 300)
	v.SetDefault("openai.temperature", 0.2)
	v.SetDefault("classifier.confidence_threshold", 0.7)
	v.SetDefault("classifier.category_threshold", 0.7)
	v.SetDefault("classifier.history_depth", 6)
	v.SetDefault("classifier.history_ttl", 30*time.Minute)
	v.SetDefault("confirmation.ttl", 5*time.Minute)
	v.SetDefault("conversation.ttl", 10*time.Minute)
	v.SetDefault("store.backend", "memory")
	v.SetDefault("store.sweep_interval", time.Hour)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("metrics.addr", "")

	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %v", err)
		}
		config.Database = dbConfig
	}

	if redisURL := v.GetString("REDIS_URL"); redisURL != "" {
		u, err := url.Parse(redisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse REDIS_URL: %v", err)
		}
		config.Redis.Address = u.Host
		if pw, ok := u.User.Password(); ok {
			config.Redis.Password = pw
		}
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	if nluURL := v.GetString("NLU_URL"); nluURL != "" {
		config.NLU.URL = nluURL
	}

	return &config, nil
}
