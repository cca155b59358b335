package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Server         ServerConfig         `mapstructure:"server"`
	LLM            LLMConfig            `mapstructure:"llm"`
	Gemini         GeminiConfig         `mapstructure:"gemini"`
	OpenRouter     OpenRouterConfig     `mapstructure:"openrouter"`
	RecipeProvider RecipeProviderConfig `mapstructure:"recipe_provider"`
	Category       CategoryConfig       `mapstructure:"category"`
	Planner        PlannerConfig        `mapstructure:"planner"`
	Cache          CacheConfig          `mapstructure:"cache"`
	Queue          QueueConfig          `mapstructure:"queue"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Session        SessionConfig        `mapstructure:"session"`
	Storage        StorageConfig        `mapstructure:"storage"`
	DedupWindow    time.Duration        `mapstructure:"dedup_window"`
	LogLevel       string               `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// LLMConfig 語言模型共用設定
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RPS             float64       `mapstructure:"rps"`
	Temperature     float32       `mapstructure:"temperature"`
	TopP            float32       `mapstructure:"top_p"`
	TopK            int32         `mapstructure:"top_k"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
}

// GeminiConfig Gemini 配置
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// OpenRouterConfig OpenRouter 配置
type OpenRouterConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// RecipeProviderConfig 楽天レシピ API 設定
type RecipeProviderConfig struct {
	AppID         string        `mapstructure:"app_id"`
	BaseURL       string        `mapstructure:"base_url"`
	Hits          int           `mapstructure:"hits"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinInterval   time.Duration `mapstructure:"min_interval"`
	MaxCategories int           `mapstructure:"max_categories"`
	Concurrency   int           `mapstructure:"concurrency"`
}

// CategoryConfig 類別表設定
type CategoryConfig struct {
	DataPath string `mapstructure:"data_path"`
}

// PlannerConfig 獻立生成預設值
type PlannerConfig struct {
	MealTypes   []string `mapstructure:"meal_types"`
	RiceRatio   int      `mapstructure:"rice_ratio"`
	BreadRatio  int      `mapstructure:"bread_ratio"`
	NoodleRatio int      `mapstructure:"noodle_ratio"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Backend   string        `mapstructure:"backend"`
	MaxSize   int           `mapstructure:"max_size"`
	TTL       time.Duration `mapstructure:"ttl"`
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
}

// QueueConfig 請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// SessionConfig 會話設定
type SessionConfig struct {
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"`
}

// StorageConfig 存檔設定
type StorageConfig struct {
	SaveDir string `mapstructure:"save_dir"`
}

// LoadConfig 載入設定，.env 不存在時只讀環境變數
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"llm.provider":            "LLM_PROVIDER",
		"gemini.api_key":          "GEMINI_API_KEY",
		"gemini.model":            "GEMINI_MODEL",
		"openrouter.api_key":      "OPENROUTER_API_KEY",
		"openrouter.model":        "OPENROUTER_MODEL",
		"recipe_provider.app_id":  "RAKUTEN_APP_ID",
		"category.data_path":      "CATEGORY_DATA_PATH",
		"cache.backend":           "CACHE_BACKEND",
		"cache.redis_addr":        "REDIS_ADDR",
		"rate_limit.enabled":      "RATE_LIMIT_ENABLED",
		"rate_limit.requests":     "RATE_LIMIT_REQUESTS",
		"rate_limit.window":       "RATE_LIMIT_WINDOW",
		"storage.save_dir":        "SAVE_DIR",
		"dedup_window":            "DEDUP_WINDOW",
		"log_level":               "LOG_LEVEL",
		"server.port":             "PORT",
		"recipe_provider.timeout": "RAKUTEN_TIMEOUT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "kondate-planner")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "170s")
	v.SetDefault("server.max_body_bytes", 2<<20)

	// 語言模型設定
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.timeout", "60s")
	v.SetDefault("llm.rps", 0)
	v.SetDefault("llm.temperature", 0.9)
	v.SetDefault("llm.top_p", 0.95)
	v.SetDefault("llm.top_k", 64)
	v.SetDefault("llm.max_output_tokens", 8192)
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("openrouter.model", "google/gemini-flash-1.5")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")

	// 楽天レシピ API 設定
	v.SetDefault("recipe_provider.base_url", "https://app.rakuten.co.jp")
	v.SetDefault("recipe_provider.hits", 10)
	v.SetDefault("recipe_provider.timeout", "10s")
	v.SetDefault("recipe_provider.min_interval", "1s")
	v.SetDefault("recipe_provider.max_categories", 20)
	v.SetDefault("recipe_provider.concurrency", 4)

	v.SetDefault("category.data_path", "data/category.txt")

	// 獻立預設值
	v.SetDefault("planner.meal_types", []string{"朝食", "昼食", "夕食"})
	v.SetDefault("planner.rice_ratio", 50)
	v.SetDefault("planner.bread_ratio", 25)
	v.SetDefault("planner.noodle_ratio", 25)

	// 快取設定
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.max_size", 256)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 隊列設定
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.max_size", 20)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")

	// 會話設定
	v.SetDefault("session.max_sessions", 1000)
	v.SetDefault("session.ttl", "24h")

	v.SetDefault("storage.save_dir", "saved_plans")

	v.SetDefault("dedup_window", "2s")
	v.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.LLM.Provider {
	case "gemini", "openrouter":
	default:
		return fmt.Errorf("unknown llm provider %q", config.LLM.Provider)
	}
	if config.LLM.Timeout <= 0 {
		return fmt.Errorf("invalid llm timeout")
	}

	if config.RecipeProvider.MinInterval <= 0 {
		return fmt.Errorf("invalid recipe provider min interval")
	}
	if config.RecipeProvider.Timeout <= 0 {
		return fmt.Errorf("invalid recipe provider timeout")
	}
	if config.RecipeProvider.MaxCategories <= 0 {
		return fmt.Errorf("invalid recipe provider max categories")
	}
	if config.RecipeProvider.Concurrency <= 0 {
		return fmt.Errorf("invalid recipe provider concurrency")
	}

	switch config.Cache.Backend {
	case "none":
	case "memory":
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	case "redis":
		if config.Cache.RedisAddr == "" {
			return fmt.Errorf("redis address is required")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	if config.Session.MaxSessions <= 0 {
		return fmt.Errorf("invalid session max sessions")
	}

	return nil
}
