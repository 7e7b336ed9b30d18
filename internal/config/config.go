// Package config 负责加载和管理应用程序的配置。
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// 各 LLM provider 未配置 llm.model 时使用的默认模型。
const (
	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// 全局配置变量，存储从配置文件加载的所有设置。
var Conf Config

// Config 是整个应用程序的配置结构体，与 config.yaml 文件结构对应。
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Log       LogConfig       `mapstructure:"log"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Session   SessionConfig   `mapstructure:"session"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
}

// ServerConfig 存储服务器相关的配置。
type ServerConfig struct {
	Port        string `mapstructure:"port"`
	Mode        string `mapstructure:"mode"`
	Environment string `mapstructure:"environment"` // development | production | test
}

// DatabaseConfig 存储所有数据库连接的配置。
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 存储 MySQL 数据库的配置。DSN 为空时不启用审计落库。
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 存储 Redis 的配置。Addr 为空时限流器退化为放行。
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig 存储日志相关的配置。
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 存储 Kafka 相关的配置。Brokers 为空时审计事件直接写库。
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

// LLMConfig 存储大语言模型相关的配置。
type LLMConfig struct {
	Provider   string              `mapstructure:"provider"` // gemini | openai
	APIKey     string              `mapstructure:"api_key"`
	BaseURL    string              `mapstructure:"base_url"`
	Model      string              `mapstructure:"model"`
	Generation LLMGenerationConfig `mapstructure:"generation"`
}

// LLMGenerationConfig 配置生成相关参数（可选）。
type LLMGenerationConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	TopP        float64 `mapstructure:"top_p"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// DefaultModel 返回当前 provider 的默认模型。
func (c LLMConfig) DefaultModel() string {
	if c.Provider == "openai" {
		return DefaultOpenAIModel
	}
	return DefaultGeminiModel
}

// SessionConfig 存储表单会话令牌的配置。
type SessionConfig struct {
	Secret             string `mapstructure:"secret"`
	TokenExpireMinutes int    `mapstructure:"token_expire_minutes"`
}

// RateLimitConfig 存储症状检查接口的限流配置。
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	Limit         int  `mapstructure:"limit"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

// Init 初始化配置加载，从指定的路径读取 YAML 文件并解析到 Conf 变量中。
func Init(configPath string) {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	Conf = *cfg
}

// Load 读取 .env（若存在）与 YAML 配置，并允许环境变量覆盖，例如 LLM_API_KEY、SERVER_PORT。
func Load(configPath string) (*Config, error) {
	// .env 不存在时忽略
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法将配置解析到结构体中: %w", err)
	}

	// 兼容前端项目约定的 GEMINI_API_KEY
	if cfg.LLM.APIKey == "" && cfg.LLM.Provider == "gemini" {
		cfg.LLM.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = cfg.LLM.DefaultModel()
	}
	return &cfg, nil
}

// setDefaults 同时让 AutomaticEnv 能覆盖 YAML 中未出现的键。
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.environment", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("llm.provider", "gemini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.token_expire_minutes", 30)
	v.SetDefault("database.mysql.dsn", "")
	v.SetDefault("database.redis.addr", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.limit", 10)
	v.SetDefault("ratelimit.window_seconds", 60)
	v.SetDefault("kafka.brokers", "")
	v.SetDefault("kafka.topic", "symptom-check-events")
	v.SetDefault("kafka.group_id", "symptom-checker-go-consumer")
}

// Validate 校验枚举类配置项。API Key 缺失不在此处报错：LLM 客户端会以失败关闭的方式处理。
func (c *Config) Validate() error {
	switch c.Server.Environment {
	case "development", "production", "test":
	default:
		return fmt.Errorf("server.environment 取值无效: %q", c.Server.Environment)
	}
	switch c.LLM.Provider {
	case "gemini", "openai":
	default:
		return fmt.Errorf("llm.provider 取值无效: %q", c.LLM.Provider)
	}
	if c.RateLimit.Enabled && (c.RateLimit.Limit <= 0 || c.RateLimit.WindowSeconds <= 0) {
		return fmt.Errorf("ratelimit.limit 与 ratelimit.window_seconds 必须为正数")
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret 不能为空")
	}
	return nil
}
