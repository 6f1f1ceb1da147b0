package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	AI        AIConfig
	TTS       TTSConfig       `mapstructure:"tts"`
	Workflow  WorkflowConfig  `mapstructure:"workflow"`
	Tracing   TracingConfig   `mapstructure:"tracing"`
	CORS      CORSConfig      `mapstructure:"cors"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// 运行时标志（非配置文件，通过命令行参数设置）
	ForceMigrate bool `mapstructure:"-"` // 强制执行数据库迁移
	MigrateOnly  bool `mapstructure:"-"` // 仅迁移模式（迁移后退出）
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

// StorageConfig 音频对象的内容寻址存储。
// type=pinata 时走远程 pinning API，type=minio 时走自托管 MinIO（对象键为内容哈希）。
type StorageConfig struct {
	Type           string `mapstructure:"type"`
	PinningBaseURL string `mapstructure:"pinning_base_url"`
	PinningToken   string `mapstructure:"pinning_token"`
	Gateway        string `mapstructure:"gateway"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	MinioEndpoint  string `mapstructure:"minio_endpoint"`
	MinioAccessID  string `mapstructure:"minio_access_key"`
	MinioSecret    string `mapstructure:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket"`
}

type AIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type TTSConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Voice   string `mapstructure:"voice"`
}

// WorkflowConfig 发音分析工作流的运行参数。
type WorkflowConfig struct {
	// 停留在 processing 超过该时长的尝试会被后台任务标记为 failed
	ProcessingTTLMinutes int `mapstructure:"processing_ttl_minutes"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("MANDARIN_EDU")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// AI 评分
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.api_key", "AI_API_KEY")
	viper.BindEnv("ai.model", "AI_MODEL")

	// TTS
	viper.BindEnv("tts.base_url", "TTS_BASE_URL")
	viper.BindEnv("tts.api_key", "TTS_API_KEY")
	viper.BindEnv("tts.model", "TTS_MODEL")
	viper.BindEnv("tts.voice", "TTS_VOICE")

	// Storage / Pinning
	viper.BindEnv("storage.type", "STORAGE_TYPE")
	viper.BindEnv("storage.pinning_base_url", "PINNING_BASE_URL")
	viper.BindEnv("storage.pinning_token", "PINNING_TOKEN")
	viper.BindEnv("storage.gateway", "PINNING_GATEWAY")
	viper.BindEnv("storage.minio_endpoint", "MINIO_ENDPOINT")
	viper.BindEnv("storage.minio_access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.minio_secret_key", "MINIO_SECRET_KEY")
	viper.BindEnv("storage.minio_bucket", "MINIO_BUCKET")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Workflow.ProcessingTTLMinutes <= 0 {
		cfg.Workflow.ProcessingTTLMinutes = 30
	}
	if cfg.Storage.TimeoutSeconds <= 0 {
		cfg.Storage.TimeoutSeconds = 30
	}
	if cfg.AI.TimeoutSeconds <= 0 {
		cfg.AI.TimeoutSeconds = 60
	}

	if cfg.Server.Mode == "release" && cfg.Database.Password == "" {
		return nil, fmt.Errorf("database password must be set in release mode")
	}

	return &cfg, nil
}

// ProcessingTTL 以 time.Duration 返回 processing 状态的最大停留时长。
func (c *Config) ProcessingTTL() time.Duration {
	return time.Duration(c.Workflow.ProcessingTTLMinutes) * time.Minute
}
