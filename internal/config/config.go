package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// AppInfo 对应 'app' 部分，包含应用程序的基本信息。
type AppInfo struct {
	Name        string `yaml:"name"`                     // 应用程序名称
	Version     string `yaml:"version"`                  // 应用程序版本
	Environment string `yaml:"environment" env:"APP_ENV"` // 运行环境 (例如: "development", "production")
}

// ServerConfig 定义了 HTTP 服务的监听与传输配置。
type ServerConfig struct {
	Port            int           `yaml:"port" env:"PORT"`                                // 监听端口
	CORSOrigins     []string      `yaml:"corsOrigins" env:"CORS_ORIGIN" envSeparator:","` // 允许的跨域来源
	MaxUploadBytes  int64         `yaml:"maxUploadBytes"`                                 // 上传文件大小上限
	TrustedProxies  []string      `yaml:"trustedProxies" env:"TRUSTED_PROXIES" envSeparator:","`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// UploadOverhead 是 multipart 报文在文件大小之外预留的空间。
const UploadOverhead = 1 << 20

// MaxRequestBytes 是上传请求体的总上限，即文件上限加上 multipart 开销。
func (s ServerConfig) MaxRequestBytes() int64 {
	return s.MaxUploadBytes + UploadOverhead
}

// RetentionConfig 定义了临时文件的保留与销毁策略。
type RetentionConfig struct {
	Hours           int           `yaml:"hours" env:"DATA_RETENTION_HOURS"` // 保留时长（小时）
	SweepInterval   time.Duration `yaml:"sweepInterval"`                    // 定期清理间隔
	OverwritePasses int           `yaml:"overwritePasses"`                  // 删除前随机覆写次数
	Dir             string        `yaml:"dir" env:"SECURE_TEMP_DIR"`        // 临时目录
}

// Window 返回保留时长。
func (r RetentionConfig) Window() time.Duration {
	return time.Duration(r.Hours) * time.Hour
}

// CircuitBreakerConfig 定义了熔断器的配置。
type CircuitBreakerConfig struct {
	Enabled          bool   `yaml:"enabled"`
	FailureThreshold uint32 `yaml:"failureThreshold"`
	SuccessThreshold uint32 `yaml:"successThreshold"`
	Timeout          string `yaml:"timeout"` // 例如: "30s"
}

// ExtractorConfig 定义了画像提取后端的配置。
type ExtractorConfig struct {
	Backend        string               `yaml:"backend" env:"EXTRACTOR_BACKEND"` // "llm" 或 "process"
	Command        string               `yaml:"command" env:"EXTRACTOR_COMMAND"` // process 后端的可执行文件
	Args           []string             `yaml:"args" env:"EXTRACTOR_ARGS" envSeparator:" "`
	Timeout        time.Duration        `yaml:"timeout" env:"EXTRACTOR_TIMEOUT"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuitBreaker"`
}

// OllamaConfig 包含了 Ollama 服务的配置。
type OllamaConfig struct {
	URL   string `yaml:"url" env:"OLLAMA_URL"`
	Model string `yaml:"model" env:"OLLAMA_MODEL"`
}

// OpenAIConfig 包含了 OpenAI 兼容接口的配置。
type OpenAIConfig struct {
	APIKey  string `yaml:"apiKey" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"baseURL" env:"OPENAI_BASE_URL"`
	Model   string `yaml:"model" env:"OPENAI_MODEL"`
}

// GeminiConfig 包含了 Gemini 模型的配置。
type GeminiConfig struct {
	APIKey string `yaml:"apiKey" env:"GEMINI_API_KEY"` // Gemini API 密钥
	Model  string `yaml:"model" env:"GEMINI_MODEL"`    // Gemini 模型名称
}

// LLMConfig 包含了不同LLM提供商的配置。
type LLMConfig struct {
	Provider       string        `yaml:"provider" env:"LLM_PROVIDER"` // LLM提供商 ("ollama", "openai", "gemini")
	Ollama         OllamaConfig  `yaml:"ollama"`
	OpenAI         OpenAIConfig  `yaml:"openai"`
	Gemini         GeminiConfig  `yaml:"gemini"`
	EnhanceTimeout time.Duration `yaml:"enhanceTimeout"` // 提示词增强调用的超时
}

// RedisConfig 定义了 Redis 数据库的连接配置。
type RedisConfig struct {
	Address  string `yaml:"address" env:"REDIS_ADDR"`      // Redis 服务器地址 (例如: "localhost:6379")
	Password string `yaml:"password" env:"REDIS_PASSWORD"` // Redis 密码
	DB       int    `yaml:"db" env:"REDIS_DB"`             // Redis 数据库编号
}

// StoreConfig 定义了画像存储的配置。
type StoreConfig struct {
	Backend  string        `yaml:"backend" env:"STORE_BACKEND"` // "memory" 或 "redis"
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
	Redis    RedisConfig   `yaml:"redis"`
}

// KafkaConfig 定义了 Kafka 消息队列的连接配置。
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS" envSeparator:","` // Kafka Broker 地址列表
	Topic   string   `yaml:"topic" env:"KAFKA_AUDIT_TOPIC"`
}

// AuditConfig 定义了审计事件的投递配置。
type AuditConfig struct {
	Enabled bool        `yaml:"enabled" env:"AUDIT_ENABLED"`
	Kafka   KafkaConfig `yaml:"kafka"`
}

// LoggerConfig 定义了日志记录器的配置。
type LoggerConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"` // 日志级别 (例如: "info", "debug", "warn", "error", "silent")
}

// RouteLimitConfig 定义了单个路由组的限流额度。
type RouteLimitConfig struct {
	Limit  int    `yaml:"limit"`
	Window string `yaml:"window"` // 例如: "1m", "15m"
}

// RateLimiterConfig 定义了限流器的配置。每个客户端 IP 独立计数。
type RateLimiterConfig struct {
	Enabled    bool             `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
	Algorithm  string           `yaml:"algorithm"` // 支持: "fixedWindow", "slidingLog", "slidingCounter", "leakyBucket", "tokenBucket"
	NumBuckets int              `yaml:"numBuckets"`
	General    RouteLimitConfig `yaml:"general"`  // 所有 /api 请求
	Extract    RouteLimitConfig `yaml:"extract"`  // /api/extract-memory
	Generate   RouteLimitConfig `yaml:"generate"` // /api/generate-prompt
}

// MiddlewareConfig 包含所有中间件的配置。
type MiddlewareConfig struct {
	RateLimiter RateLimiterConfig `yaml:"rateLimiter"`
}

// AppConfig 是整个 YAML 文件的根结构，包含了应用程序的所有配置。
type AppConfig struct {
	App        AppInfo          `yaml:"app"`        // 应用程序信息
	Server     ServerConfig     `yaml:"server"`     // HTTP 服务配置
	Retention  RetentionConfig  `yaml:"retention"`  // 临时文件保留配置
	Extractor  ExtractorConfig  `yaml:"extractor"`  // 提取后端配置
	LLM        LLMConfig        `yaml:"llm"`        // LLM 配置部分
	Store      StoreConfig      `yaml:"store"`      // 画像存储配置
	Audit      AuditConfig      `yaml:"audit"`      // 审计配置
	Logger     LoggerConfig     `yaml:"logger"`     // 日志记录器配置
	Middleware MiddlewareConfig `yaml:"middleware"` // 中间件配置
}

// IsDevelopment 判断当前是否为开发环境。
func (c *AppConfig) IsDevelopment() bool {
	return strings.EqualFold(c.App.Environment, "development")
}

// Default 返回带有全部默认值的配置。
func Default() *AppConfig {
	return &AppConfig{
		App: AppInfo{
			Name:        "llmbridge",
			Version:     "1.0.0",
			Environment: "development",
		},
		Server: ServerConfig{
			Port:            3001,
			CORSOrigins:     []string{"http://localhost:5173"},
			MaxUploadBytes:  50 << 20,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    3 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
		},
		Retention: RetentionConfig{
			Hours:           24,
			SweepInterval:   time.Hour,
			OverwritePasses: 3,
			Dir:             "temp_secure",
		},
		Extractor: ExtractorConfig{
			Backend: "llm",
			Command: "python3",
			Args:    []string{"extractor/simple_parser.py"},
			Timeout: 2 * time.Minute,
			CircuitBreaker: CircuitBreakerConfig{
				Enabled:          true,
				FailureThreshold: 5,
				SuccessThreshold: 1,
				Timeout:          "30s",
			},
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Ollama: OllamaConfig{
				URL:   "http://localhost:11434",
				Model: "llama3.2:3b",
			},
			OpenAI: OpenAIConfig{
				Model: "gpt-4o-mini",
			},
			Gemini: GeminiConfig{
				Model: "gemini-1.5-flash",
			},
			EnhanceTimeout: time.Minute,
		},
		Store: StoreConfig{
			Backend:  "memory",
			TTL:      24 * time.Hour,
			Capacity: 1000,
			Redis: RedisConfig{
				Address: "localhost:6379",
			},
		},
		Audit: AuditConfig{
			Kafka: KafkaConfig{
				Brokers: []string{"localhost:9092"},
				Topic:   "llmbridge.audit",
			},
		},
		Logger: LoggerConfig{
			Level: "info",
		},
		Middleware: MiddlewareConfig{
			RateLimiter: RateLimiterConfig{
				Enabled:    true,
				Algorithm:  "fixedWindow",
				NumBuckets: 10,
				General:    RouteLimitConfig{Limit: 100, Window: "15m"},
				Extract:    RouteLimitConfig{Limit: 5, Window: "1m"},
				Generate:   RouteLimitConfig{Limit: 10, Window: "1m"},
			},
		},
	}
}

// LoadConfig 函数从指定路径加载并解析 YAML 配置文件。
// YAML 中未出现的字段保留 Default() 中的默认值。
//
// 参数:
//
//	path: YAML 配置文件的路径。
//
// 返回值:
//
//	*AppConfig: 解析后的应用程序配置结构体。
//	error: 如果文件读取或解析失败，则返回错误。
func LoadConfig(path string) (*AppConfig, error) {
	// 读取 YAML 文件内容。
	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取 YAML 文件 '%s': %w", path, err)
	}
	cfg := Default()
	// 将 YAML 内容解析到 cfg 结构体中。
	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return nil, fmt.Errorf("解析 YAML 文件失败: %w", err)
	}
	return cfg, nil
}

// Load 按以下顺序组装最终配置：
// 默认值 -> CONFIG_PATH 指向的 YAML 文件（可选）-> .env 文件 -> 环境变量。
func Load() (*AppConfig, error) {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("加载 .env 文件失败: %w", err)
	}

	cfg := Default()
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnv 用环境变量覆盖配置。未设置的变量不会改动已有的值。
func ApplyEnv(cfg *AppConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("解析环境变量失败: %w", err)
	}
	// NODE_ENV 作为 APP_ENV 的别名
	if _, ok := os.LookupEnv("APP_ENV"); !ok {
		if v, ok := os.LookupEnv("NODE_ENV"); ok && v != "" {
			cfg.App.Environment = v
		}
	}
	return nil
}

// Validate 检查配置中相互约束的字段。
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Retention.Hours <= 0 {
		return fmt.Errorf("retention hours must be positive, got %d", c.Retention.Hours)
	}
	if c.Retention.OverwritePasses <= 0 {
		return fmt.Errorf("overwrite passes must be positive, got %d", c.Retention.OverwritePasses)
	}
	switch c.Extractor.Backend {
	case "llm":
	case "process":
		if c.Extractor.Command == "" {
			return errors.New("extractor backend 'process' requires a command")
		}
	default:
		return fmt.Errorf("unknown extractor backend: %s", c.Extractor.Backend)
	}
	switch c.Store.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown store backend: %s", c.Store.Backend)
	}
	if c.Server.WriteTimeout > 0 && c.Server.WriteTimeout <= c.Extractor.Timeout {
		return fmt.Errorf("server write timeout %s must exceed extractor timeout %s",
			c.Server.WriteTimeout, c.Extractor.Timeout)
	}
	return nil
}
