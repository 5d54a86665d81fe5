package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // 数据库配置
	Steam    SteamConfig    `mapstructure:"steam"`    // Steam API配置
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置（DSN为postgres://时走PostgreSQL，否则按sqlite文件处理）
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
}

// SteamConfig Steam API配置
type SteamConfig struct {
	APIBaseURL   string `mapstructure:"api_base_url"`      // Web API地址（GetOwnedGames等）
	StoreBaseURL string `mapstructure:"store_base_url"`    // 商店地址（appdetails/appreviews）
	APIKey       string `mapstructure:"api_key"`           // Web API密钥（GetOwnedGames必需）
	Timeout      int    `mapstructure:"timeout"`           // 请求超时（秒）
	CacheTTL     int    `mapstructure:"cache_ttl_seconds"` // 响应缓存TTL（秒）
	Proxy        string `mapstructure:"proxy"`             // 代理地址
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	viper.SetTypeByDefaultValue(true)
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)

	// 4. 缺省兜底
	if cfg.Steam.APIBaseURL == "" {
		cfg.Steam.APIBaseURL = "https://api.steampowered.com"
	}
	if cfg.Steam.StoreBaseURL == "" {
		cfg.Steam.StoreBaseURL = "https://store.steampowered.com"
	}
	if cfg.Steam.Timeout <= 0 {
		cfg.Steam.Timeout = 6
	}
	if cfg.Steam.CacheTTL <= 0 {
		cfg.Steam.CacheTTL = 3600
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "./data.db"
	}
	return &cfg, nil
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("STEAM_API_KEY"); v != "" {
		cfg.Steam.APIKey = v
	}
	if v := os.Getenv("STEAM_PROXY"); v != "" {
		cfg.Steam.Proxy = v
	}
	if v := os.Getenv("STEAM_CACHE_TTL_SECONDS"); v != "" {
		if ttl, err := strconv.Atoi(v); err == nil && ttl > 0 {
			cfg.Steam.CacheTTL = ttl
		}
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}
