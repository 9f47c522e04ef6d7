package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config 应用配置
type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Auth     AuthConfig     `json:"auth"`
	Jaeger   JaegerConfig   `json:"jaeger"`
	Cron     CronConfig     `json:"cron"`
	Log      LogConfig      `json:"log"`
}

// ServerConfig 服务配置
type ServerConfig struct {
	Name     string `json:"name"`      // 服务名称
	Host     string `json:"host"`      // 监听地址
	HTTPPort int    `json:"http_port"` // HTTP端口
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver   string `json:"driver"`   // 数据库驱动
	Host     string `json:"host"`     // 数据库地址
	Port     int    `json:"port"`     // 数据库端口
	User     string `json:"user"`     // 用户名
	Password string `json:"password"` // 密码（可被 DB_PASSWORD 环境变量覆盖）
	Database string `json:"database"` // 数据库名
	MaxIdle  int    `json:"max_idle"` // 最大空闲连接
	MaxOpen  int    `json:"max_open"` // 最大打开连接
}

// AuthConfig 认证配置
type AuthConfig struct {
	Enabled      bool   `json:"enabled"`        // 是否开启鉴权
	JWTSecret    string `json:"jwt_secret"`     // HS256 密钥（可被 JWT_SECRET 覆盖）
	Issuer       string `json:"issuer"`         // 签发方
	Audience     string `json:"audience"`       // 受众
	TokenTTLHour int    `json:"token_ttl_hour"` // token 有效期（小时）
}

// JaegerConfig Jaeger配置
type JaegerConfig struct {
	Endpoint string  `json:"endpoint"`
	Sampler  float64 `json:"sampler"` // 采样率 0.0-1.0
}

// CronConfig 定时任务配置（标准 5 段 cron 表达式，服务器本地时区）
type CronConfig struct {
	OverdueSpec        string `json:"overdue_spec"`         // 逾期未还扫描
	PickupDueSpec      string `json:"pickup_due_spec"`      // 当日取车提醒
	MaintenanceDueSpec string `json:"maintenance_due_spec"` // 保养到期扫描
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stdout, file
	Path   string `json:"path"`   // 日志文件路径
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// LoadConfig 加载配置：.env -> JSON 配置文件 -> 环境变量覆盖敏感项。
// 配置文件不存在时回退到默认配置（开发环境）。
func LoadConfig(configPath string) (*Config, error) {
	var err error
	configOnce.Do(func() {
		// .env 不存在是正常情况
		_ = godotenv.Load()

		globalConfig = &Config{}
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			logrus.Warnf("Config file not found: %s, using default config", configPath)
			globalConfig = defaultConfig()
			applyEnvOverrides(globalConfig)
			return
		}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file: %w", readErr)
			return
		}

		if unmarshalErr := json.Unmarshal(data, globalConfig); unmarshalErr != nil {
			err = fmt.Errorf("failed to parse config file: %w", unmarshalErr)
			return
		}
		applyEnvOverrides(globalConfig)
	})

	if err != nil {
		return nil, err
	}

	return globalConfig, nil
}

// GetConfig 获取全局配置
func GetConfig() *Config {
	if globalConfig == nil {
		return defaultConfig()
	}
	return globalConfig
}

// applyEnvOverrides 环境变量覆盖敏感配置项。
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}

// defaultConfig 默认配置（开发环境）
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Name:     "rental-server",
			Host:     "0.0.0.0",
			HTTPPort: 8080,
		},
		Database: DatabaseConfig{
			Driver:   "mysql",
			Host:     "127.0.0.1",
			Port:     3306,
			User:     "root",
			Password: "root",
			Database: "rentaldesk",
			MaxIdle:  10,
			MaxOpen:  100,
		},
		Auth: AuthConfig{
			Enabled:      true,
			JWTSecret:    "dev-secret-change-me",
			Issuer:       "rentaldesk",
			Audience:     "rentaldesk",
			TokenTTLHour: 24,
		},
		Jaeger: JaegerConfig{
			Endpoint: "127.0.0.1:6831",
			Sampler:  1.0,
		},
		Cron: CronConfig{
			OverdueSpec:        "0 * * * *", // 每小时整点
			PickupDueSpec:      "0 8 * * *", // 每天 08:00
			MaintenanceDueSpec: "0 9 * * *", // 每天 09:00
		},
		Log: LogConfig{
			Level:  "debug",
			Format: "text",
			Output: "stdout",
			Path:   "logs/rental-server.log",
		},
	}
}
