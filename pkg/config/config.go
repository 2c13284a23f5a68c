// Package config 服务配置：YAML文件 + IDGEN_前缀环境变量 + 命令行flag
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"katydid-common-idgen/pkg/logger"
)

// EnvPrefix 环境变量前缀，例如 IDGEN_SERVER_ADDR
const EnvPrefix = "IDGEN"

// Config 服务配置
type Config struct {
	Server     ServerConfig      `mapstructure:"server"`
	Auth       AuthConfig        `mapstructure:"auth"`
	Clock      ClockConfig       `mapstructure:"clock"`
	Redis      RedisConfig       `mapstructure:"redis"`
	Log        logger.Config     `mapstructure:"log"`
	Database   DatabaseConfig    `mapstructure:"database"`
	Generators []GeneratorConfig `mapstructure:"generators" validate:"dive"`
}

// ServerConfig HTTP服务配置
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	Mode            string        `mapstructure:"mode" validate:"omitempty,oneof=debug release test"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gte=0"`
	MaxBatch        int           `mapstructure:"max_batch" validate:"gte=1,lte=100000"`
	Swagger         bool          `mapstructure:"swagger"`
}

// AuthConfig 接口鉴权配置（HS256 Bearer Token）
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Secret  string `mapstructure:"secret" validate:"required_if=Enabled true"`
	Issuer  string `mapstructure:"issuer"`
}

// ClockConfig 时间源配置
type ClockConfig struct {
	// Source system | monotonic | redis
	Source string `mapstructure:"source" validate:"oneof=system monotonic redis"`
	// Epoch 自定义纪元（RFC3339），为空表示Unix纪元
	Epoch string `mapstructure:"epoch"`
}

// RedisConfig Redis连接配置（clock.source=redis时使用）
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db" validate:"gte=0"`
	Timeout  time.Duration `mapstructure:"timeout" validate:"gte=0"`
	Backoff  time.Duration `mapstructure:"backoff" validate:"gte=0"` // 读取失败后改用本地时钟的时长
}

// DatabaseConfig 生成器定义的存储配置，Driver为空表示不启用
type DatabaseConfig struct {
	Driver string `mapstructure:"driver" validate:"omitempty,oneof=sqlite mysql postgres"`
	DSN    string `mapstructure:"dsn" validate:"required_with=Driver"`
}

// GeneratorConfig 启动时注册的命名生成器
type GeneratorConfig struct {
	Key              string `mapstructure:"key" validate:"required,max=256"`
	Identifier       uint64 `mapstructure:"identifier"`
	IdentifierSource string `mapstructure:"identifier_source" validate:"omitempty,oneof=static random hostname"`
	EnableMetrics    bool   `mapstructure:"enable_metrics"`
}

// EpochTime 解析后的纪元，未配置时为Unix纪元
func (c ClockConfig) EpochTime() (time.Time, error) {
	if c.Epoch == "" {
		return time.UnixMilli(0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, c.Epoch)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse clock.epoch: %w", err)
	}
	if t.UnixMilli() < 0 {
		return time.Time{}, fmt.Errorf("clock.epoch %s is before the unix epoch", c.Epoch)
	}
	return t, nil
}

// SetDefaults 写入viper默认值
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_batch", 1000)
	v.SetDefault("server.swagger", true)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.issuer", "idgen")
	v.SetDefault("clock.source", "system")
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.timeout", 50*time.Millisecond)
	v.SetDefault("redis.backoff", time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.file.max_size_mb", 100)
	v.SetDefault("log.file.max_backups", 7)
	v.SetDefault("log.file.max_age_days", 30)
}

// LoadOption 加载选项
type LoadOption func(*viper.Viper) error

// WithFlag 把命令行flag绑定到配置键（flag显式设置时优先于文件与环境变量）
func WithFlag(key string, flag *pflag.Flag) LoadOption {
	return func(v *viper.Viper) error {
		if flag == nil {
			return nil
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", key, err)
		}
		return nil
	}
}

// Load 读取配置
// 说明：path为空时在 ./configs 与当前目录查找 config.yaml，找不到文件时只用默认值与环境变量
func Load(path string, opts ...LoadOption) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, opt := range opts {
		if err := opt(v); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newValidate 使用mapstructure标签作为错误中的字段名
func newValidate() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate 结构体标签校验与跨字段校验
func (c *Config) Validate() error {
	if err := newValidate().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if _, err := c.Clock.EpochTime(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Clock.Source == "redis" && c.Redis.Addr == "" {
		return fmt.Errorf("invalid config: redis.addr is required when clock.source is redis")
	}

	seen := make(map[string]struct{}, len(c.Generators))
	for _, g := range c.Generators {
		if _, dup := seen[g.Key]; dup {
			return fmt.Errorf("invalid config: duplicate generator key %q", g.Key)
		}
		seen[g.Key] = struct{}{}
	}
	return nil
}
