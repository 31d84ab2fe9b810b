// Package config 加载应用配置：多个 YAML 文件按顺序深度合并，
// 然后填充默认值、应用环境变量覆盖并校验。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mcuadros/go-defaults"
	"gopkg.in/yaml.v3"
)

// EnvPrefix 是环境变量覆盖的前缀
const EnvPrefix = "CETMATCH_"

// AppConfig 是应用的完整配置。
type AppConfig struct {
	Server     ServerConfig     `yaml:"server"`
	Data       DataConfig       `yaml:"data"`
	Encoder    EncoderConfig    `yaml:"encoder"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Cache      CacheConfig      `yaml:"cache"`
	Auth       AuthConfig       `yaml:"auth"`
	Log        LogConfig        `yaml:"log"`
}

type ServerConfig struct {
	Addr         string        `yaml:"addr" default:":8080" validate:"required"`
	ReadTimeout  time.Duration `yaml:"read_timeout" default:"5s"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"15s"`
	RateLimit    float64       `yaml:"rate_limit" validate:"gte=0"` // 每秒请求数，0 表示不限流
	Burst        int           `yaml:"burst" default:"20" validate:"gte=1"`
	// Strict 为 true 时初始化失败直接退出；否则以降级模式启动，查询返回初始化错误
	Strict bool `yaml:"strict"`
}

type DataConfig struct {
	Source    string   `yaml:"source" default:"csv" validate:"oneof=csv sqlite"`
	Paths     []string `yaml:"paths"`
	SQLiteDSN string   `yaml:"sqlite_dsn" validate:"required_if=Source sqlite"`
	Table     string   `yaml:"table" default:"cutoffs"`
}

type EncoderConfig struct {
	Path string `yaml:"path" default:"models/encoder.json" validate:"required"`
}

// ClassifierConfig 通过 Type 选择已注册的构建器，Params 原样传给构建器。
type ClassifierConfig struct {
	Type   string         `yaml:"type" default:"lr" validate:"required"`
	Params map[string]any `yaml:"params"`
}

type CacheConfig struct {
	Backend  string        `yaml:"backend" default:"none" validate:"oneof=none memory redis"`
	Addr     string        `yaml:"addr" validate:"required_if=Backend redis"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db" validate:"gte=0"`
	TTL      time.Duration `yaml:"ttl" default:"10m"`
	// MaxEntries 仅对 memory 生效
	MaxEntries int `yaml:"max_entries" default:"10000" validate:"gte=1"`
}

// AuthConfig 控制 /auth/signup 与 /auth/signin。Enabled 为 false 时不注册这两个路由。
type AuthConfig struct {
	Enabled    bool          `yaml:"enabled"`
	DSN        string        `yaml:"dsn" default:"cetmatch_users.db" validate:"required_if=Enabled true"`
	JWTSecret  string        `yaml:"jwt_secret" validate:"required_if=Enabled true"`
	TokenTTL   time.Duration `yaml:"token_ttl" default:"168h"`
	BcryptCost int           `yaml:"bcrypt_cost" default:"10" validate:"gte=4,lte=31"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info"`
	Format string `yaml:"format" default:"json" validate:"oneof=json console"`
}

// Load 依次加载配置文件、填充默认值、应用环境变量（含 .env）并校验。
// configFiles 为空时只使用默认值与环境变量。
func Load(configFiles []string) (*AppConfig, error) {
	var cfg AppConfig
	if err := LoadConfiguration(configFiles, &cfg); err != nil {
		return nil, err
	}
	defaults.SetDefaults(&cfg)

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfiguration 按顺序解析 YAML 文件并深度合并到 target，后面的文件覆盖前面的。
func LoadConfiguration(configFiles []string, target any) error {
	for _, path := range configFiles {
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		cfg := newZeroFor(target)
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := mergo.Merge(target, cfg, mergo.WithOverride); err != nil {
			return fmt.Errorf("merge config %s: %w", path, err)
		}
	}
	return nil
}

// yaml 只覆盖顶层，深度合并需要每个文件各自解析到同类型的零值再用 mergo 合并。
// target 必须是指向结构体的指针。
func newZeroFor(target any) any {
	return reflect.New(reflect.TypeOf(target).Elem()).Interface()
}

// Validate 按 validate tag 校验配置
func Validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ApplyEnv 用 CETMATCH_* 环境变量覆盖配置。
func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	str("ADDR", &c.Server.Addr)
	str("DATA_SOURCE", &c.Data.Source)
	str("SQLITE_DSN", &c.Data.SQLiteDSN)
	str("ENCODER_PATH", &c.Encoder.Path)
	str("CLASSIFIER_TYPE", &c.Classifier.Type)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("REDIS_ADDR", &c.Cache.Addr)
	str("REDIS_PASSWORD", &c.Cache.Password)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("AUTH_DSN", &c.Auth.DSN)
	str("JWT_SECRET", &c.Auth.JWTSecret)

	if v, ok := lookup(EnvPrefix + "DATA_PATHS"); ok && v != "" {
		c.Data.Paths = splitList(v)
	}
	if v, ok := lookup(EnvPrefix + "MODEL_PATH"); ok && v != "" {
		if c.Classifier.Params == nil {
			c.Classifier.Params = make(map[string]any)
		}
		c.Classifier.Params["path"] = v
	}
	if v, ok := lookup(EnvPrefix + "MODEL_ENDPOINT"); ok && v != "" {
		if c.Classifier.Params == nil {
			c.Classifier.Params = make(map[string]any)
		}
		c.Classifier.Params["endpoint"] = v
	}
	if v, ok := lookup(EnvPrefix + "AUTH_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sAUTH_ENABLED: %w", EnvPrefix, err)
		}
		c.Auth.Enabled = b
	}
	if v, ok := lookup(EnvPrefix + "RATE_LIMIT"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sRATE_LIMIT: %w", EnvPrefix, err)
		}
		c.Server.RateLimit = f
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
