package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name         string
	Env          string
	HTTP         HTTP
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

// GinMode prod 走 release，其余 debug
func (a App) GinMode() string {
	if a.Env == "prod" || a.Env == "production" {
		return "release"
	}
	return "debug"
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

type JWT struct {
	Secret             string
	Issuer             string
	Algorithm          string
	AccessTokenTTLMin  int
	RefreshTokenTTLMin int
}

func (j JWT) AccessTTL() time.Duration  { return time.Duration(j.AccessTokenTTLMin) * time.Minute }
func (j JWT) RefreshTTL() time.Duration { return time.Duration(j.RefreshTokenTTLMin) * time.Minute }

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type BootstrapAdmin struct {
	Enable    bool
	ID        string `mapstructure:"id"`
	Username  string
	Password  string
	Email     string
	Firstname string
	Lastname  string
}

type RBAC struct {
	AdminRoleID      string   `mapstructure:"adminRoleId"`
	DefaultRoleID    string   `mapstructure:"defaultRoleId"`
	ProtectedRoleIDs []string `mapstructure:"protectedRoleIds"`
	ProtectedUserIDs []string `mapstructure:"protectedUserIds"`
	BootstrapAdmin   BootstrapAdmin
}

type Cookie struct {
	Domain string
	Path   string
	Secure bool
}

type Limits struct {
	RPS          float64
	Burst        int
	PerIPRPS     float64 `mapstructure:"perIpRps"`
	PerIPBurst   int     `mapstructure:"perIpBurst"`
	Concurrency  int64
	MaxBodyBytes int64
	TimeoutSec   int
}

// Authz catalog 服务用：远端鉴权地址 + 决策缓存
type Authz struct {
	BaseURL     string `mapstructure:"baseUrl"`
	TimeoutSec  int
	CacheTTLSec int `mapstructure:"cacheTtlSec"`
}

type Config struct {
	App    App
	Log    Log
	JWT    JWT
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	RBAC   RBAC  `mapstructure:"rbac"`
	Cookie Cookie
	Limits Limits
	Authz  Authz
}

func Load(path string) *Config {
	c, err := Read(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	return c
}

// Read 读 yaml + APP_ 前缀环境变量覆盖
func Read(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 10)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("log.level", "info")
	v.SetDefault("jwt.algorithm", "HS256")
	v.SetDefault("jwt.accessTokenTTLMin", 15)
	v.SetDefault("jwt.refreshTokenTTLMin", 60*24*7)
	v.SetDefault("db.maxOpenConns", 20)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("cookie.path", "/")
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIpRps", 20)
	v.SetDefault("limits.perIpBurst", 40)
	v.SetDefault("limits.concurrency", 256)
	v.SetDefault("limits.maxBodyBytes", 16<<20)
	v.SetDefault("limits.timeoutSec", 15)
	v.SetDefault("authz.timeoutSec", 5)
	v.SetDefault("authz.cacheTtlSec", 30)
}

var ErrInvalidConfig = errors.New("invalid config")

// Validate 签名配置缺失直接拒绝启动
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("%w: jwt.secret is empty", ErrInvalidConfig)
	}
	switch c.JWT.Algorithm {
	case "HS256", "HS384", "HS512":
	default:
		return fmt.Errorf("%w: jwt.algorithm %q not supported", ErrInvalidConfig, c.JWT.Algorithm)
	}
	if c.JWT.AccessTokenTTLMin <= 0 || c.JWT.RefreshTokenTTLMin <= 0 {
		return fmt.Errorf("%w: token ttl must be positive", ErrInvalidConfig)
	}
	if c.JWT.AccessTokenTTLMin >= c.JWT.RefreshTokenTTLMin {
		return fmt.Errorf("%w: access ttl must be shorter than refresh ttl", ErrInvalidConfig)
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("%w: db.driver %q not supported", ErrInvalidConfig, c.DB.Driver)
	}
	return nil
}

// ValidateCatalog catalog 服务不签 token，只需要鉴权地址
func (c *Config) ValidateCatalog() error {
	if c.Authz.BaseURL == "" {
		return fmt.Errorf("%w: authz.baseUrl is empty", ErrInvalidConfig)
	}
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("%w: db.driver %q not supported", ErrInvalidConfig, c.DB.Driver)
	}
	return nil
}
