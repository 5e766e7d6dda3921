package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
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
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

type Redis struct {
	Addr        string `mapstructure:"addr"`
	Password    string `mapstructure:"password"`
	DB          int    `mapstructure:"db"`
	BoardTTLSec int    `mapstructure:"board_ttl_sec"`
}

// Store 存储后端，memory 表示全部放进程内
type Store struct {
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

type Security struct {
	BcryptCost     int
	NumericStaffID bool // 员工号必须是 1000-9000 的数字
}

type Airport struct {
	Timezone string
}

type Limits struct {
	RPS         float64
	Burst       int
	Concurrency int64
	BodyBytes   int64
	TimeoutSec  int
}

type Config struct {
	App      App
	Log      Log
	JWT      JWT
	Store    Store
	Redis    Redis `mapstructure:"redis"`
	Security Security
	Airport  Airport
	Limits   Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "airport-ops")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsizemb", 100)
	v.SetDefault("log.file.maxbackups", 7)
	v.SetDefault("log.file.maxagedays", 30)

	v.SetDefault("jwt.issuer", "airport-ops")
	v.SetDefault("jwt.accesstokenttlmin", 60)

	v.SetDefault("store.driver", "memory")
	v.SetDefault("store.maxopenconns", 20)
	v.SetDefault("store.maxidleconns", 5)
	v.SetDefault("store.connmaxlifetimemin", 30)
	v.SetDefault("store.loglevel", "warn")

	v.SetDefault("redis.board_ttl_sec", 30)

	v.SetDefault("security.bcryptcost", 10)
	v.SetDefault("security.numericstaffid", false)

	v.SetDefault("airport.timezone", "Australia/Brisbane")

	v.SetDefault("limits.rps", 50)
	v.SetDefault("limits.burst", 100)
	v.SetDefault("limits.concurrency", 256)
	v.SetDefault("limits.bodybytes", 1<<20)
	v.SetDefault("limits.timeoutsec", 5)
}

// Load 读 YAML（path 为空时用 CONFIG_PATH 或 ./configs/config.local.yaml），再叠加 APP_* 环境变量。
// 默认文件缺失可以，显式指定的文件缺失报错
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if !explicit {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = "./configs/config.local.yaml"
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// AutomaticEnv 只认识有默认值的 key，其余需要手动 BindEnv
func bindEnv(v *viper.Viper) {
	for _, k := range []string{"jwt.secret", "store.dsn", "store.username", "store.password", "redis.addr", "redis.password", "redis.db"} {
		_ = v.BindEnv(k)
	}
}

func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("config: jwt.secret is required")
	}
	switch c.Store.Driver {
	case "memory":
	case "postgres", "mysql":
		if c.Store.DSN == "" {
			return fmt.Errorf("config: store.dsn is required for driver %s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("config: unsupported store.driver %q", c.Store.Driver)
	}
	if _, err := time.LoadLocation(c.Airport.Timezone); err != nil {
		return fmt.Errorf("config: airport.timezone: %w", err)
	}
	return nil
}
