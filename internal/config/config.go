package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Address string `mapstructure:"address"`
	Port    int    `mapstructure:"port"`
	Mode    string `mapstructure:"mode"`
}

// RemoteConfig describes the remote store. When Enabled is false the
// application runs in demo/local mode and none of the other fields are used.
type RemoteConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Driver      string `mapstructure:"driver"` // sqlite / postgres
	DSN         string `mapstructure:"dsn"`
	LogMode     bool   `mapstructure:"log_mode"`
	JWTSecret   string `mapstructure:"jwt_secret"`
	Issuer      string `mapstructure:"issuer"`
	ExpireHours int    `mapstructure:"expire_hours"`
	BcryptCost  int    `mapstructure:"bcrypt_cost"`
}

type RealtimeConfig struct {
	Driver   string `mapstructure:"driver"` // memory / redis
	RedisURL string `mapstructure:"redis_url"`
	Channel  string `mapstructure:"channel"`
}

type StorageConfig struct {
	Driver  string `mapstructure:"driver"` // local / gcs
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
	Bucket  string `mapstructure:"bucket"`
}

// LocalConfig is the client-side persisted state (demo identity, session token).
type LocalConfig struct {
	Path          string `mapstructure:"path"`
	EncryptionKey string `mapstructure:"encryption_key"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console / json
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Remote   RemoteConfig   `mapstructure:"remote"`
	Realtime RealtimeConfig `mapstructure:"realtime"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Local    LocalConfig    `mapstructure:"local"`
	Log      LogConfig      `mapstructure:"log"`
}

var (
	appConfig *Config
	once      sync.Once
)

// Load loads configuration from given file path (e.g. "config.yaml").
// If path is empty, it looks for "config.yaml" in the current working directory
// and falls back to defaults when there is none.
func Load(path string) (*Config, error) {
	var err error
	once.Do(func() {
		appConfig, err = Read(path)
	})

	if err != nil {
		return nil, err
	}
	return appConfig, nil
}

// Read parses the configuration without touching the global instance.
func Read(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	// environment overrides, e.g. FIN_REMOTE_ENABLED=true
	v.SetEnvPrefix("FIN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")

	v.SetDefault("remote.enabled", false)
	v.SetDefault("remote.driver", "sqlite")
	v.SetDefault("remote.dsn", "data/remote.db")
	v.SetDefault("remote.issuer", "finance-dashboard")
	v.SetDefault("remote.expire_hours", 24*7)
	v.SetDefault("remote.bcrypt_cost", 12)

	v.SetDefault("realtime.driver", "memory")
	v.SetDefault("realtime.channel", "finance:changes")

	v.SetDefault("storage.driver", "local")
	v.SetDefault("storage.dir", "data/avatars")
	v.SetDefault("storage.base_url", "/avatars")

	v.SetDefault("local.path", "data/local.json")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}
