package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/fx"
)

const (
	configName = "config"
	configType = "yaml"
	homeDir    = ".prizewheel"
)

type Config struct {
	AppEnv   string `mapstructure:"APP_ENV"`
	AppName  string `mapstructure:"APP_NAME"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	NodeID   int64  `mapstructure:"NODE_ID"`
	DataDir  string `mapstructure:"DATA_DIR"`

	Cooldown struct {
		Window time.Duration `mapstructure:"WINDOW"`
		Key    string        `mapstructure:"KEY"`
	} `mapstructure:"COOLDOWN"`
	Spin struct {
		RevealDelay time.Duration `mapstructure:"REVEAL_DELAY"`
	} `mapstructure:"SPIN"`
	Redeem struct {
		BaseURL string `mapstructure:"BASE_URL"`
		Phone   string `mapstructure:"PHONE"`
	} `mapstructure:"REDEEM"`
	Rewards struct {
		File string `mapstructure:"FILE"`
	} `mapstructure:"REWARDS"`
	Storage struct {
		Driver string `mapstructure:"DRIVER"`
		Path   string `mapstructure:"PATH"`
	} `mapstructure:"STORAGE"`
	Database struct {
		Path string `mapstructure:"PATH"`
	} `mapstructure:"DATABASE"`
	Otel struct {
		Endpoint string `mapstructure:"ENDPOINT"`
		Insecure bool   `mapstructure:"INSECURE"`
	} `mapstructure:"OTEL"`
	Pyroscope struct {
		Addr string `mapstructure:"ADDR"`
	} `mapstructure:"PYROSCOPE"`
	TLS struct {
		Enable   bool   `mapstructure:"ENABLE"`
		CertPath string `mapstructure:"CERT_PATH"`
		KeyPath  string `mapstructure:"KEY_PATH"`
	} `mapstructure:"TLS"`
	Server struct {
		Addr         string        `mapstructure:"ADDR"`
		ReadTimeout  time.Duration `mapstructure:"READ_TIMEOUT"`
		WriteTimeout time.Duration `mapstructure:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `mapstructure:"IDLE_TIMEOUT"`
	} `mapstructure:"HTTP_SERVER"`
}

// Source points LoadConfig at an explicit file. An empty File searches the
// working directory and ~/.prizewheel.
type Source struct {
	File string
}

var Module = fx.Module("config", fx.Provide(LoadConfig))

type Params struct {
	fx.In
	Source Source `optional:"true"`
}

func LoadConfig(p Params) (*Config, error) {
	return Load(p.Source)
}

func Load(src Source) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType(configType)
	if src.File != "" {
		v.SetConfigFile(src.File)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, homeDir))
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if src.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "prizewheel")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("NODE_ID", 1)
	v.SetDefault("DATA_DIR", "")
	v.SetDefault("COOLDOWN.WINDOW", 24*time.Hour)
	v.SetDefault("COOLDOWN.KEY", "nova_last_spin_at")
	v.SetDefault("SPIN.REVEAL_DELAY", 5400*time.Millisecond)
	v.SetDefault("REDEEM.BASE_URL", "https://wa.me")
	v.SetDefault("REDEEM.PHONE", "5493512583838")
	v.SetDefault("REWARDS.FILE", "")
	v.SetDefault("STORAGE.DRIVER", "sqlite")
	v.SetDefault("STORAGE.PATH", "")
	v.SetDefault("DATABASE.PATH", "")
	v.SetDefault("TLS.ENABLE", false)
	v.SetDefault("TLS.CERT_PATH", "")
	v.SetDefault("TLS.KEY_PATH", "")
	v.SetDefault("OTEL.ENDPOINT", "")
	v.SetDefault("OTEL.INSECURE", false)
	v.SetDefault("PYROSCOPE.ADDR", "")
	v.SetDefault("HTTP_SERVER.ADDR", "127.0.0.1:8787")
	v.SetDefault("HTTP_SERVER.READ_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("HTTP_SERVER.IDLE_TIMEOUT", 60*time.Second)
}

// resolvePaths fills the device-local paths relative to DataDir.
func (c *Config) resolvePaths() error {
	if c.DataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("determining home directory: %w", err)
		}
		c.DataDir = filepath.Join(home, homeDir)
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.DataDir, "prizewheel.db")
	}
	if c.Storage.Path == "" && c.Storage.Driver == "file" {
		c.Storage.Path = filepath.Join(c.DataDir, "state.json")
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Cooldown.Window <= 0 {
		return fmt.Errorf("COOLDOWN.WINDOW must be positive, got %s", c.Cooldown.Window)
	}
	if strings.TrimSpace(c.Cooldown.Key) == "" {
		return errors.New("COOLDOWN.KEY must not be empty")
	}
	if c.Spin.RevealDelay < 0 {
		return fmt.Errorf("SPIN.REVEAL_DELAY must not be negative, got %s", c.Spin.RevealDelay)
	}
	switch c.Storage.Driver {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("unknown STORAGE.DRIVER %q", c.Storage.Driver)
	}
	if c.TLS.Enable && (c.TLS.CertPath == "" || c.TLS.KeyPath == "") {
		return errors.New("tls enabled but TLS.CERT_PATH or TLS.KEY_PATH not provided")
	}
	return nil
}
