package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Solana SolanaConfig `mapstructure:"solana"`
	Wallet WalletConfig `mapstructure:"wallet"`
}

type AppConfig struct {
	Env            string  `mapstructure:"env"`
	HttpPort       string  `mapstructure:"http_port"`
	GrpcPort       string  `mapstructure:"grpc_port"`
	RateLimitRPS   float64 `mapstructure:"rate_limit_rps"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

type SolanaConfig struct {
	Network        string        `mapstructure:"network"` // devnet, testnet, mainnet-beta, localnet
	RpcUrl         string        `mapstructure:"rpc_url"` // overrides network when set
	ConfirmTimeout time.Duration `mapstructure:"confirm_timeout"`
	PollInterval   time.Duration `mapstructure:"poll_interval"`
}

type WalletConfig struct {
	KeystorePath   string `mapstructure:"keystore_path"`
	Password       string `mapstructure:"password"` // usually WALLET_PASSWORD
	DerivationPath string `mapstructure:"derivation_path"`
	AutoConnect    bool   `mapstructure:"auto_connect"` // unlock on startup, i.e. an already-connected provider
}

var Global Config

// Load reads .env, config.yaml and the environment into a Config.
func Load() (*Config, error) {
	// .env is optional; real environment variables win over it.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Init loads the configuration into Global.
func Init() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	Global = *cfg
	return nil
}

// Validate rejects values the services cannot start with.
func (c *Config) Validate() error {
	if c.Solana.RpcUrl == "" {
		switch c.Solana.Network {
		case "devnet", "testnet", "mainnet-beta", "localnet":
		default:
			return fmt.Errorf("unknown solana.network %q", c.Solana.Network)
		}
	}
	if c.Solana.ConfirmTimeout <= 0 {
		return errors.New("solana.confirm_timeout must be positive")
	}
	if c.Solana.PollInterval <= 0 {
		return errors.New("solana.poll_interval must be positive")
	}
	if c.Wallet.KeystorePath == "" {
		return errors.New("wallet.keystore_path is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")
	v.SetDefault("app.grpc_port", "50051")
	v.SetDefault("app.rate_limit_rps", 2.0)
	v.SetDefault("app.rate_limit_burst", 5)

	v.SetDefault("solana.network", "devnet")
	v.SetDefault("solana.rpc_url", "")
	v.SetDefault("solana.confirm_timeout", 60*time.Second)
	v.SetDefault("solana.poll_interval", time.Second)

	v.SetDefault("wallet.keystore_path", "wallet.json")
	v.SetDefault("wallet.password", "")
	v.SetDefault("wallet.derivation_path", "m/44'/501'/0'/0'")
	v.SetDefault("wallet.auto_connect", false)
}
