package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Cloud   CloudConfig   `mapstructure:"cloud"`
	Pairing PairingConfig `mapstructure:"pairing"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Auth Configuration for the bridge's own API surface.
type AuthConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	JWTSecretEnv string        `mapstructure:"jwt_secret_env"`
	AccessKeyEnv string        `mapstructure:"access_key_env"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
}

// Cloud Configuration for the remote device service.
type CloudConfig struct {
	ClientID  string        `mapstructure:"client_id"`
	SecretEnv string        `mapstructure:"secret_env"`
	Region    string        `mapstructure:"region"`
	BaseURL   string        `mapstructure:"base_url"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// Pairing Configuration: simulated completion delays per mode.
type PairingConfig struct {
	EZDelay time.Duration `mapstructure:"ez_delay"`
	APDelay time.Duration `mapstructure:"ap_delay"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("auth.enabled", false)
	viper.SetDefault("auth.jwt_secret_env", "BRIDGE_JWT_SECRET")
	viper.SetDefault("auth.access_key_env", "BRIDGE_ACCESS_KEY")
	viper.SetDefault("auth.token_ttl", "60m")

	viper.SetDefault("cloud.region", "us")
	viper.SetDefault("cloud.secret_env", "CLOUD_API_SECRET")
	viper.SetDefault("cloud.timeout", "15s")

	viper.SetDefault("pairing.ez_delay", "3s")
	viper.SetDefault("pairing.ap_delay", "5s")

	viper.AutomaticEnv()
	viper.SetEnvPrefix("BRIDGE")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// GetJWTSecret loads the API token signing secret from the environment.
// Empty means the secret is not configured; callers that enable auth
// must treat that as a fatal misconfiguration.
func (a *AuthConfig) GetJWTSecret() string {
	envVar := a.JWTSecretEnv
	if envVar == "" {
		envVar = "BRIDGE_JWT_SECRET"
	}
	return os.Getenv(envVar)
}

// GetAccessKey loads the API access key from the environment.
func (a *AuthConfig) GetAccessKey() string {
	envVar := a.AccessKeyEnv
	if envVar == "" {
		envVar = "BRIDGE_ACCESS_KEY"
	}
	return os.Getenv(envVar)
}

// GetCloudSecret loads the cloud signing secret from the environment.
func (c *CloudConfig) GetCloudSecret() string {
	envVar := c.SecretEnv
	if envVar == "" {
		envVar = "CLOUD_API_SECRET"
	}
	return os.Getenv(envVar)
}
