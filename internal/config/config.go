package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL   string             `mapstructure:"database_url"`
	ServerPort    string             `mapstructure:"server_port"`
	JWTSecret     string             `mapstructure:"jwt_secret"`
	LogLevel      string             `mapstructure:"log_level"`
	CORS          CORSConfig         `mapstructure:"cors"`
	Notifications NotificationConfig `mapstructure:"notifications"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type NotificationConfig struct {
	// StoragePath is the SQLite file backing the notification list and preferences.
	StoragePath string `mapstructure:"storage_path"`
	Namespace   string `mapstructure:"namespace"`

	// SoundEnabled is the default when no preference has been persisted yet.
	SoundEnabled bool `mapstructure:"sound_enabled"`

	// AutoGrant answers permission requests for native notifications.
	AutoGrant bool `mapstructure:"auto_grant"`

	Email EmailConfig `mapstructure:"email"`
	Push  PushConfig  `mapstructure:"push"`
}

type EmailConfig struct {
	From            string   `mapstructure:"from"`
	SMTPHost        string   `mapstructure:"smtp_host"`
	SMTPPort        int      `mapstructure:"smtp_port"`
	Username        string   `mapstructure:"username"`
	Password        string   `mapstructure:"password"`
	AlertRecipients []string `mapstructure:"alert_recipients"`
}

type PushConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	Topic     string `mapstructure:"topic"`
}

// Load reads the configuration from a YAML file and returns a Config instance.
func Load() *Config {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env file")
	}

	v := newViper()
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetConfigName("config")

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}

	cfg, err := decode(v)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

// LoadFile reads configuration from an explicit path.
func LoadFile(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("RF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// AutomaticEnv only applies to keys viper already knows about.
	for _, key := range []string{"database_url", "server_port", "jwt_secret", "log_level"} {
		_ = v.BindEnv(key)
	}
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Fallback defaults
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if len(config.CORS.AllowedOrigins) == 0 {
		config.CORS.AllowedOrigins = []string{"http://localhost:3000"}
	}
	if config.Notifications.StoragePath == "" {
		config.Notifications.StoragePath = "reviewfighters-notifications.db"
	}
	if config.Notifications.Namespace == "" {
		config.Notifications.Namespace = "reviewfighters"
	}
	if config.Notifications.Email.SMTPPort == 0 {
		config.Notifications.Email.SMTPPort = 587
	}

	if config.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret must be set in the config file")
	}
	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("database_url must be set in the config file")
	}

	return &config, nil
}
