package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	DB       DBConfig       `yaml:"db"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Blob     BlobConfig     `yaml:"blob"`
	Redis    RedisConfig    `yaml:"redis"`
	Resolver ResolverConfig `yaml:"resolver"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"` //nolint:gosec // config struct, not hardcoded cred
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
}

type BlobConfig struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	Bucket          string `yaml:"bucket"`
	PublicBaseURL   string `yaml:"public_base_url"`
}

type RedisConfig struct {
	Address  string        `yaml:"address"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type ResolverConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

type WorkerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	DueWindow time.Duration `yaml:"due_window"`
}

func Load() (*Config, error) {
	configPath := getConfigPath()
	data, err := os.ReadFile(configPath) //nolint:gosec // config path from env/flag
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	setDefaults(&cfg)
	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func getConfigPath() string {
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}

	possiblePaths := []string{
		"config/config.yaml",
		"/etc/classwork-service/config.yaml",
		"./config.yaml",
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return "config.yaml"
}

func setDefaults(cfg *Config) {
	if cfg.Resolver.Timeout == 0 {
		cfg.Resolver.Timeout = 10 * time.Second
	}
	if cfg.Redis.CacheTTL == 0 {
		cfg.Redis.CacheTTL = 24 * time.Hour
	}
	if cfg.Worker.Interval == 0 {
		cfg.Worker.Interval = time.Minute
	}
	if cfg.Worker.DueWindow == 0 {
		cfg.Worker.DueWindow = 24 * time.Hour
	}
	if cfg.Blob.Region == "" {
		cfg.Blob.Region = "us-east-1"
	}
}

func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("DB_HOST"); val != "" {
		cfg.DB.Host = val
	}
	if val := os.Getenv("DB_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.DB.Port = port
		}
	}
	if val := os.Getenv("DB_USER"); val != "" {
		cfg.DB.User = val
	}
	if val := os.Getenv("DB_PASSWORD"); val != "" {
		cfg.DB.Password = val
	}
	if val := os.Getenv("DB_NAME"); val != "" {
		cfg.DB.DBName = val
	}
	if val := os.Getenv("DB_SSL_MODE"); val != "" {
		cfg.DB.SSLMode = val
	}

	if val := os.Getenv("KAFKA_BROKERS"); val != "" {
		cfg.Kafka.Brokers = strings.Split(val, ",")
	}

	if val := os.Getenv("BLOB_ENDPOINT"); val != "" {
		cfg.Blob.Endpoint = val
	}
	if val := os.Getenv("BLOB_ACCESS_KEY_ID"); val != "" {
		cfg.Blob.AccessKeyID = val
	}
	if val := os.Getenv("BLOB_SECRET_ACCESS_KEY"); val != "" {
		cfg.Blob.SecretAccessKey = val
	}
	if val := os.Getenv("BLOB_BUCKET"); val != "" {
		cfg.Blob.Bucket = val
	}
	if val := os.Getenv("BLOB_PUBLIC_BASE_URL"); val != "" {
		cfg.Blob.PublicBaseURL = val
	}

	if val := os.Getenv("REDIS_ADDRESS"); val != "" {
		cfg.Redis.Address = val
	}
}

func validateConfig(cfg *Config) error {
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.DBName == "" {
		return fmt.Errorf("database configuration is incomplete")
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("at least one Kafka broker must be specified")
	}

	if cfg.Blob.Endpoint == "" || cfg.Blob.Bucket == "" {
		return fmt.Errorf("blob store configuration is incomplete")
	}

	return nil
}
