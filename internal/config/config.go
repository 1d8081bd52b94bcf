// Package config loads the application configuration. The whole
// configuration is read once at startup from the YAML file pointed to by
// CONFIG_PATH and passed by dependency to every component; nothing else
// reads the process environment.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	JWTToken                `yaml:"jwttoken"`
	PayTech                 `yaml:"paytech"`
	ObjectStore             `yaml:"object_store"`
	RabbitMQ                `yaml:"rabbitmq"`
}

// HTTPServer holds the listener settings.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection holds the cache settings.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// JWTToken holds the token secrets and lifetimes. Access and refresh
// secrets are distinct; ExchangeTTL applies to access tokens issued on
// the refresh path.
type JWTToken struct {
	AccessSecret  string        `yaml:"access_secret" env:"JWT_ACCESS_SECRET"`
	RefreshSecret string        `yaml:"refresh_secret" env:"JWT_REFRESH_SECRET"`
	AccessTTL     time.Duration `yaml:"access_ttl" env-default:"30m"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env-default:"168h"`
	ExchangeTTL   time.Duration `yaml:"exchange_ttl" env-default:"5m"`
}

// PayTech holds the payment provider credentials and callback URLs.
type PayTech struct {
	APIKey     string `yaml:"api_key" env:"PAYTECH_API_KEY"`
	APISecret  string `yaml:"api_secret" env:"PAYTECH_API_SECRET"`
	IPNURL     string `yaml:"ipn_url"`
	SuccessURL string `yaml:"success_url"`
	CancelURL  string `yaml:"cancel_url"`
	Env        string `yaml:"env" env-default:"test"`
}

// ObjectStore holds the MinIO-compatible blob store settings.
type ObjectStore struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key" env:"OBJECT_STORE_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"OBJECT_STORE_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env-default:"saabal"`
	UseSSL    bool   `yaml:"use_ssl"`
	PublicURL string `yaml:"public_url"`
}

// RabbitMQ holds the broker settings for mail jobs.
type RabbitMQ struct {
	URL string `yaml:"url" env:"RABBITMQ_URL"`
}

// MustLoad loads the configuration from CONFIG_PATH or exits.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
