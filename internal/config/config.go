// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	RedisConnection         `yaml:"redis_connection"`
	RabbitMQ                `yaml:"rabbitmq"`
	LicenceAPI              `yaml:"licence_api"`
	Payment                 `yaml:"payment"`
	JWTToken                `yaml:"jwttoken"`
	Session                 `yaml:"session"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
// Пустой адрес означает хранение сессий в памяти процесса.
type RedisConnection struct {
	AddressRedis      string        `yaml:"addressredis" env:"REDIS_ADDRESS"`
	RedisPassword     string        `yaml:"password" env:"REDIS_PASSWORD"`
	RedisUser         string        `yaml:"user"`
	RedisDB           int           `yaml:"db"`
	RedisMaxRetries   int           `yaml:"max_retries"`
	RedisDialTimeout  time.Duration `yaml:"dial_timeout"`
	RedisTimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// RabbitMQ структура для настройки публикации событий.
// Пустой URL отключает публикацию.
type RabbitMQ struct {
	RabbitURL      string        `yaml:"url" env:"RABBITMQ_URL"`
	RabbitRetries  int           `yaml:"retries" env-default:"5"`
	RabbitDelay    time.Duration `yaml:"delay" env-default:"2s"`
	RabbitExchange string        `yaml:"exchange" env-default:"licence.events"`
}

// LicenceAPI структура для настройки клиента сервиса лицензий
type LicenceAPI struct {
	LicenceBaseURL  string        `yaml:"base_url" env:"LICENCE_API_URL" env-default:"http://localhost:8080"`
	LicenceTimeout  time.Duration `yaml:"timeout" env-default:"10s"`
	SimulationDelay time.Duration `yaml:"simulation_delay" env-default:"1500ms"`
}

// Payment структура для настройки клиента платёжного сервиса
type Payment struct {
	PaymentBaseURL   string        `yaml:"base_url" env:"PAYMENT_API_URL" env-default:"http://localhost:5080"`
	PaymentLicenceID string        `yaml:"licence_id" env-default:"lic-std-001"`
	PaymentTimeout   time.Duration `yaml:"timeout" env-default:"10s"`
}

// JWTToken структура для подписи токенов лицензий
type JWTToken struct {
	JWTSecretKey string `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY" env-required:"true"`
}

// Session структура для настройки сессий посетителей
type Session struct {
	CookieName string        `yaml:"cookie_name" env-default:"portal_session"`
	SessionTTL time.Duration `yaml:"ttl" env-default:"720h"`
	GuardDelay time.Duration `yaml:"guard_delay" env-default:"100ms"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH и завершает процесс при ошибке.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает YAML-файл конфига, дополняя его переменными окружения и значениями по умолчанию.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Storage: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"Redis: %s (db %d)\n"+
			"RabbitMQ: %s exchange=%s\n"+
			"LicenceAPI: %s timeout=%s simulation_delay=%s\n"+
			"Payment: %s licence=%s timeout=%s\n"+
			"JWTSecretKey: %s\n"+
			"Session: cookie=%s ttl=%s guard_delay=%s\n",
		c.Env,
		mask(c.StorageConnectionString),
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		c.AddressRedis,
		c.RedisDB,
		mask(c.RabbitURL),
		c.RabbitExchange,
		c.LicenceBaseURL,
		c.LicenceTimeout,
		c.SimulationDelay,
		c.PaymentBaseURL,
		c.PaymentLicenceID,
		c.PaymentTimeout,
		mask(c.JWTSecretKey),
		c.CookieName,
		c.SessionTTL,
		c.GuardDelay,
	)
}

func mask(s string) string {
	if s == "" {
		return "<unset>"
	}
	return "***"
}
