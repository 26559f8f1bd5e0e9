package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	AMQP     AMQPConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token        string
	MessageToken string // token for sending order notifications to the admin
	AdminID      int64
}

type AMQPConfig struct {
	URL string // empty disables order event publishing
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	adminID, _ := strconv.ParseInt(getEnv("ADMIN_ID", "0"), 10, 64)

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "coffee"),
		},
		Telegram: TelegramConfig{
			Token:        getEnv("TOKEN", ""),
			MessageToken: getEnv("MESSAGE_TOKEN", ""),
			AdminID:      adminID,
		},
		AMQP: AMQPConfig{
			URL: getEnv("AMQP_URL", ""),
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
