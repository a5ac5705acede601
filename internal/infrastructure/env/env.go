package env

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Service reads process environment with optional .env overrides. Secrets
// (store credentials, API keys) come in through here rather than the YAML
// config so they stay out of checked-in files.
type Service struct{}

func NewService() *Service {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("no .env file found (fine outside local dev)")
	}
	return &Service{}
}

func (e *Service) Get(key string) string {
	return os.Getenv(key)
}

func (e *Service) GetOr(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

func (e *Service) GetBool(key string, defaultValue bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func (e *Service) GetInt(key string, defaultValue int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return parsed
}
