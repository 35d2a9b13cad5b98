package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port                string
	AllowedOrigin       string
	DatabaseURL         string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	MenuCacheTTLSeconds int
	MailEndpoint        string
	MailAPIKey          string
	MailFrom            string
}

func Load() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	ttl, err := strconv.Atoi(getEnv("MENU_CACHE_TTL_SECONDS", "30"))
	if err != nil || ttl < 1 {
		ttl = 30
	}

	cfg := Config{
		Port:                getEnv("PORT", "8080"),
		AllowedOrigin:       getEnv("ALLOWED_ORIGIN", "http://127.0.0.1:3000"),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisAddr:           os.Getenv("REDIS_ADDR"),
		RedisPassword:       os.Getenv("REDIS_PASSWORD"),
		RedisDB:             redisDB,
		MenuCacheTTLSeconds: ttl,
		MailEndpoint:        strings.TrimSpace(os.Getenv("MAIL_ENDPOINT")),
		MailAPIKey:          strings.TrimSpace(os.Getenv("MAIL_API_KEY")),
		MailFrom:            getEnv("MAIL_FROM", "DINE24 <billing@dine24.com>"),
	}

	return cfg
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

// MailConfigured reports whether the HTTP mail transport can be used; when
// false the server falls back to the log transport.
func (c Config) MailConfigured() bool {
	return c.MailEndpoint != "" && c.MailAPIKey != ""
}

func getEnv(key string, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
