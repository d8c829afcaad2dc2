// config.go
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI    string
	MongoDBName string
	AuthURL     string
	RabbitURL   string
	Port        string

	SiteTitle   string
	HostVersion string

	LogLevel  string
	LogFormat string

	AuthCacheTTL time.Duration

	DeliveredEmail EmailConfig
	SMTP           SMTPConfig

	// Reversión heredada de "delivered" a "completed" al arrancar. Apagada por defecto.
	LegacyRevertDelivered bool
}

type EmailConfig struct {
	Enabled           bool
	Subject           string
	Heading           string
	AdditionalContent string
	EmailType         string
	ReplyTo           string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Load lee las variables de entorno. Si hay un .env en el directorio actual
// se carga primero; las variables ya definidas tienen prioridad.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		MongoURI:    getEnv("MONGO_URI", "mongodb://host.docker.internal:27017"),
		MongoDBName: getEnv("MONGO_DB_NAME", "order_status_db"),
		AuthURL:     getEnv("AUTH_URL", "http://host.docker.internal:3000"),
		RabbitURL:   getEnv("RABBIT_URL", "amqp://host.docker.internal"),
		Port:        getEnv("PORT", "8080"),

		SiteTitle:   getEnv("SITE_TITLE", "Shop"),
		HostVersion: getEnv("HOST_VERSION", "8.0.0"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		AuthCacheTTL: getEnvDuration("AUTH_CACHE_TTL", time.Minute),

		DeliveredEmail: EmailConfig{
			Enabled:           getEnvBool("EMAIL_DELIVERED_ENABLED", true),
			Subject:           getEnv("EMAIL_DELIVERED_SUBJECT", ""),
			Heading:           getEnv("EMAIL_DELIVERED_HEADING", ""),
			AdditionalContent: getEnv("EMAIL_DELIVERED_ADDITIONAL_CONTENT", ""),
			EmailType:         getEnv("EMAIL_TYPE", "html"),
			ReplyTo:           getEnv("MAIL_REPLY_TO", ""),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			Username: getEnv("SMTP_USER", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("MAIL_FROM", "no-reply@localhost"),
		},

		LegacyRevertDelivered: getEnvBool("LEGACY_REVERT_DELIVERED", false),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	raw := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	switch raw {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return fallback
	}
	return v
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(getEnv(key, "")))
	if err != nil {
		return fallback
	}
	return d
}
