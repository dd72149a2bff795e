package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	ServerAddr  string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int

	RedisAddr     string
	RedisPassword string

	Gateway GatewayConfig
	Email   EmailConfig
	Admin   AdminConfig

	BookingRatePerSecond  float64
	BookingRateBurst      int
	CallbackRatePerSecond float64
	CallbackRateBurst     int
}

// GatewayConfig carries the shared secret used to verify payment
// callbacks from the external gateway.
type GatewayConfig struct {
	SignatureSecret string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	AdminAddress string
}

// AdminConfig gates the administrative endpoints. TokenHash is a bcrypt
// hash of the bearer token; an empty hash disables the admin surface.
type AdminConfig struct {
	TokenHash string
}

// Load reads configuration from environment variables, an optional .env
// file, and an optional waypost.yaml in the working directory.
func Load() Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("waypost")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.ReadInConfig()

	v.SetDefault("APP_SERVICE", "waypost")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("SERVER_ADDR", ":8080")
	v.SetDefault("OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("DATABASE_TYPE", "postgres")
	v.SetDefault("DATABASE_HOST", "localhost")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("DATABASE_NAME", "waypost")
	v.SetDefault("DATABASE_USER", "postgres")
	v.SetDefault("DATABASE_SSLMODE", "disable")
	v.SetDefault("DATABASE_MAX_IDLE_CONN", 5)
	v.SetDefault("DATABASE_MAX_OPEN_CONN", 25)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", 300)
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("BOOKING_RATE_PER_SECOND", 5.0)
	v.SetDefault("BOOKING_RATE_BURST", 10)
	v.SetDefault("CALLBACK_RATE_PER_SECOND", 10.0)
	v.SetDefault("CALLBACK_RATE_BURST", 20)

	return Config{
		AppName:           v.GetString("APP_SERVICE"),
		AppVersion:        v.GetString("APP_VERSION"),
		Environment:       v.GetString("ENVIRONMENT"),
		ServerAddr:        v.GetString("SERVER_ADDR"),
		OTLPEndpoint:      v.GetString("OTLP_ENDPOINT"),
		DBType:            v.GetString("DATABASE_TYPE"),
		DBHost:            v.GetString("DATABASE_HOST"),
		DBPort:            v.GetString("DATABASE_PORT"),
		DBName:            v.GetString("DATABASE_NAME"),
		DBUser:            v.GetString("DATABASE_USER"),
		DBPassword:        v.GetString("DATABASE_PASSWORD"),
		DBSSLMode:         v.GetString("DATABASE_SSLMODE"),
		DBMaxIdleConn:     v.GetInt("DATABASE_MAX_IDLE_CONN"),
		DBMaxOpenConn:     v.GetInt("DATABASE_MAX_OPEN_CONN"),
		DBConnMaxLifetime: v.GetInt("DATABASE_CONN_MAX_LIFETIME"),
		RedisAddr:         strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword:     v.GetString("REDIS_PASSWORD"),
		Gateway: GatewayConfig{
			SignatureSecret: strings.TrimSpace(v.GetString("GATEWAY_SIGNATURE_SECRET")),
		},
		Email: EmailConfig{
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			SMTPFrom:     v.GetString("SMTP_FROM"),
			AdminAddress: v.GetString("ADMIN_EMAIL"),
		},
		Admin: AdminConfig{
			TokenHash: strings.TrimSpace(v.GetString("ADMIN_TOKEN_HASH")),
		},
		BookingRatePerSecond:  v.GetFloat64("BOOKING_RATE_PER_SECOND"),
		BookingRateBurst:      v.GetInt("BOOKING_RATE_BURST"),
		CallbackRatePerSecond: v.GetFloat64("CALLBACK_RATE_PER_SECOND"),
		CallbackRateBurst:     v.GetInt("CALLBACK_RATE_BURST"),
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}
