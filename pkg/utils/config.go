package utils

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Session   SessionConfig
	Email     EmailConfig
	OTP       OTPConfig
	Admin     AdminConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name            string
	Port            string
	Debug           bool
	LogPath         string
	AllowedOrigins  []string
	TrustedProxies  []string // peers whose forwarding headers are honored
	CleanupInterval int      // minutes
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	Secret       string
	TTLHours     int
	CookieSecure bool
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// IsConfigured reports whether every SMTP setting needed for delivery is present.
func (c EmailConfig) IsConfigured() bool {
	return c.Host != "" && c.Port > 0 && c.User != "" && c.Password != "" && c.From != ""
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

type AdminConfig struct {
	Emails []string
}

type StorageConfig struct {
	Bucket             string
	Region             string
	EndpointURL        string
	AccessKeyID        string
	SecretAccessKey    string
	UploadURLTTLMinute int
}

// IsConfigured reports whether an object storage bucket is available.
func (c StorageConfig) IsConfigured() bool {
	return c.Bucket != ""
}

type RedisConfig struct {
	URL string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "consultancy-cms")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("SESSION_TTL_HOURS", 24*7)
	viper.SetDefault("COOKIE_SECURE", false)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("AWS_REGION", "us-east-1")
	viper.SetDefault("UPLOAD_URL_TTL_MINUTES", 15)
	viper.SetDefault("RATE_LIMIT_RPS", 1)
	viper.SetDefault("RATE_LIMIT_BURST", 5)
	viper.SetDefault("ALLOWED_ORIGINS", "*")
	viper.SetDefault("CLEANUP_INTERVAL_MINUTES", 30)

	// .env is optional, the process environment always wins
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:            viper.GetString("APP_NAME"),
			Port:            viper.GetString("PORT"),
			Debug:           viper.GetBool("DEBUG"),
			LogPath:         viper.GetString("LOG_PATH"),
			AllowedOrigins:  SplitList(viper.GetString("ALLOWED_ORIGINS")),
			TrustedProxies:  SplitList(viper.GetString("TRUSTED_PROXIES")),
			CleanupInterval: viper.GetInt("CLEANUP_INTERVAL_MINUTES"),
		},
		Database: DatabaseConfig{
			URL:      viper.GetString("DATABASE_URL"),
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			Secret:       viper.GetString("SESSION_SECRET"),
			TTLHours:     viper.GetInt("SESSION_TTL_HOURS"),
			CookieSecure: viper.GetBool("COOKIE_SECURE"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: viper.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        viper.GetInt("OTP_LENGTH"),
		},
		Admin: AdminConfig{
			Emails: NormalizeEmails(SplitList(viper.GetString("ADMIN_EMAILS"))),
		},
		Storage: StorageConfig{
			Bucket:             viper.GetString("S3_BUCKET"),
			Region:             viper.GetString("AWS_REGION"),
			EndpointURL:        viper.GetString("AWS_ENDPOINT_URL"),
			AccessKeyID:        viper.GetString("AWS_ACCESS_KEY_ID"),
			SecretAccessKey:    viper.GetString("AWS_SECRET_ACCESS_KEY"),
			UploadURLTTLMinute: viper.GetInt("UPLOAD_URL_TTL_MINUTES"),
		},
		Redis: RedisConfig{
			URL: viper.GetString("REDIS_URL"),
		},
		RateLimit: RateLimitConfig{
			RPS:   viper.GetFloat64("RATE_LIMIT_RPS"),
			Burst: viper.GetInt("RATE_LIMIT_BURST"),
		},
	}

	return config, nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NormalizeEmails lowercases and trims every address.
func NormalizeEmails(emails []string) []string {
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			out = append(out, e)
		}
	}
	return out
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
