package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Provider exposes application configuration through getters so handlers and
// services can depend on an interface that is trivial to fake in tests.
type Provider interface {
	GetAppAddr() string
	GetAppBaseURL() string
	IsDebug() bool
	GetSessionSecret() string
	GetAuthCallbackURL() string
	GetVerifyRedirectURL() string
	GetSocialAuthURL() string
	GetSubmitTimeout() time.Duration
	GetFormGateway() string

	GetDBDriver() string
	GetDBDSN() string
	GetSurrealURL() string
	GetDBNs() string
	GetDBDb() string
	GetDBUser() string
	GetDBPass() string

	GetEmailProvider() string
	GetEmailAPIKey() string
	GetEmailSender() string
	GetContactInbox() string
	GetContactArchiveDir() string

	GetAdminAPIToken() string

	GetTracingEnabled() bool
	GetZipkinURL() string
}

// Config holds all configuration for the application.
type Config struct {
	AppAddr           string
	AppBaseURL        string
	Debug             bool
	SessionSecret     string
	AuthCallbackURL   string
	VerifyRedirectURL string
	SocialAuthURL     string
	SubmitTimeout     time.Duration
	FormGateway       string

	DBDriver   string
	DBDSN      string
	SurrealURL string
	DBNs       string
	DBDb       string
	DBUser     string
	DBPass     string

	EmailProvider     string
	EmailAPIKey       string
	EmailSender       string
	ContactInbox      string
	ContactArchiveDir string

	AdminAPIToken string

	TracingEnabled bool
	ZipkinURL      string
}

// ErrMissingSessionSecret is returned by Validate when SESSION_SECRET is unset.
var ErrMissingSessionSecret = errors.New("SESSION_SECRET must be set")

// New loads configuration from environment variables, reading a .env file first
// when one is present.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only.
func FromEnv() *Config {
	return &Config{
		AppAddr:           getenv("APP_ADDR", ":8080"),
		AppBaseURL:        strings.TrimRight(getenv("APP_BASE_URL", "http://localhost:8080"), "/"),
		Debug:             getbool("APP_DEBUG", false),
		SessionSecret:     os.Getenv("SESSION_SECRET"),
		AuthCallbackURL:   getenv("AUTH_CALLBACK_URL", "/"),
		VerifyRedirectURL: getenv("VERIFY_REDIRECT_URL", "/books"),
		SocialAuthURL:     os.Getenv("SOCIAL_AUTH_URL"),
		SubmitTimeout:     getduration("SUBMIT_TIMEOUT", 10*time.Second),
		FormGateway:       getenv("FORM_GATEWAY", "local"),

		DBDriver:   getenv("DB_DRIVER", "sqlite"),
		DBDSN:      getenv("DB_DSN", "file:portfolio.db?cache=shared"),
		SurrealURL: os.Getenv("SURREAL_URL"),
		DBNs:       os.Getenv("SURREAL_NS"),
		DBDb:       os.Getenv("SURREAL_DB"),
		DBUser:     os.Getenv("SURREAL_USER"),
		DBPass:     os.Getenv("SURREAL_PASS"),

		EmailProvider:     getenv("EMAIL_PROVIDER", "log"),
		EmailAPIKey:       os.Getenv("EMAIL_API_KEY"),
		EmailSender:       os.Getenv("EMAIL_SENDER"),
		ContactInbox:      os.Getenv("CONTACT_INBOX"),
		ContactArchiveDir: getenv("CONTACT_ARCHIVE_DIR", "data/contact"),

		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),

		TracingEnabled: getbool("PUBSUB_TRACING_ENABLED", false),
		ZipkinURL:      getenv("PUBSUB_TRACING_ZIPKIN_URL", "http://localhost:9411/api/v2/spans"),
	}
}

// Validate reports configuration that would make the server unusable.
func (c *Config) Validate() error {
	if c.SessionSecret == "" {
		return ErrMissingSessionSecret
	}
	if c.DBDriver == "surreal" && (c.SurrealURL == "" || c.DBNs == "" || c.DBDb == "") {
		return errors.New("SURREAL_URL, SURREAL_NS and SURREAL_DB are required when DB_DRIVER=surreal")
	}
	return nil
}

func (c *Config) GetAppAddr() string { return c.AppAddr }
func (c *Config) GetAppBaseURL() string { return c.AppBaseURL }
func (c *Config) IsDebug() bool { return c.Debug }
func (c *Config) GetSessionSecret() string { return c.SessionSecret }
func (c *Config) GetAuthCallbackURL() string { return c.AuthCallbackURL }
func (c *Config) GetVerifyRedirectURL() string { return c.VerifyRedirectURL }
func (c *Config) GetSocialAuthURL() string { return c.SocialAuthURL }
func (c *Config) GetSubmitTimeout() time.Duration { return c.SubmitTimeout }
func (c *Config) GetFormGateway() string { return c.FormGateway }
func (c *Config) GetDBDriver() string { return c.DBDriver }
func (c *Config) GetDBDSN() string { return c.DBDSN }
func (c *Config) GetSurrealURL() string { return c.SurrealURL }
func (c *Config) GetDBNs() string { return c.DBNs }
func (c *Config) GetDBDb() string { return c.DBDb }
func (c *Config) GetDBUser() string { return c.DBUser }
func (c *Config) GetDBPass() string { return c.DBPass }
func (c *Config) GetEmailProvider() string { return c.EmailProvider }
func (c *Config) GetEmailAPIKey() string { return c.EmailAPIKey }
func (c *Config) GetEmailSender() string { return c.EmailSender }
func (c *Config) GetContactInbox() string { return c.ContactInbox }
func (c *Config) GetContactArchiveDir() string { return c.ContactArchiveDir }
func (c *Config) GetAdminAPIToken() string { return c.AdminAPIToken }
func (c *Config) GetTracingEnabled() bool { return c.TracingEnabled }
func (c *Config) GetZipkinURL() string { return c.ZipkinURL }

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getbool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getduration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}
