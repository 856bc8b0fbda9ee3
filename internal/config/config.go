package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv             string
	AppAddr            string
	LogLevel           string
	CORSAllowedOrigins []string

	// Storage
	StorageBackend string // file | postgres
	DataDir        string
	ContactsFile   string
	EmailLogFile   string
	TemplatesDir   string
	DatabaseURL    string
	MigrationsDir  string

	// Rate limiting
	RateLimitStore string // memory | redis
	RedisAddr      string
	RedisDB        int
	EmailRateLimit int
	RateWindow     time.Duration

	// Directory and history bounds
	MaxContactsPerOwner int
	EmailLogRetention   int

	// Delivery
	EmailProvider   string // brevo | log
	BrevoAPIKey     string
	BrevoAPIURL     string
	SenderEmail     string
	SenderName      string
	SendTimeout     time.Duration
	StrictTemplates bool

	JWTSigningKey string
	AdminOwnerIDs []int64
}

func Load() (Config, error) {
	c := Config{}

	c.AppEnv = getEnv("APP_ENV", "development")
	c.AppAddr = getEnv("APP_ADDR", ":8080")
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", ""))
	c.CORSAllowedOrigins = splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"))

	c.StorageBackend = strings.ToLower(getEnv("STORAGE_BACKEND", "file"))
	c.DataDir = getEnv("DATA_DIR", "data")
	c.ContactsFile = getEnv("CONTACTS_FILE", filepath.Join(c.DataDir, "clients.json"))
	c.EmailLogFile = getEnv("EMAIL_LOG_FILE", filepath.Join(c.DataDir, "email_log.json"))
	c.TemplatesDir = getEnv("TEMPLATES_DIR", "templates")
	c.DatabaseURL = getEnv("DATABASE_URL", "")
	c.MigrationsDir = getEnv("MIGRATIONS_DIR", "./migrations")

	c.RateLimitStore = strings.ToLower(getEnv("RATE_LIMIT_STORE", "memory"))
	c.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	c.RedisDB = getInt("REDIS_DB", 0)
	c.EmailRateLimit = getInt("EMAIL_RATE_LIMIT", 10)
	c.RateWindow = getDuration("EMAIL_RATE_WINDOW", time.Minute)

	c.MaxContactsPerOwner = getInt("MAX_CLIENTS_PER_USER", 100)
	c.EmailLogRetention = getInt("EMAIL_LOG_RETENTION", 1000)

	c.EmailProvider = strings.ToLower(getEnv("EMAIL_PROVIDER", "brevo"))
	c.BrevoAPIKey = getEnv("BREVO_API_KEY", "")
	c.BrevoAPIURL = getEnv("BREVO_API_URL", "https://api.brevo.com/v3/smtp/email")
	c.SenderEmail = getEnv("DEFAULT_SENDER_EMAIL", "noreply@example.com")
	c.SenderName = getEnv("DEFAULT_SENDER_NAME", "Bot Mailer")
	c.SendTimeout = getDuration("SEND_TIMEOUT", 30*time.Second)
	c.StrictTemplates = getBool("STRICT_TEMPLATES", false)

	c.JWTSigningKey = getEnv("JWT_SIGNING_KEY", "dev-insecure-change-this")
	ids, err := parseOwnerIDs(getEnv("ADMIN_OWNER_IDS", ""))
	if err != nil {
		return Config{}, err
	}
	c.AdminOwnerIDs = ids

	if c.StorageBackend != "file" && c.StorageBackend != "postgres" {
		return Config{}, fmt.Errorf("unsupported STORAGE_BACKEND %q", c.StorageBackend)
	}
	if c.StorageBackend == "postgres" && c.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required for the postgres storage backend")
	}
	if c.EmailRateLimit <= 0 {
		c.EmailRateLimit = 10
	}
	if c.MaxContactsPerOwner <= 0 {
		c.MaxContactsPerOwner = 100
	}
	if c.EmailLogRetention <= 0 {
		c.EmailLogRetention = 1000
	}

	return c, nil
}

// IsAdmin reports whether the owner is listed in ADMIN_OWNER_IDS.
func (c Config) IsAdmin(owner int64) bool {
	for _, id := range c.AdminOwnerIDs {
		if id == owner {
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err == nil && d > 0 {
			return d
		}
	}
	return def
}

func getBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return def
}

func parseOwnerIDs(s string) ([]int64, error) {
	var ids []int64
	for _, p := range splitCSV(s) {
		if p == "*" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_OWNER_IDS entry %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	if len(res) == 0 {
		return []string{"*"}
	}
	return res
}

func (c Config) String() string {
	return fmt.Sprintf("env=%s addr=%s storage=%s ratelimit=%s/%d provider=%s", c.AppEnv, c.AppAddr, c.StorageBackend, c.RateLimitStore, c.EmailRateLimit, c.EmailProvider)
}
