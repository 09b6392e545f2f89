package config // package config loads application configuration from environment variables

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env            string        // application environment (development, production)
	Port           string        // HTTP port to listen on
	DBUser         string        // database username
	DBPass         string        // database password (optional)
	DBHost         string        // database host address
	DBPort         string        // database port number
	DBName         string        // database name
	DBMaxOpenConns int           // connection pool size
	DBTimeout      time.Duration // upper bound for a single data-access call, pool wait included
	MigrateOnStart bool          // apply embedded migrations before serving
	JWTSecret      string        // secret used to sign session tokens
	SessionTTL     time.Duration // session token and cookie lifetime
	BcryptCost     int           // bcrypt cost for password hashing
	CookieName     string        // name of the session cookie
	CookieSecure   bool          // mark the session cookie Secure
	CookieSameSite http.SameSite // SameSite mode of the session cookie
	CORSOrigins    []string      // allowed browser origins
	RabbitMQURL    string        // broker for domain events; empty disables publishing
	RatingQueue    string        // queue receiving rating.submitted events
	LogLevel       string        // logrus level name
}

// loader collects every missing or malformed variable so that startup
// reports all of them at once.
type loader struct {
	lookup func(string) (string, bool)
	errs   []string
}

// Load reads configuration values from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration through lookup. Required variables that
// are unset or empty, and values that fail to parse, are returned as a
// single error; JWT_SECRET never falls back to a default.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	l := &loader{lookup: lookup}
	env := l.str("APP_ENV", "development")
	cfg := Config{
		Env:            env,
		Port:           l.str("APP_PORT", "8080"),
		DBUser:         l.must("DB_USER"),
		DBPass:         l.str("DB_PASS", ""),
		DBHost:         l.must("DB_HOST"),
		DBPort:         l.str("DB_PORT", "3306"),
		DBName:         l.must("DB_NAME"),
		DBMaxOpenConns: l.num("DB_MAX_OPEN_CONNS", 10),
		DBTimeout:      l.dur("DB_TIMEOUT", 5*time.Second),
		MigrateOnStart: l.flag("MIGRATE_ON_START", true),
		JWTSecret:      l.must("JWT_SECRET"),
		SessionTTL:     l.dur("SESSION_TTL", 7*24*time.Hour),
		BcryptCost:     l.num("BCRYPT_COST", 10),
		CookieName:     l.str("SESSION_COOKIE_NAME", "jwt"),
		CookieSecure:   l.flag("COOKIE_SECURE", env == "production"),
		CookieSameSite: l.sameSite("COOKIE_SAMESITE", http.SameSiteStrictMode),
		CORSOrigins:    splitList(l.str("CORS_ORIGINS", "http://localhost:5173")),
		RabbitMQURL:    l.str("RABBITMQ_URL", ""),
		RatingQueue:    l.str("RATING_QUEUE", "rating.submitted"),
		LogLevel:       l.str("LOG_LEVEL", "info"),
	}
	if cfg.SessionTTL <= 0 {
		l.errs = append(l.errs, "SESSION_TTL must be positive")
	}
	if cfg.DBTimeout <= 0 {
		l.errs = append(l.errs, "DB_TIMEOUT must be positive")
	}
	if len(l.errs) > 0 {
		sort.Strings(l.errs)
		return Config{}, fmt.Errorf("config: %s", strings.Join(l.errs, "; "))
	}
	return cfg, nil
}

// must retrieves the value of a required environment variable.
func (l *loader) must(key string) string {
	v, ok := l.lookup(key)
	if !ok || strings.TrimSpace(v) == "" {
		l.errs = append(l.errs, "missing required env var: "+key)
		return ""
	}
	return v
}

func (l *loader) str(key, def string) string {
	if v, ok := l.lookup(key); ok && v != "" {
		return v
	}
	return def
}

func (l *loader) num(key string, def int) int {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("invalid int for %s: %q", key, v))
		return def
	}
	return n
}

func (l *loader) dur(key string, def time.Duration) time.Duration {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("invalid duration for %s: %q", key, v))
		return def
	}
	return d
}

func (l *loader) flag(key string, def bool) bool {
	v, ok := l.lookup(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		l.errs = append(l.errs, fmt.Sprintf("invalid bool for %s: %q", key, v))
		return def
	}
	return b
}

func (l *loader) sameSite(key string, def http.SameSite) http.SameSite {
	switch strings.ToLower(l.str(key, "")) {
	case "":
		return def
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	}
	l.errs = append(l.errs, key+" must be strict, lax or none")
	return def
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
