package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port string

	LogLevel string
	Env      string

	// DefaultTenant is the slug served when a hostname carries no usable
	// subdomain (bare domain, localhost, reserved label).
	DefaultTenant string

	// TenantAliases maps legacy short slugs to canonical ones,
	// e.g. "zjk=zaitullahk,acme=acme-corp".
	TenantAliases map[string]string

	// SessionTTL is the idle lifetime of a session. Validating a session
	// slides the deadline forward; an untouched session expires.
	SessionTTL time.Duration

	// SeedDemoData loads the demo tenant/users at startup. Development only.
	SeedDemoData bool
}

func LoadConfig() (*Config, error) {
	// .env is optional — absence is the normal production case.
	_ = godotenv.Load()

	return &Config{
		Port:          GetEnv("PORT", "8080"),
		Env:           GetEnv("ENV", "development"),
		LogLevel:      GetEnv("LOG_LEVEL", "info"),
		DefaultTenant: GetEnv("DEFAULT_TENANT", "qially"),
		TenantAliases: parseAliases(GetEnv("TENANT_ALIASES", "zjk=zaitullahk")),
		SessionTTL:    getDuration("SESSION_TTL", 24*time.Hour),
		SeedDemoData:  getBool("SEED_DEMO_DATA", false),
	}, nil
}

func GetEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// parseAliases turns "short=canonical,short2=canonical2" into a map.
// Malformed entries are skipped rather than failing startup.
func parseAliases(raw string) map[string]string {
	aliases := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		short, canonical, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || short == "" || canonical == "" {
			continue
		}
		aliases[strings.ToLower(short)] = strings.ToLower(canonical)
	}
	return aliases
}
