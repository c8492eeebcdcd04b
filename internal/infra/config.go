package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv   string
	Port     string
	LogLevel string

	GeminiAPIKey     string
	GeminiImageModel string
	GeminiChatModel  string
	ImagenModel      string

	ReplicateAPIToken string
	ReplicateModel    string

	PollinationsBaseURL string
	InlineRemoteImages  bool

	// ProviderSubstitutions maps a provider id to the provider that stands in
	// for it when it cannot run (for example nanobanana=turbo without a key).
	ProviderSubstitutions map[string]string
	BaselineProvider      string
	ProceduralFallback    bool
	MaxAttempts           int
	ProviderTimeout       time.Duration
	GenerationBudget      time.Duration
	BackoffBase           time.Duration

	DefaultLocale      string
	CORSAllowedOrigins []string
	RateLimitPerMin    int
	GeoIPDBPath        string
	MaxBodyBytes       int64

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:              getEnv("APP_ENV", "development"),
		Port:                getEnv("PORT", "3000"),
		LogLevel:            strings.ToLower(os.Getenv("LOG_LEVEL")),
		GeminiAPIKey:        strings.TrimSpace(getEnv("GEMINI_API_KEY", os.Getenv("GOOGLE_API_KEY"))),
		GeminiImageModel:    getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image"),
		GeminiChatModel:     getEnv("GEMINI_CHAT_MODEL", "gemini-2.5-flash"),
		ImagenModel:         getEnv("IMAGEN_MODEL", "imagen-3.0-generate-002"),
		ReplicateAPIToken:   strings.TrimSpace(os.Getenv("REPLICATE_API_TOKEN")),
		ReplicateModel:      getEnv("REPLICATE_MODEL", "black-forest-labs/flux-schnell"),
		PollinationsBaseURL: getEnv("POLLINATIONS_BASE_URL", "https://image.pollinations.ai"),
		InlineRemoteImages:  getEnvBool("INLINE_REMOTE_IMAGES", false),
		BaselineProvider:    strings.ToLower(getEnv("BASELINE_PROVIDER", "flux")),
		ProceduralFallback:  getEnvBool("PROCEDURAL_FALLBACK", true),
		MaxAttempts:         clamp(getEnvInt("MAX_ATTEMPTS", 2), 1, 3),
		ProviderTimeout:     time.Second * time.Duration(getEnvInt("PROVIDER_TIMEOUT_SECONDS", 15)),
		GenerationBudget:    time.Second * time.Duration(getEnvInt("GENERATION_BUDGET_SECONDS", 25)),
		BackoffBase:         time.Millisecond * time.Duration(getEnvInt("BACKOFF_BASE_MS", 1000)),
		DefaultLocale:       getEnv("DEFAULT_LOCALE", "ja"),
		CORSAllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		RateLimitPerMin:     getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		GeoIPDBPath:         os.Getenv("GEOIP_DB_PATH"),
		MaxBodyBytes:        int64(getEnvInt("MAX_BODY_BYTES", 10<<20)),
		HTTPReadTimeout:     time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout:    time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 35)),
		HTTPIdleTimeout:     time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	subs, err := ParseSubstitutions(getEnv("PROVIDER_SUBSTITUTIONS", "nanobanana=turbo"))
	if err != nil {
		return nil, err
	}
	cfg.ProviderSubstitutions = subs

	if cfg.ProviderTimeout <= 0 {
		return nil, fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive")
	}
	if cfg.GenerationBudget < cfg.ProviderTimeout {
		return nil, fmt.Errorf("GENERATION_BUDGET_SECONDS must not be shorter than PROVIDER_TIMEOUT_SECONDS")
	}
	if cfg.BackoffBase < 0 {
		return nil, fmt.Errorf("BACKOFF_BASE_MS must not be negative")
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive")
	}

	return cfg, nil
}

// ParseSubstitutions parses "from=to,from2=to2" pairs. Ids are lower-cased.
// The value "none" disables substitution.
func ParseSubstitutions(raw string) (map[string]string, error) {
	out := make(map[string]string)
	if strings.EqualFold(strings.TrimSpace(raw), "none") {
		return out, nil
	}
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		from, to, ok := strings.Cut(pair, "=")
		from = strings.ToLower(strings.TrimSpace(from))
		to = strings.ToLower(strings.TrimSpace(to))
		if !ok || from == "" || to == "" {
			return nil, fmt.Errorf("PROVIDER_SUBSTITUTIONS: malformed pair %q", pair)
		}
		if from == to {
			return nil, fmt.Errorf("PROVIDER_SUBSTITUTIONS: %q substitutes itself", from)
		}
		out[from] = to
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
