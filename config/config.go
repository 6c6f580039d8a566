package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/NextMind-AI/rigbot/scheduling"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

type Config struct {
	Port          string
	Env           string
	LogLevel      string
	PublicBaseURL string

	CompletionProvider string
	OpenAIKey          string
	OpenAIModel        string
	OpenAIBaseURL      string
	GeminiKey          string
	GeminiModel        string
	SystemPrompt       string

	GoogleCalendarID      string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	BusinessTimezone   string
	BusinessOpen       string
	BusinessClose      string
	BusinessClosedDays string
	SlotMinutes        int
	SearchDays         int
	SlotLeadTime       time.Duration
	MaxSuggestions     int
	GatewayTimeout     time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	TranscriptTTL time.Duration

	WhatsAppPhone string
	// WidgetOrigins may read and clear transcripts cross-origin.
	WidgetOrigins []string
}

// Load reads .env (if present) and the process environment, then validates
// the result.
func Load() (*Config, error) {
	cfg := Read()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read is Load without validation. Offline runs use it since they need no
// API keys.
func Read() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using system environment variables")
	}

	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "production"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		PublicBaseURL: strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/"),

		CompletionProvider: strings.ToLower(getEnv("COMPLETION_PROVIDER", ProviderOpenAI)),
		OpenAIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:        getEnv("OPENAI_MODEL", "gpt-4o"),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		GeminiKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:        getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		SystemPrompt:       getEnv("SYSTEM_PROMPT", ""),

		GoogleCalendarID:      getEnv("GOOGLE_CALENDAR_ID", "primary"),
		GoogleCredentialsJSON: getEnv("GOOGLE_CREDENTIALS_JSON", ""),
		GoogleCredentialsFile: getEnv("GOOGLE_CREDENTIALS_FILE", ""),

		BusinessTimezone:   getEnv("BUSINESS_TIMEZONE", "America/Santiago"),
		BusinessOpen:       getEnv("BUSINESS_OPEN", "10:00"),
		BusinessClose:      getEnv("BUSINESS_CLOSE", "20:00"),
		BusinessClosedDays: getEnv("BUSINESS_CLOSED_DAYS", ""),
		SlotMinutes:        getEnvInt("SLOT_MINUTES", 30),
		SearchDays:         getEnvInt("SEARCH_DAYS", 7),
		SlotLeadTime:       getEnvDuration("SLOT_LEAD_TIME", 15*time.Minute),
		MaxSuggestions:     getEnvInt("MAX_SUGGESTIONS", 5),
		GatewayTimeout:     getEnvDuration("GATEWAY_TIMEOUT", 12*time.Second),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		TranscriptTTL: getEnvDuration("TRANSCRIPT_TTL", 24*time.Hour),

		WhatsAppPhone: getEnv("WHATSAPP_PHONE", "+56989967350"),
		WidgetOrigins: getEnvOrigins("WIDGET_ORIGINS"),
	}
}

// Validate checks the settings every command needs.
func (c *Config) Validate() error {
	switch c.CompletionProvider {
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return errors.New("OPENAI_API_KEY environment variable is required")
		}
	case ProviderGemini:
		if c.GeminiKey == "" {
			return errors.New("GEMINI_API_KEY environment variable is required")
		}
	default:
		return fmt.Errorf("unknown COMPLETION_PROVIDER %q", c.CompletionProvider)
	}

	if c.GatewayTimeout <= 0 {
		return fmt.Errorf("GATEWAY_TIMEOUT must be positive, got %s", c.GatewayTimeout)
	}
	if c.MaxSuggestions < 1 {
		return fmt.Errorf("MAX_SUGGESTIONS must be positive, got %d", c.MaxSuggestions)
	}

	_, err := c.BusinessCalendar()
	return err
}

// IsDevelopment reports whether ENV selects human-readable logs.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

// TranscriptsEnabled reports whether a Redis address was configured.
func (c *Config) TranscriptsEnabled() bool {
	return c.RedisAddr != ""
}

// BusinessCalendar builds the scheduling calendar from the business settings.
func (c *Config) BusinessCalendar() (scheduling.BusinessCalendar, error) {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return scheduling.BusinessCalendar{}, fmt.Errorf("invalid BUSINESS_TIMEZONE: %w", err)
	}

	bc := scheduling.DefaultBusinessCalendar(loc)
	if bc.Open, err = scheduling.ParseClock(c.BusinessOpen); err != nil {
		return scheduling.BusinessCalendar{}, fmt.Errorf("invalid BUSINESS_OPEN: %w", err)
	}
	if bc.Close, err = scheduling.ParseClock(c.BusinessClose); err != nil {
		return scheduling.BusinessCalendar{}, fmt.Errorf("invalid BUSINESS_CLOSE: %w", err)
	}
	if bc.ClosedDays, err = parseWeekdays(c.BusinessClosedDays); err != nil {
		return scheduling.BusinessCalendar{}, fmt.Errorf("invalid BUSINESS_CLOSED_DAYS: %w", err)
	}
	bc.SlotLength = time.Duration(c.SlotMinutes) * time.Minute
	bc.SearchDays = c.SearchDays
	bc.LeadTime = c.SlotLeadTime

	if err := bc.Validate(); err != nil {
		return scheduling.BusinessCalendar{}, err
	}
	return bc, nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday, "domingo": time.Sunday,
	"mon": time.Monday, "monday": time.Monday, "lunes": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday, "martes": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday, "miercoles": time.Wednesday, "miércoles": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday, "jueves": time.Thursday,
	"fri": time.Friday, "friday": time.Friday, "viernes": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday, "sabado": time.Saturday, "sábado": time.Saturday,
}

// parseWeekdays reads a comma separated list such as "sunday,sat".
func parseWeekdays(s string) ([]time.Weekday, error) {
	var days []time.Weekday
	for _, part := range strings.Split(s, ",") {
		name := strings.ToLower(strings.TrimSpace(part))
		if name == "" {
			continue
		}
		day, ok := weekdayNames[name]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", part)
		}
		days = append(days, day)
	}
	return days, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid integer, using default")
	}
	return defaultValue
}

// getEnvOrigins reads a comma separated list of origins such as
// "https://clinica.example, http://localhost:3000". Entries that are not a
// bare scheme://host[:port] are skipped with a warning.
func getEnvOrigins(key string) []string {
	var origins []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		origin := strings.TrimRight(strings.TrimSpace(part), "/")
		if origin == "" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" || u.RawQuery != "" {
			log.Warn().Str("key", key).Str("value", part).Msg("Invalid origin, skipping")
			continue
		}
		origins = append(origins, strings.ToLower(origin))
	}
	return origins
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Invalid duration, using default")
	}
	return defaultValue
}
