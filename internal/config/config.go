package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	PostgreSQL PostgreSQLConfig
	Flights    FlightsConfig
	NLU        NLUConfig
	LLM        LLMConfig
	FAQ        FAQConfig
	Scoring    ScoringConfig
	Logging    LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

// PostgreSQLConfig holds PostgreSQL database configuration
type PostgreSQLConfig struct {
	DSN                string
	MaxConnections     int
	MaxIdleConnections int
	Enabled            bool
}

// FlightsConfig holds flight data source configuration
type FlightsConfig struct {
	AirportCode      string
	StatusBoardURL   string
	AviationStackURL string
	AviationStackKey string
	PageSize         int
	Timeout          time.Duration
	CacheTTL         time.Duration
	LookbackWindow   time.Duration
	RecentFallback   time.Duration
	DomesticCities   []string
}

// NLUConfig holds remote intent-extraction provider configuration.
// All providers speak the OpenAI chat-completions dialect.
type NLUConfig struct {
	GroqAPIKey   string
	GroqAPIBase  string
	GroqModel    string
	GroqEnabled  bool
	GeminiAPIKey string
	GeminiBase   string
	GeminiModel  string
	Timeout      time.Duration
	RatePerSec   float64
	Burst        int
}

// LLMConfig holds configuration for answer synthesis, translation,
// transcription and embeddings
type LLMConfig struct {
	APIKey      string
	APIBase     string
	ProjectID   string
	ChatModel   string
	STTModel    string
	EmbedModel  string
	EmbedDim    int
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
	RatePerSec  float64
	Burst       int
	Enabled     bool
}

// FAQConfig holds FAQ source configuration
type FAQConfig struct {
	FilePath            string
	SheetURL            string
	RefreshTTL          time.Duration
	SimilarityThreshold float64
	Timeout             time.Duration
}

// ScoringConfig holds the flight matcher weights. Defaults are the
// empirically tuned values; all of them are overridable.
type ScoringConfig struct {
	Direction      int
	NumberExact    int
	NumberPartial  int
	CityExact      int
	CityPrefix     int
	CitySubstring  int
	MultiToken     int
	SingleToken    int
	NearTime       int
	MidTime        int
	ScopeAlign     int
	CandidateCap   int
	ResultCap      int
	QuickCacheTTL  time.Duration
	AnswerCacheTTL time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	dsn := getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", "")))

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods: getEnv("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS"),
			AllowedHeaders: getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
		},
		PostgreSQL: PostgreSQLConfig{
			DSN:                dsn,
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			Enabled:            dsn != "",
		},
		Flights: FlightsConfig{
			AirportCode:      getEnv("AIRPORT_CODE", "IST"),
			StatusBoardURL:   getEnv("STATUS_BOARD_URL", "https://www.istairport.com/umbraco/api/FlightInfo/GetFlightStatusBoard"),
			AviationStackURL: getEnv("AVIATIONSTACK_URL", "https://api.aviationstack.com/v1/flights"),
			AviationStackKey: getEnv("AVIATIONSTACK_KEY", ""),
			PageSize:         getEnvAsInt("FLIGHTS_PAGE_SIZE", 100),
			Timeout:          getEnvAsDuration("FLIGHTS_TIMEOUT", 8*time.Second),
			CacheTTL:         getEnvAsDuration("FLIGHT_CACHE_TTL", 5*time.Minute),
			LookbackWindow:   getEnvAsDuration("FLIGHT_LOOKBACK", time.Hour),
			RecentFallback:   getEnvAsDuration("FLIGHT_RECENT_FALLBACK", 3*time.Hour),
			DomesticCities:   getEnvAsList("DOMESTIC_CITIES", defaultDomesticCities),
		},
		NLU: NLUConfig{
			GroqAPIKey:   getEnv("GROQ_API_KEY", ""),
			GroqAPIBase:  getEnv("GROQ_API_BASE", "https://api.groq.com/openai/v1"),
			GroqModel:    getEnv("GROQ_MODEL", "llama-3.1-8b-instant"),
			GroqEnabled:  strings.ToLower(getEnv("GROQ_ENABLED", "true")) != "false",
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiBase:   getEnv("GEMINI_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			Timeout:      getEnvAsDuration("NLU_TIMEOUT", 4*time.Second),
			RatePerSec:   getEnvAsFloat("NLU_RATE_PER_SEC", 5),
			Burst:        getEnvAsInt("NLU_BURST", 10),
		},
		LLM: LLMConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			APIBase:     getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ProjectID:   getEnv("OPENAI_PROJECT_ID", ""),
			ChatModel:   getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			STTModel:    getEnv("OPENAI_STT_MODEL", "whisper-1"),
			EmbedModel:  getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
			EmbedDim:    getEnvAsInt("OPENAI_EMBEDDING_DIMENSIONS", 1536),
			Temperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.2),
			MaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 120),
			Timeout:     getEnvAsDuration("OPENAI_TIMEOUT", 10*time.Second),
			RatePerSec:  getEnvAsFloat("OPENAI_RATE_PER_SEC", 5),
			Burst:       getEnvAsInt("OPENAI_BURST", 10),
			Enabled:     getEnv("OPENAI_API_KEY", "") != "",
		},
		FAQ: FAQConfig{
			FilePath:            getEnv("FAQ_FILE", "genelsorular.csv"),
			SheetURL:            getEnv("FAQ_SHEET_URL", ""),
			RefreshTTL:          getEnvAsDuration("FAQ_REFRESH_TTL", time.Hour),
			SimilarityThreshold: getEnvAsFloat("FAQ_SIMILARITY_THRESHOLD", 0.20),
			Timeout:             getEnvAsDuration("FAQ_TIMEOUT", 6*time.Second),
		},
		Scoring: ScoringConfig{
			Direction:      getEnvAsInt("SCORE_DIRECTION", 3),
			NumberExact:    getEnvAsInt("SCORE_NUMBER_EXACT", 6),
			NumberPartial:  getEnvAsInt("SCORE_NUMBER_PARTIAL", 3),
			CityExact:      getEnvAsInt("SCORE_CITY_EXACT", 5),
			CityPrefix:     getEnvAsInt("SCORE_CITY_PREFIX", 3),
			CitySubstring:  getEnvAsInt("SCORE_CITY_SUBSTRING", 1),
			MultiToken:     getEnvAsInt("SCORE_MULTI_TOKEN", 5),
			SingleToken:    getEnvAsInt("SCORE_SINGLE_TOKEN", 2),
			NearTime:       getEnvAsInt("SCORE_NEAR_TIME", 2),
			MidTime:        getEnvAsInt("SCORE_MID_TIME", 1),
			ScopeAlign:     getEnvAsInt("SCORE_SCOPE_ALIGN", 2),
			CandidateCap:   getEnvAsInt("MATCH_CANDIDATE_CAP", 20),
			ResultCap:      getEnvAsInt("MATCH_RESULT_CAP", 6),
			QuickCacheTTL:  getEnvAsDuration("QUICK_CACHE_TTL", 5*time.Minute),
			AnswerCacheTTL: getEnvAsDuration("ANSWER_CACHE_TTL", 24*time.Hour),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

// defaultDomesticCities is the domestic destination set used for scope
// alignment when the deployment does not supply its own.
var defaultDomesticCities = []string{
	"istanbul", "ankara", "izmir", "adana", "antalya", "diyarbakir",
	"trabzon", "kayseri", "gaziantep", "van", "erzurum", "samsun",
	"bodrum", "dalaman", "konya", "malatya",
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration value for %s, using default %s", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
