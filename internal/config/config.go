// Package config loads pipeline configuration from environment variables
// (with an optional .env file for local development), mirroring the
// teacher's env-first configuration loader.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/aristath/newsintel/internal/domain"
)

// SourceTTLs holds the per-source-type cache TTL overrides (spec.md 6).
type SourceTTLs struct {
	News       time.Duration
	Government time.Duration
	API        time.Duration
	Social     time.Duration
	Financial  time.Duration
}

// ForType resolves the TTL for a source type, falling back to the built-in
// default table in domain.TTLForSourceType when unset.
func (t SourceTTLs) ForType(st domain.SourceType) time.Duration {
	switch st {
	case domain.SourceTypeNews:
		if t.News > 0 {
			return t.News
		}
	case domain.SourceTypeGovernment:
		if t.Government > 0 {
			return t.Government
		}
	case domain.SourceTypeAPI:
		if t.API > 0 {
			return t.API
		}
	case domain.SourceTypeSocial:
		if t.Social > 0 {
			return t.Social
		}
	case domain.SourceTypeFinancial:
		if t.Financial > 0 {
			return t.Financial
		}
	}
	return domain.TTLForSourceType(st)
}

// DedupConfig holds the semantic-deduplication thresholds and rolling
// window bounds (spec.md 6).
type DedupConfig struct {
	WindowHours      int
	MaxArticles      int
	ThresholdExact   float64
	ThresholdNear    float64
	ThresholdRelated float64
}

// LearningMode selects how aggressively the adaptive learning system is
// allowed to act on observed outcomes.
type LearningMode string

const (
	LearningOff    LearningMode = "off"
	LearningShadow LearningMode = "shadow"
	LearningActive LearningMode = "active"
)

// LearningConfig controls the adaptive learning orchestrator.
type LearningConfig struct {
	Mode                      LearningMode
	CycleInterval             time.Duration
	ReputationUpdateThreshold int
}

// LLMConfig controls the LLM capability and its key-rotation manager.
type LLMConfig struct {
	Enabled bool
	ModelID string
	MaxKeys int
}

// Config is the full set of externally-provided pipeline configuration
// (spec.md 6).
type Config struct {
	DataDir        string
	LogLevel       string
	Port           int
	DevMode        bool
	Concurrency    int // default per-source concurrency, auto-tuned at runtime
	NetworkTimeout time.Duration
	LLMTimeout     time.Duration

	SourceTTLs     SourceTTLs
	Dedup          DedupConfig
	ScoringProfile domain.ScoringProfile
	Learning       LearningConfig
	LLM            LLMConfig

	RedisAddr   string
	PostgresDSN string
	SQLitePath  string
	S3Bucket    string
}

// Load reads configuration from the environment, loading a local .env file
// first if one is present (godotenv.Load() silently no-ops when missing).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := getEnv("NEWSINTEL_DATA_DIR", "./data")

	cfg := &Config{
		DataDir:        dataDir,
		LogLevel:       getEnv("NEWSINTEL_LOG_LEVEL", "info"),
		Port:           getEnvInt("NEWSINTEL_PORT", 8080),
		DevMode:        getEnvBool("NEWSINTEL_DEV_MODE", false),
		Concurrency:    getEnvInt("NEWSINTEL_CONCURRENCY", 5),
		NetworkTimeout: getEnvDuration("NEWSINTEL_NETWORK_TIMEOUT", 10*time.Second),
		LLMTimeout:     getEnvDuration("NEWSINTEL_LLM_TIMEOUT", 30*time.Second),

		SourceTTLs: SourceTTLs{
			News:       getEnvDuration("NEWSINTEL_TTL_NEWS", 15*time.Minute),
			Government: getEnvDuration("NEWSINTEL_TTL_GOVERNMENT", 2*time.Hour),
			API:        getEnvDuration("NEWSINTEL_TTL_API", 30*time.Minute),
			Social:     getEnvDuration("NEWSINTEL_TTL_SOCIAL", 5*time.Minute),
			Financial:  getEnvDuration("NEWSINTEL_TTL_FINANCIAL", 30*time.Minute),
		},

		Dedup: DedupConfig{
			WindowHours:      getEnvInt("NEWSINTEL_DEDUP_WINDOW_HOURS", 48),
			MaxArticles:      getEnvInt("NEWSINTEL_DEDUP_MAX_ARTICLES", 50000),
			ThresholdExact:   getEnvFloat("NEWSINTEL_DEDUP_THRESHOLD_EXACT", 0.95),
			ThresholdNear:    getEnvFloat("NEWSINTEL_DEDUP_THRESHOLD_NEAR", 0.85),
			ThresholdRelated: getEnvFloat("NEWSINTEL_DEDUP_THRESHOLD_RELATED", 0.70),
		},

		ScoringProfile: domain.ScoringProfile(getEnv("NEWSINTEL_SCORING_PROFILE", string(domain.ProfileBalanced))),

		Learning: LearningConfig{
			Mode:                      LearningMode(getEnv("NEWSINTEL_LEARNING_MODE", string(LearningShadow))),
			CycleInterval:             getEnvDuration("NEWSINTEL_LEARNING_CYCLE_SECONDS", time.Hour),
			ReputationUpdateThreshold: getEnvInt("NEWSINTEL_LEARNING_REPUTATION_THRESHOLD", 10),
		},

		LLM: LLMConfig{
			Enabled: getEnvBool("NEWSINTEL_LLM_ENABLED", false),
			ModelID: getEnv("NEWSINTEL_LLM_MODEL_ID", ""),
			MaxKeys: getEnvInt("NEWSINTEL_LLM_MAX_KEYS", 1),
		},

		RedisAddr:   getEnv("NEWSINTEL_REDIS_ADDR", "localhost:6379"),
		PostgresDSN: getEnv("NEWSINTEL_POSTGRES_DSN", ""),
		SQLitePath:  getEnv("NEWSINTEL_SQLITE_PATH", dataDir+"/newsintel.db"),
		S3Bucket:    getEnv("NEWSINTEL_S3_BUCKET", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be >= 1, got %d", c.Concurrency)
	}
	if c.Dedup.ThresholdExact <= c.Dedup.ThresholdNear || c.Dedup.ThresholdNear <= c.Dedup.ThresholdRelated {
		return fmt.Errorf("dedup thresholds must satisfy exact > near > related")
	}
	switch c.Learning.Mode {
	case LearningOff, LearningShadow, LearningActive:
	default:
		return fmt.Errorf("unknown learning mode %q", c.Learning.Mode)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	// Accept either a Go duration string ("90s") or a bare integer number
	// of seconds, matching how the spec's config enumerates durations.
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
