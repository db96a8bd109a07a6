package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	AppSecret                string
	TotalRounds              int
	MaxRoundsPerGame         int
	MaxPlayersPerSession     int
	RoundSeconds             int
	SessionTTLMinutes        int
	SweepIntervalSeconds     int
	JudgeTimeoutSeconds      int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
	OpenAIAPIKey             string
	OpenAIModel              string
	CatAPIURL                string
	CatAPIKey                string
	PlaceholderImageURL      string
}

func Default() Config {
	return Config{
		AppSecret:                "dev-secret-change-me",
		TotalRounds:              5,
		MaxRoundsPerGame:         10,
		MaxPlayersPerSession:     12,
		RoundSeconds:             60,
		SessionTTLMinutes:        120,
		SweepIntervalSeconds:     300,
		JudgeTimeoutSeconds:      20,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
		OpenAIModel:              "gpt-4o-mini",
		CatAPIURL:                "https://api.thecatapi.com/v1/images/search",
		PlaceholderImageURL:      "https://placecats.com/640/480",
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("APP_SECRET"); raw != "" {
		cfg.AppSecret = raw
	}
	if raw := os.Getenv("TOTAL_ROUNDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TotalRounds = value
		}
	}
	if raw := os.Getenv("MAX_ROUNDS_PER_GAME"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxRoundsPerGame = value
		}
	}
	if raw := os.Getenv("MAX_PLAYERS_PER_SESSION"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.MaxPlayersPerSession = value
		}
	}
	if raw := os.Getenv("ROUND_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.RoundSeconds = value
		}
	}
	if raw := os.Getenv("SESSION_TTL_MINUTES"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SessionTTLMinutes = value
		}
	}
	if raw := os.Getenv("SWEEP_INTERVAL_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.SweepIntervalSeconds = value
		}
	}
	if raw := os.Getenv("JUDGE_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.JudgeTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	if raw := os.Getenv("OPENAI_API_KEY"); raw != "" {
		cfg.OpenAIAPIKey = raw
	}
	if raw := os.Getenv("OPENAI_MODEL"); raw != "" {
		cfg.OpenAIModel = raw
	}
	if raw := os.Getenv("CAT_API_URL"); raw != "" {
		cfg.CatAPIURL = raw
	}
	if raw := os.Getenv("CAT_API_KEY"); raw != "" {
		cfg.CatAPIKey = raw
	}
	if raw := os.Getenv("PLACEHOLDER_IMAGE_URL"); raw != "" {
		cfg.PlaceholderImageURL = raw
	}
	return cfg
}
