package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GCPProjectID string
	GCPLocation  string
	ModelName    string

	// Hard deadline on a single reply-generation call; timeout is treated
	// as an adapter failure and degrades to the fallback reply.
	ModelTimeout time.Duration

	StorageBackend string // "memory" or "firestore"
	UseMockLLM     bool   // true = use mock even on GCP

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getSecondsEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		log.Printf("ignoring invalid %s=%q", key, v)
		return def
	}
	return time.Duration(secs) * time.Second
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("CALMLINE_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("CALMLINE_PORT", "8080"),

		GCPProjectID: getEnv("CALMLINE_GCP_PROJECT", ""),
		GCPLocation:  getEnv("CALMLINE_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("CALMLINE_MODEL_NAME", "gemini-2.5-flash"),
		ModelTimeout: getSecondsEnv("CALMLINE_MODEL_TIMEOUT_SECONDS", 30*time.Second),

		StorageBackend: getEnv("CALMLINE_STORAGE_BACKEND", "memory"),
		UseMockLLM:     getBoolEnv("CALMLINE_USE_MOCK_LLM", mode == ModeLocal),

		TwilioAccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioFromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("CALMLINE_GCP_PROJECT must be set in gcp mode")
	}

	return cfg
}
