// Package config provides centralized configuration loaded from environment
// variables. Shared by both cmd/bot and cmd/prayerctl.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// --------------------------------------------------------------------------
// Reference location — origin of the official LUPT timetable
// --------------------------------------------------------------------------

// The London Unified Prayer Timetable is published for the East London
// Mosque area. Used only as the baseline for delta computation, never as
// the observer's location.
const (
	ReferenceLatitude  = 51.5162
	ReferenceLongitude = -0.0650
)

// --------------------------------------------------------------------------
// Config struct — populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// Observer location
	Latitude      float64
	Longitude     float64
	Timezone      string
	LocationLabel string

	// Telegram transport
	BotToken string
	ChatID   int64

	// Timetable source. Empty key means the astronomical fallback path is
	// always taken.
	LUPTAPIKey string
	CachePath  string

	// Liveness server
	Host string
	Port int

	// Outbound HTTP
	RequestTimeout time.Duration
}

// Load reads configuration from environment variables. LATITUDE, LONGITUDE,
// TIMEZONE, BOT_TOKEN and CHAT_ID are required; the process must not run
// with an undefined location or transport.
func Load() (*Config, error) {
	lat, err := requiredFloat("LATITUDE")
	if err != nil {
		return nil, err
	}
	lon, err := requiredFloat("LONGITUDE")
	if err != nil {
		return nil, err
	}

	tz := os.Getenv("TIMEZONE")
	if tz == "" {
		return nil, fmt.Errorf("TIMEZONE must be set (e.g. Europe/London)")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", tz, err)
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN must be set")
	}

	chatID, err := requiredInt64("CHAT_ID")
	if err != nil {
		return nil, err
	}

	return &Config{
		Latitude:      lat,
		Longitude:     lon,
		Timezone:      tz,
		LocationLabel: envOr("LOCATION_LABEL", "Rainham, LDN"),

		BotToken: token,
		ChatID:   chatID,

		LUPTAPIKey: os.Getenv("LUPT_API_KEY"),
		CachePath:  os.Getenv("CACHE_PATH"),

		Host: envOr("HOST", "0.0.0.0"),
		Port: envInt("PORT", 8080),

		RequestTimeout: time.Duration(envInt("REQUEST_TIMEOUT_SECONDS", 10)) * time.Second,
	}, nil
}

// Location resolves the configured IANA zone. Load has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func requiredFloat(key string) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s must be set", key)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func requiredInt64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s must be set", key)
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
