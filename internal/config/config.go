package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string

	// Booking site and institutional SSO endpoints.
	SiteURL    string
	AuthURL    string
	LocationID int

	SSOUsername string
	SSOPassword string

	// Pause between successive confirmed submissions, giving the site's
	// confirmation mailer time to catch up.
	Cooldown time.Duration

	// How often the server command re-runs the whole pipeline.
	RunInterval time.Duration

	// Status front end. Cookie keys are only needed by the server command.
	ListenAddr     string
	CookieHashKey  []byte
	CookieBlockKey []byte
}

func FromEnv() (Config, error) {
	cfg := Config{
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		SiteURL:     getenv("LIBCAL_URL", "https://concordiauniversity.libcal.com"),
		AuthURL:     getenv("LIBCAL_AUTH_URL", "https://fas.concordia.ca"),
		SSOUsername: strings.TrimSpace(os.Getenv("SSO_USERNAME")),
		SSOPassword: os.Getenv("SSO_PASSWORD"),
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
	}
	if cfg.DatabaseURL == "" {
		return cfg, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SSOUsername == "" || cfg.SSOPassword == "" {
		return cfg, fmt.Errorf("SSO_USERNAME and SSO_PASSWORD are required")
	}

	lid, err := strconv.Atoi(getenv("LIBCAL_LOCATION_ID", "2161"))
	if err != nil {
		return cfg, fmt.Errorf("invalid LIBCAL_LOCATION_ID: %w", err)
	}
	cfg.LocationID = lid

	cfg.Cooldown, err = durationEnv("BOOKING_COOLDOWN", 240*time.Second)
	if err != nil {
		return cfg, err
	}
	cfg.RunInterval, err = durationEnv("RUN_INTERVAL", 6*time.Hour)
	if err != nil {
		return cfg, err
	}

	// Optional here; the server command refuses to start without them.
	if v := os.Getenv("COOKIE_HASH_KEY"); v != "" {
		if cfg.CookieHashKey, err = decodeB64(v); err != nil {
			return cfg, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
		}
	}
	if v := os.Getenv("COOKIE_BLOCK_KEY"); v != "" {
		if cfg.CookieBlockKey, err = decodeB64(v); err != nil {
			return cfg, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
		}
	}
	return cfg, nil
}

func (c Config) HasCookieKeys() bool {
	return len(c.CookieHashKey) > 0 && len(c.CookieBlockKey) > 0
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

func durationEnv(k string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s: %q", k, v)
	}
	return d, nil
}

func decodeB64(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
