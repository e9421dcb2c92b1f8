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
	ListenAddr  string
	DatabaseURL string

	// worker
	PollInterval  time.Duration
	ScrapeTimeout time.Duration

	// council calendar page
	CouncilCalendarURL string

	// ops UI session cookies (base64). Only the server needs these;
	// call RequireCookieKeys before starting the web UI.
	CookieHashKey  []byte
	CookieBlockKey []byte
}

func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:         getenv("LISTEN_ADDR", ":8080"),
		DatabaseURL:        strings.TrimSpace(os.Getenv("DATABASE_URL")),
		CouncilCalendarURL: getenv("COUNCIL_CALENDAR_URL", "https://www.ardsandnorthdown.gov.uk/resident/bins-recycling/bin-collection-dates"),
	}
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required")
	}

	pollRaw := getenv("WORKER_POLL_SECONDS", "3")
	pollSec, err := strconv.Atoi(pollRaw)
	if err != nil || pollSec < 1 {
		return Config{}, fmt.Errorf("invalid WORKER_POLL_SECONDS %q (want a positive integer)", pollRaw)
	}
	cfg.PollInterval = time.Duration(pollSec) * time.Second

	scrapeRaw := getenv("SCRAPE_TIMEOUT_SECONDS", "15")
	scrapeSec, err := strconv.Atoi(scrapeRaw)
	if err != nil || scrapeSec < 1 {
		return Config{}, fmt.Errorf("invalid SCRAPE_TIMEOUT_SECONDS %q (want a positive integer)", scrapeRaw)
	}
	cfg.ScrapeTimeout = time.Duration(scrapeSec) * time.Second

	// Cookie keys are optional at load time so the worker can run without
	// them; the server validates via RequireCookieKeys.
	if v := strings.TrimSpace(os.Getenv("COOKIE_HASH_KEY")); v != "" {
		cfg.CookieHashKey, err = decodeB64(v)
		if err != nil {
			return Config{}, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv("COOKIE_BLOCK_KEY")); v != "" {
		cfg.CookieBlockKey, err = decodeB64(v)
		if err != nil {
			return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
		}
	}

	return cfg, nil
}

// RequireCookieKeys errors unless both session cookie keys were provided.
func (c Config) RequireCookieKeys() error {
	if len(c.CookieHashKey) == 0 || len(c.CookieBlockKey) == 0 {
		return fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY are required (base64)")
	}
	return nil
}

func decodeB64(s string) ([]byte, error) {
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}

func getenv(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}
