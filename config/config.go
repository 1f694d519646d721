// Package config loads service settings from the environment (and .env).
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"phishing-detector/features"
	"phishing-detector/logger"
)

type Config struct {
	Port string

	Features features.Config

	ModelPath     string
	ModelEndpoint string
	ModelTimeout  time.Duration
	Threshold     float64

	RedisAddr   string
	RedisKey    string
	RedisLogMax int64

	Log logger.Options
}

// Load reads .env when present, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds a Config from environment variables only.
func FromEnv() (Config, error) {
	var errs []string
	fail := func(key string, err error) {
		errs = append(errs, fmt.Sprintf("%s: %v", key, err))
	}

	fc := features.DefaultConfig()
	if v, err := envBool("FAST_MODE", fc.FastMode); err != nil {
		fail("FAST_MODE", err)
	} else {
		fc.FastMode = v
	}
	if v, err := envDuration("LOOKUP_TIMEOUT", fc.LookupTimeout); err != nil {
		fail("LOOKUP_TIMEOUT", err)
	} else {
		fc.LookupTimeout = v
	}
	if v, err := envInt("LOOKUP_CACHE_SIZE", fc.CacheSize); err != nil {
		fail("LOOKUP_CACHE_SIZE", err)
	} else {
		fc.CacheSize = v
	}
	fc.DNSServer = env("DNS_SERVER", "")
	fc.BlacklistEndpoint = env("BLACKLIST_ENDPOINT", fc.BlacklistEndpoint)
	if v, err := envFloat("BLACKLIST_RPS", fc.BlacklistRPS); err != nil {
		fail("BLACKLIST_RPS", err)
	} else {
		fc.BlacklistRPS = v
	}

	cfg := Config{
		Port:          env("PORT", "8080"),
		Features:      fc,
		ModelPath:     env("MODEL_PATH", ""),
		ModelEndpoint: env("MODEL_ENDPOINT", ""),
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisKey:      env("REDIS_LOG_KEY", "phishing:predictions"),
		Log:           logger.FromEnv(),
	}

	if v, err := envDuration("MODEL_TIMEOUT", 5*time.Second); err != nil {
		fail("MODEL_TIMEOUT", err)
	} else {
		cfg.ModelTimeout = v
	}
	if v, err := envFloat("PHISHING_THRESHOLD", 0.5); err != nil {
		fail("PHISHING_THRESHOLD", err)
	} else if v <= 0 || v >= 1 {
		fail("PHISHING_THRESHOLD", fmt.Errorf("must be in (0, 1), got %v", v))
	} else {
		cfg.Threshold = v
	}
	if v, err := envInt("REDIS_LOG_MAX", 100000); err != nil {
		fail("REDIS_LOG_MAX", err)
	} else {
		cfg.RedisLogMax = int64(v)
	}

	if len(errs) > 0 {
		return cfg, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	return strconv.ParseBool(v)
}

func envInt(key string, def int) (int, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

func envFloat(key string, def float64) (float64, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	return strconv.ParseFloat(v, 64)
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := env(key, "")
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}
