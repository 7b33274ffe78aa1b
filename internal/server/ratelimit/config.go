package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Tier names. Routes in one tier share a client's bucket.
const (
	TierBatch        = "batch"
	TierScore        = "score"
	TierLiveSession  = "live_session"
	TierLiveFragment = "live_fragment"
	TierDefault      = "default"
	TierUnlimited    = "unlimited"
)

const (
	defaultIdleTTL         = time.Hour
	defaultCleanupInterval = 5 * time.Minute
)

// Tier is a token bucket shape: Limit requests per Window with a capacity of
// Burst. A Limit of zero means unlimited.
type Tier struct {
	Limit  int
	Window time.Duration
	Burst  int // defaults to Limit
}

func (t Tier) window() time.Duration {
	if t.Window <= 0 {
		return time.Minute
	}
	return t.Window
}

// Route assigns requests matching Method and Pattern to a tier. Pattern
// segments written as {name} match any single path segment.
type Route struct {
	Method  string
	Pattern string
	Tier    string
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	Default         Tier // applied to requests no route matches
	Tiers           map[string]Tier
	Routes          []Route
	IdleTTL         time.Duration // idle buckets older than this are dropped
	CleanupInterval time.Duration
	Allowlist       map[string]bool
	Denylist        map[string]bool
}

func (c *Config) idleTTL() time.Duration {
	if c.IdleTTL <= 0 {
		return defaultIdleTTL
	}
	return c.IdleTTL
}

// DefaultTiers returns the built-in tier shapes.
func DefaultTiers() map[string]Tier {
	return map[string]Tier{
		// Batch scoring and transcription do the most work per request
		TierBatch: {Limit: 30, Window: time.Minute, Burst: 5},
		TierScore: {Limit: 300, Window: time.Minute, Burst: 30},
		// Opening, finishing and discarding live sessions
		TierLiveSession: {Limit: 60, Window: time.Minute, Burst: 10},
		// Fragments arrive every second or two while someone is speaking
		TierLiveFragment: {Limit: 1200, Window: time.Minute, Burst: 60},
	}
}

// DefaultRoutes maps the API's write endpoints to tiers. Reads fall through
// to the default tier.
func DefaultRoutes() []Route {
	return []Route{
		{Method: "POST", Pattern: "/score/batch", Tier: TierBatch},
		{Method: "POST", Pattern: "/score/batch/stream", Tier: TierBatch},
		{Method: "POST", Pattern: "/transcribe", Tier: TierBatch},
		{Method: "POST", Pattern: "/score", Tier: TierScore},
		{Method: "POST", Pattern: "/live", Tier: TierLiveSession},
		{Method: "POST", Pattern: "/live/{id}/finish", Tier: TierLiveSession},
		{Method: "DELETE", Pattern: "/live/{id}", Tier: TierLiveSession},
		{Method: "POST", Pattern: "/live/{id}/fragments", Tier: TierLiveFragment},
	}
}

// DefaultConfig enables limiting with the built-in tiers and routes.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		Default:         Tier{Limit: 1000, Window: time.Minute},
		Tiers:           DefaultTiers(),
		Routes:          DefaultRoutes(),
		IdleTTL:         defaultIdleTTL,
		CleanupInterval: defaultCleanupInterval,
		Allowlist:       map[string]bool{},
		Denylist:        map[string]bool{},
	}
}

// LoadConfig builds the configuration from RATE_LIMIT_* environment
// variables on top of DefaultConfig. Each tier's limit can be overridden with
// RATE_LIMIT_<TIER>_LIMIT, for example RATE_LIMIT_BATCH_LIMIT.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = env("RATE_LIMIT_ENABLED", cfg.Enabled, strconv.ParseBool)
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}

	cfg.Default.Limit = env("RATE_LIMIT_DEFAULT_LIMIT", cfg.Default.Limit, strconv.Atoi)
	cfg.Default.Window = env("RATE_LIMIT_DEFAULT_WINDOW", cfg.Default.Window, time.ParseDuration)
	cfg.IdleTTL = env("RATE_LIMIT_IDLE_TTL", cfg.IdleTTL, time.ParseDuration)
	cfg.CleanupInterval = env("RATE_LIMIT_CLEANUP_INTERVAL", cfg.CleanupInterval, time.ParseDuration)
	cfg.Allowlist = parseClientList(os.Getenv("RATE_LIMIT_ALLOWLIST"))
	cfg.Denylist = parseClientList(os.Getenv("RATE_LIMIT_DENYLIST"))

	for name, tier := range cfg.Tiers {
		tier.Limit = env("RATE_LIMIT_"+strings.ToUpper(name)+"_LIMIT", tier.Limit, strconv.Atoi)
		cfg.Tiers[name] = tier
	}
	return cfg
}

// env parses the variable key, keeping def when it is unset or malformed.
func env[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseClientList splits a comma-separated list of client addresses.
func parseClientList(list string) map[string]bool {
	out := make(map[string]bool)
	for _, item := range strings.Split(list, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out[item] = true
		}
	}
	return out
}
