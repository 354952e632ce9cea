package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// Rule limits one route. A path ending in "/" matches every path below it.
type Rule struct {
	Path   string
	Method string
	Limit  int // requests per Window; zero or less means unlimited
	Window time.Duration
	Burst  int // defaults to Limit
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled       bool
	DefaultLimit  int
	DefaultWindow time.Duration
	// IdleTTL is how long an unused client bucket is kept.
	IdleTTL   time.Duration
	Allowlist map[string]bool
	Rules     []Rule
}

// DefaultConfig limits runs tightly, since each one drives model and
// publishing calls, and everything else loosely.
func DefaultConfig() *Config {
	return &Config{
		Enabled:       true,
		DefaultLimit:  600,
		DefaultWindow: time.Minute,
		IdleTTL:       time.Hour,
		Allowlist:     map[string]bool{},
		Rules: []Rule{
			{Path: "/health", Method: http.MethodGet},
			{Path: "/api/v1/runs", Method: http.MethodPost, Limit: 30, Window: time.Hour, Burst: 3},
			{Path: "/api/v1/topics/", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
			{Path: "/api/v1/plans/", Method: http.MethodDelete, Limit: 60, Window: time.Minute, Burst: 10},
		},
	}
}

// Match returns the rule for a request, or nil when the default applies.
// Exact paths win over prefixes.
func Match(path, method string, rules []Rule) *Rule {
	for i := range rules {
		if rules[i].Method == method && rules[i].Path == path {
			return &rules[i]
		}
	}
	for i := range rules {
		r := &rules[i]
		if r.Method == method && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			return r
		}
	}
	return nil
}
