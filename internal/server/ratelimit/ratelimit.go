// Package ratelimit throttles API clients with per-client, per-route token buckets.
package ratelimit

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the outcome of one Allow call.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type entry struct {
	limiter  *rate.Limiter
	limit    int
	lastSeen time.Time
}

// Limiter tracks one bucket per client, route and method.
type Limiter struct {
	cfg     *Config
	mu      sync.Mutex
	buckets map[string]*entry
	now     func() time.Time
}

// NewLimiter creates a Limiter. A nil config uses DefaultConfig.
func NewLimiter(cfg *Config) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Limiter{cfg: cfg, buckets: make(map[string]*entry), now: time.Now}
}

// Allow consumes a token for the client on the given route if one is available.
func (l *Limiter) Allow(clientID, path, method string) Info {
	if !l.cfg.Enabled || l.cfg.Allowlist[clientID] {
		return Info{Allowed: true}
	}

	rule := Match(path, method, l.cfg.Rules)
	if rule == nil {
		rule = &Rule{Path: path, Method: method, Limit: l.cfg.DefaultLimit, Window: l.cfg.DefaultWindow}
	}
	if rule.Limit <= 0 || rule.Window <= 0 {
		return Info{Allowed: true}
	}

	now := l.now()
	e := l.bucket(clientID+" "+method+" "+rule.Path, rule, now)

	r := e.limiter.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return Info{Limit: e.limit, RetryAfter: delay}
	}
	remaining := int(math.Floor(e.limiter.TokensAt(now)))
	if remaining < 0 {
		remaining = 0
	}
	return Info{Allowed: true, Limit: e.limit, Remaining: remaining}
}

func (l *Limiter) bucket(key string, rule *Rule, now time.Time) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if e, ok := l.buckets[key]; ok {
		e.lastSeen = now
		return e
	}

	l.sweep(now)
	burst := rule.Burst
	if burst <= 0 {
		burst = rule.Limit
	}
	every := rule.Window / time.Duration(rule.Limit)
	e := &entry{limiter: rate.NewLimiter(rate.Every(every), burst), limit: rule.Limit, lastSeen: now}
	l.buckets[key] = e
	return e
}

// sweep drops idle buckets. Called with mu held.
func (l *Limiter) sweep(now time.Time) {
	if l.cfg.IdleTTL <= 0 {
		return
	}
	for key, e := range l.buckets {
		if now.Sub(e.lastSeen) > l.cfg.IdleTTL {
			delete(l.buckets, key)
		}
	}
}

// Len returns the number of live buckets.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
