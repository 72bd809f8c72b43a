// internal/search/orchestrator/config.go
package orchestrator

import (
	"time"

	"nomad-directory/internal/common/config"
)

type Config struct {
	DefaultLimit   int
	MaxLimit       int
	FetchTimeout   time.Duration
	CandidateLimit int
}

func LoadConfig(search config.SearchConfig) *Config {
	return &Config{
		DefaultLimit:   search.DefaultLimit,
		MaxLimit:       search.MaxLimit,
		FetchTimeout:   search.FetchTimeoutDuration(),
		CandidateLimit: search.CandidateLimit,
	}
}

func (c *Config) withDefaults() *Config {
	out := *c
	if out.DefaultLimit <= 0 {
		out.DefaultLimit = 12
	}
	if out.MaxLimit <= 0 {
		out.MaxLimit = 100
	}
	if out.DefaultLimit > out.MaxLimit {
		out.DefaultLimit = out.MaxLimit
	}
	if out.FetchTimeout <= 0 {
		out.FetchTimeout = 5 * time.Second
	}
	return &out
}
