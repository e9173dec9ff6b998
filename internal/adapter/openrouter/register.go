package openrouter

import (
	"fmt"
	"strconv"
	"time"

	"github.com/synod-io/synod/internal/port/provider"
	"github.com/synod-io/synod/internal/resilience"
	"github.com/synod-io/synod/internal/sessions"
)

// Breaker defaults; overridable via the factory config map.
const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

func init() {
	provider.Register(providerName, func(config map[string]string) (provider.ModelProvider, error) {
		c := NewClient(config["base_url"], config["api_key"])
		c.SetAttribution(config["referer"], config["app_title"])

		if v := config["timeout"]; v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, fmt.Errorf("openrouter: parse timeout: %w", err)
			}
			c.SetTimeout(d)
		}

		if v := config["max_concurrent"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("openrouter: parse max_concurrent: %w", err)
			}
			c.SetPool(sessions.NewPool(n))
		}

		failures := defaultBreakerFailures
		if v := config["breaker_failures"]; v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return nil, fmt.Errorf("openrouter: parse breaker_failures: %w", err)
			}
			failures = n
		}
		if failures > 0 {
			c.SetBreaker(resilience.NewBreaker(failures, defaultBreakerTimeout))
		}

		return c, nil
	})
}
