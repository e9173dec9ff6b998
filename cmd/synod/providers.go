package main

// Provider blank imports — each import activates a self-registering adapter.
// Add new providers here as they are implemented.

import (
	"fmt"
	"strconv"

	_ "github.com/synod-io/synod/internal/adapter/openrouter"

	"github.com/synod-io/synod/internal/config"
	"github.com/synod-io/synod/internal/port/provider"
	"github.com/synod-io/synod/internal/secrets"
)

// newProvider builds the configured model provider from the registry. The
// API key comes from the vault so SIGHUP rotation reaches the client.
func newProvider(cfg *config.Config, vault *secrets.Vault) (provider.ModelProvider, error) {
	apiKey := vault.Get("OPENROUTER_API_KEY")
	if apiKey == "" {
		apiKey = cfg.Provider.APIKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key for provider %q", cfg.Provider.Name)
	}

	p, err := provider.New(cfg.Provider.Name, map[string]string{
		"base_url":         cfg.Provider.BaseURL,
		"api_key":          apiKey,
		"referer":          cfg.Provider.Referer,
		"app_title":        cfg.Provider.AppTitle,
		"timeout":          cfg.Provider.Timeout.String(),
		"max_concurrent":   strconv.Itoa(cfg.Provider.MaxConcurrent),
		"breaker_failures": strconv.Itoa(cfg.Breaker.MaxFailures),
	})
	if err != nil {
		return nil, fmt.Errorf("init provider %q: %w", cfg.Provider.Name, err)
	}
	return p, nil
}
