package config

import "sync"

// Holder provides concurrent access to a Config that can be reloaded at
// runtime (SIGHUP). Readers get a consistent snapshot; a reload swaps the
// pointer atomically under the lock, so in-flight readers keep the config
// they started with.
type Holder struct {
	mu   sync.RWMutex
	cfg  *Config
	path string
}

// NewHolder wraps an already-loaded config. path is the YAML file Reload
// re-reads; it may be empty, in which case Reload applies defaults and
// environment only.
func NewHolder(cfg *Config, path string) *Holder {
	return &Holder{cfg: cfg, path: path}
}

// Get returns the current config snapshot.
func (h *Holder) Get() *Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cfg
}

// Reload re-runs the full load pipeline (defaults < YAML < env). If the
// result fails validation the old config is preserved and the error
// returned.
func (h *Holder) Reload() error {
	cfg, err := LoadFrom(h.path)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
	return nil
}
