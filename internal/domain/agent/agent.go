// Package agent defines the council member identity and the roster.
package agent

import "errors"

// Agent is one council member: a provider-routable model with a display name.
type Agent struct {
	ID   string `json:"id"   yaml:"id"`   // provider model identifier, e.g. "openai/gpt-5.1"
	Name string `json:"name" yaml:"name"` // display name used in transcripts and score keys
}

// Canonical returns the agent's persistent score key.
func (a Agent) Canonical() string { return Canonicalize(a.Name) }

// Roster is the ordered agent list for a deployment. Order matters: Stage1
// results and anonymized labels follow roster order so repeated labeling of
// the same response set is reproducible.
type Roster []Agent

// Names returns the display names in roster order.
func (r Roster) Names() []string {
	names := make([]string, len(r))
	for i, a := range r {
		names[i] = a.Name
	}
	return names
}

// ByName returns the agent with the given display name.
func (r Roster) ByName(name string) (Agent, bool) {
	for _, a := range r {
		if a.Name == name {
			return a, true
		}
	}
	return Agent{}, false
}

// Validate checks that the roster is non-empty and free of duplicates.
func (r Roster) Validate() error {
	if len(r) == 0 {
		return errors.New("roster must contain at least one agent")
	}
	seenID := make(map[string]bool, len(r))
	seenName := make(map[string]bool, len(r))
	for _, a := range r {
		if a.ID == "" {
			return errors.New("agent id must not be empty")
		}
		if a.Name == "" {
			return errors.New("agent name must not be empty")
		}
		if seenID[a.ID] {
			return errors.New("duplicate agent id: " + a.ID)
		}
		if seenName[a.Name] {
			return errors.New("duplicate agent name: " + a.Name)
		}
		seenID[a.ID] = true
		seenName[a.Name] = true
	}
	return nil
}
