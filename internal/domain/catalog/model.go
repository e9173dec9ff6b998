// Package catalog holds the model catalog exposed to clients picking
// council members.
package catalog

import "sort"

// ModelInfo describes one model offered by the upstream provider.
type ModelInfo struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContextLength int    `json:"context_length"`
	Reasoning     bool   `json:"reasoning"`
}

// SortByCapability orders models for display: reasoning-capable models
// first, then by context length descending, then by ID for a stable
// order between refreshes.
func SortByCapability(models []ModelInfo) {
	sort.SliceStable(models, func(i, j int) bool {
		a, b := models[i], models[j]
		if a.Reasoning != b.Reasoning {
			return a.Reasoning
		}
		if a.ContextLength != b.ContextLength {
			return a.ContextLength > b.ContextLength
		}
		return a.ID < b.ID
	})
}
