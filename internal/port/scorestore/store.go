// Package scorestore defines the durable score-table port.
package scorestore

import "context"

// Store persists the canonical-name score table as a single document. There
// is deliberately no partial-key API: updates load the full map, mutate it
// and store it back. One deliberation turn runs to completion before the
// next begins, so writers do not contend.
type Store interface {
	// Get loads the full score table. A missing document yields an empty
	// map, not an error.
	Get(ctx context.Context) (map[string]float64, error)

	// Set stores the full score table, replacing the previous document.
	Set(ctx context.Context, scores map[string]float64) error
}
