// Package council implements the deliberation core: label anonymization,
// ranking-prompt construction, free-text rank parsing, rank aggregation and
// the persistent skill-score update rule. Everything here is pure; I/O and
// scheduling live in the service layer.
package council

import "github.com/synod-io/synod/internal/domain/agent"

// ModelResponse is one agent's Stage1 answer. Immutable once collected.
type ModelResponse struct {
	Agent agent.Agent `json:"agent"`
	Text  string      `json:"text"`
}

// LabeledResponse pairs a Stage1 answer with its anonymized label.
type LabeledResponse struct {
	Label string `json:"label"`
	Agent string `json:"agent"` // display name, resolved via the assignment only
	Text  string `json:"text"`
}

// Ranking is one reviewer's Stage2 reply. Parsed may be empty or partial;
// parsing never fails. ParseFailed marks a non-empty reply that yielded no
// labels, so a broken reviewer is distinguishable from one that ranked
// nothing on purpose.
type Ranking struct {
	Reviewer    string   `json:"reviewer"`
	Raw         string   `json:"raw"`
	Parsed      []string `json:"parsed"`
	ParseFailed bool     `json:"parse_failed,omitempty"`
}

// AggregateRanking is one leaderboard row for a single turn: how a reviewer
// pool placed an agent on average. Lower is better.
type AggregateRanking struct {
	Agent       string  `json:"agent"`
	AverageRank float64 `json:"average_rank"`
	Count       int     `json:"rankings_count"`
}

// SynthesisResult is the chairman's Stage3 output. A chairman failure is
// reported as explicit error text, never as an error value.
type SynthesisResult struct {
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// TurnArtifacts is everything a turn produced besides the final answer,
// persisted with the assistant message so a deliberation can be replayed.
type TurnArtifacts struct {
	Responses    []LabeledResponse  `json:"responses"`
	Rankings     []Ranking          `json:"rankings"`
	LabelToAgent map[string]string  `json:"label_to_agent"`
	Leaderboard  []AggregateRanking `json:"leaderboard"`
}
