package messagequeue

// TurnStartedPayload is the schema for turns.started messages.
type TurnStartedPayload struct {
	TurnID         string   `json:"turn_id"`
	ConversationID string   `json:"conversation_id"`
	Agents         []string `json:"agents"`
}

// StageResponse is one labeled Stage1 answer as it appears on the wire.
type StageResponse struct {
	Label string `json:"label"`
	Agent string `json:"agent"`
	Text  string `json:"text"`
}

// TurnStage1CompletedPayload is the schema for turns.stage1.completed messages.
type TurnStage1CompletedPayload struct {
	TurnID         string          `json:"turn_id"`
	ConversationID string          `json:"conversation_id"`
	Responses      []StageResponse `json:"responses"`
}

// StageRanking is one reviewer's Stage2 verdict as it appears on the wire.
type StageRanking struct {
	Reviewer    string   `json:"reviewer"`
	Raw         string   `json:"raw"`
	Parsed      []string `json:"parsed"`
	ParseFailed bool     `json:"parse_failed,omitempty"`
}

// LeaderboardRow is one aggregate placement row as it appears on the wire.
type LeaderboardRow struct {
	Agent       string  `json:"agent"`
	AverageRank float64 `json:"average_rank"`
	Count       int     `json:"rankings_count"`
}

// TurnStage2CompletedPayload is the schema for turns.stage2.completed messages.
type TurnStage2CompletedPayload struct {
	TurnID         string           `json:"turn_id"`
	ConversationID string           `json:"conversation_id"`
	Rankings       []StageRanking   `json:"rankings"`
	Leaderboard    []LeaderboardRow `json:"leaderboard"`
}

// TurnStage3CompletedPayload is the schema for turns.stage3.completed messages.
type TurnStage3CompletedPayload struct {
	TurnID         string `json:"turn_id"`
	ConversationID string `json:"conversation_id"`
	Agent          string `json:"agent"`
	Text           string `json:"text"`
}

// TurnFailedPayload is the schema for turns.failed messages.
type TurnFailedPayload struct {
	TurnID         string `json:"turn_id"`
	ConversationID string `json:"conversation_id"`
	Reason         string `json:"reason"`
}

// ScoresUpdatedPayload is the schema for scores.updated messages. Keys are
// canonical agent names.
type ScoresUpdatedPayload struct {
	Scores map[string]float64 `json:"scores"`
}
