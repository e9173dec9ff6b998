// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/synod-io/synod/internal/adapter/otel"
	"github.com/synod-io/synod/internal/adapter/ws"
	"github.com/synod-io/synod/internal/config"
	"github.com/synod-io/synod/internal/domain/agent"
	"github.com/synod-io/synod/internal/domain/council"
	"github.com/synod-io/synod/internal/logger"
	"github.com/synod-io/synod/internal/port/broadcast"
	"github.com/synod-io/synod/internal/port/messagequeue"
	"github.com/synod-io/synod/internal/port/provider"
)

// Error texts surfaced as synthesis content. Pipeline failures must read
// as explicit content; the turn itself never raises.
const (
	noResponsesText   = "Error: No models available."
	synthesisFailText = "Error: Unable to generate final synthesis."
)

// CouncilService runs the three-stage deliberation pipeline: parallel
// first-pass answers, anonymous peer ranking, chairman synthesis.
type CouncilService struct {
	provider provider.ModelProvider
	scores   *ScoreService
	hub      broadcast.Broadcaster
	queue    messagequeue.Queue
	cfg      config.Council
	metrics  *otel.Metrics
}

// NewCouncilService creates a CouncilService over the given provider,
// score service and event sinks.
func NewCouncilService(p provider.ModelProvider, scores *ScoreService, hub broadcast.Broadcaster, queue messagequeue.Queue, cfg config.Council) *CouncilService {
	return &CouncilService{provider: p, scores: scores, hub: hub, queue: queue, cfg: cfg}
}

// SetMetrics attaches metric instruments. A nil receiver field means no
// recording; the pipeline never depends on telemetry being configured.
func (s *CouncilService) SetMetrics(m *otel.Metrics) {
	s.metrics = m
}

// Roster returns the configured agent roster.
func (s *CouncilService) Roster() agent.Roster {
	return s.cfg.Agents
}

// TurnResult is everything one deliberation turn produced. Synthesis is
// always populated; a turn that could not run surfaces explicit error text
// attributed to the chairman.
type TurnResult struct {
	TurnID    string
	Synthesis council.SynthesisResult
	Artifacts council.TurnArtifacts
}

// RunTurn executes one full deliberation turn. conversationID scopes the
// progress events and may be empty for turns run outside a conversation
// (MCP tools). The configured TurnTimeout bounds the provider calls only;
// events and score persistence still go out after a timeout.
func (s *CouncilService) RunTurn(ctx context.Context, conversationID, query string, history []council.ContextTurn) *TurnResult {
	turnID := uuid.NewString()
	started := time.Now()

	ctx = logger.WithTurnID(ctx, turnID)
	ctx, span := otel.StartTurnSpan(ctx, turnID, conversationID)
	defer span.End()
	if s.metrics != nil {
		s.metrics.TurnsStarted.Add(ctx, 1)
	}

	queryCtx := ctx
	if s.cfg.TurnTimeout > 0 {
		var cancel context.CancelFunc
		queryCtx, cancel = context.WithTimeout(ctx, s.cfg.TurnTimeout)
		defer cancel()
	}

	s.emit(ctx, conversationID, ws.EventTurnStarted, messagequeue.SubjectTurnStarted, ws.TurnStartedEvent{
		TurnID:         turnID,
		ConversationID: conversationID,
		Agents:         s.cfg.Agents.Names(),
	})

	responses := s.stage1(queryCtx, turnID, query, history)
	if len(responses) == 0 {
		slog.Error("turn failed: no stage1 responses", "turn_id", turnID)
		if s.metrics != nil {
			s.metrics.TurnsFailed.Add(ctx, 1)
		}
		s.emit(ctx, conversationID, ws.EventTurnFailed, messagequeue.SubjectTurnFailed, ws.TurnFailedEvent{
			TurnID:         turnID,
			ConversationID: conversationID,
			Reason:         "no agents answered",
		})
		return &TurnResult{
			TurnID:    turnID,
			Synthesis: council.SynthesisResult{Agent: s.cfg.Chairman.Name, Text: noResponsesText},
		}
	}

	assignment := council.Anonymize(responses)
	s.emit(ctx, conversationID, ws.EventStage1Completed, messagequeue.SubjectTurnStage1Complete, ws.Stage1CompletedEvent{
		TurnID:         turnID,
		ConversationID: conversationID,
		Responses:      assignment.Responses,
	})

	rankings := s.stage2(queryCtx, turnID, query, assignment, history, responses)
	leaderboard := council.AggregateRankings(rankings, assignment.LabelToAgent)

	s.emit(ctx, conversationID, ws.EventStage2Completed, messagequeue.SubjectTurnStage2Complete, ws.Stage2CompletedEvent{
		TurnID:         turnID,
		ConversationID: conversationID,
		Rankings:       rankings,
		Leaderboard:    leaderboard,
	})

	if updated, err := s.scores.Update(ctx, rankings, assignment.LabelToAgent); err != nil {
		slog.Error("score update failed", "turn_id", turnID, "error", err)
	} else {
		s.hub.BroadcastEvent(ctx, ws.EventScoresUpdated, ws.ScoresUpdatedEvent{Scores: updated})
		s.publish(ctx, messagequeue.SubjectScoresUpdated, ws.ScoresUpdatedEvent{Scores: updated})
	}

	synthesis := s.stage3(queryCtx, turnID, query, assignment, rankings, history)
	s.emit(ctx, conversationID, ws.EventStage3Completed, messagequeue.SubjectTurnStage3Complete, ws.Stage3CompletedEvent{
		TurnID:         turnID,
		ConversationID: conversationID,
		Agent:          synthesis.Agent,
		Text:           synthesis.Text,
	})

	if s.metrics != nil {
		s.metrics.TurnsCompleted.Add(ctx, 1)
		s.metrics.TurnDuration.Record(ctx, time.Since(started).Seconds())
	}

	return &TurnResult{
		TurnID:    turnID,
		Synthesis: synthesis,
		Artifacts: council.TurnArtifacts{
			Responses:    assignment.Responses,
			Rankings:     rankings,
			LabelToAgent: assignment.LabelToAgent,
			Leaderboard:  leaderboard,
		},
	}
}

// stage1 fans one query per configured agent and returns the successes in
// roster order, not completion order. A failure or empty reply drops the
// agent from the turn.
func (s *CouncilService) stage1(ctx context.Context, turnID, query string, history []council.ContextTurn) []council.ModelResponse {
	ctx, span := otel.StartStageSpan(ctx, turnID, "stage1")
	defer span.End()
	defer s.recordStage(ctx, "stage1", time.Now())

	messages := buildMessages(history, query)

	replies := make([]string, len(s.cfg.Agents))
	var wg sync.WaitGroup
	for i, ag := range s.cfg.Agents {
		wg.Add(1)
		go func(idx int, ag agent.Agent) {
			defer wg.Done()
			text, err := s.query(ctx, ag.ID, messages)
			if err != nil {
				slog.Warn("stage1 query failed", "agent", ag.Name, "error", err)
				return
			}
			replies[idx] = text
		}(i, ag)
	}
	wg.Wait()

	responses := make([]council.ModelResponse, 0, len(s.cfg.Agents))
	for i, ag := range s.cfg.Agents {
		if strings.TrimSpace(replies[i]) == "" {
			continue
		}
		responses = append(responses, council.ModelResponse{Agent: ag, Text: replies[i]})
	}
	return responses
}

// stage2 fans the ranking prompt to every agent that answered Stage1. A
// failed reviewer is omitted entirely and never aborts the turn; an
// unparseable reply is kept with ParseFailed set so it stays visible in
// the artifacts.
func (s *CouncilService) stage2(ctx context.Context, turnID, query string, a council.Assignment, history []council.ContextTurn, responses []council.ModelResponse) []council.Ranking {
	ctx, span := otel.StartStageSpan(ctx, turnID, "stage2")
	defer span.End()
	defer s.recordStage(ctx, "stage2", time.Now())

	prompt := council.BuildRankingPrompt(query, a, history)
	messages := []provider.Message{{Role: "user", Content: prompt}}

	reviewers := reviewerSet(responses)
	raws := make([]string, len(reviewers))
	var wg sync.WaitGroup
	for i, ag := range reviewers {
		wg.Add(1)
		go func(idx int, ag agent.Agent) {
			defer wg.Done()
			text, err := s.query(ctx, ag.ID, messages)
			if err != nil {
				slog.Warn("stage2 query failed", "reviewer", ag.Name, "error", err)
				return
			}
			raws[idx] = text
		}(i, ag)
	}
	wg.Wait()

	rankings := make([]council.Ranking, 0, len(reviewers))
	for i, ag := range reviewers {
		if strings.TrimSpace(raws[i]) == "" {
			continue
		}
		parsed := council.ParseRanking(raws[i])
		failed := council.ParseFailed(raws[i], parsed)
		if failed {
			slog.Warn("ranking parse failed", "reviewer", ag.Name)
			if s.metrics != nil {
				s.metrics.ParseFailures.Add(ctx, 1)
			}
		}
		rankings = append(rankings, council.Ranking{
			Reviewer:    ag.Name,
			Raw:         raws[i],
			Parsed:      parsed,
			ParseFailed: failed,
		})
	}
	return rankings
}

// stage3 asks the chairman for the final synthesis. Failure yields
// explicit error text, never an error value.
func (s *CouncilService) stage3(ctx context.Context, turnID, query string, a council.Assignment, rankings []council.Ranking, history []council.ContextTurn) council.SynthesisResult {
	ctx, span := otel.StartStageSpan(ctx, turnID, "stage3")
	defer span.End()
	defer s.recordStage(ctx, "stage3", time.Now())

	prompt := council.BuildSynthesisPrompt(query, a, rankings, history)

	text, err := s.query(ctx, s.cfg.Chairman.ID, []provider.Message{{Role: "user", Content: prompt}})
	if err != nil || strings.TrimSpace(text) == "" {
		slog.Error("synthesis failed", "chairman", s.cfg.Chairman.Name, "error", err)
		text = synthesisFailText
	}
	return council.SynthesisResult{Agent: s.cfg.Chairman.Name, Text: text}
}

// query issues one provider call under its own span and counts it.
func (s *CouncilService) query(ctx context.Context, modelID string, messages []provider.Message) (string, error) {
	ctx, span := otel.StartProviderSpan(ctx, modelID)
	defer span.End()
	if s.metrics != nil {
		s.metrics.ProviderCalls.Add(ctx, 1)
	}
	return s.provider.Query(ctx, modelID, messages)
}

// recordStage records a stage duration; start is captured when the stage
// begins via the deferred call site.
func (s *CouncilService) recordStage(ctx context.Context, stage string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.StageDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("stage.name", stage)))
}

// reviewerSet returns the distinct agents behind the responses, in first
// response order. Multi-round turns produce one reviewer per agent.
func reviewerSet(responses []council.ModelResponse) []agent.Agent {
	seen := make(map[string]bool, len(responses))
	reviewers := make([]agent.Agent, 0, len(responses))
	for _, r := range responses {
		if seen[r.Agent.Name] {
			continue
		}
		seen[r.Agent.Name] = true
		reviewers = append(reviewers, r.Agent)
	}
	return reviewers
}

// buildMessages renders bounded prior turns plus the current query as the
// Stage1 message list.
func buildMessages(history []council.ContextTurn, query string) []provider.Message {
	messages := make([]provider.Message, 0, len(history)*2+1)
	for _, t := range history {
		messages = append(messages,
			provider.Message{Role: "user", Content: t.Question},
			provider.Message{Role: "assistant", Content: t.Answer},
		)
	}
	return append(messages, provider.Message{Role: "user", Content: query})
}

// emit broadcasts a turn event to WebSocket subscribers and mirrors it on
// the durable NATS subject.
func (s *CouncilService) emit(ctx context.Context, conversationID, eventType, subject string, payload any) {
	s.hub.BroadcastConversationEvent(ctx, conversationID, eventType, payload)
	s.publish(ctx, subject, payload)
}

// publish mirrors an event payload onto NATS. Delivery is best effort and
// never disturbs the turn.
func (s *CouncilService) publish(ctx context.Context, subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal turn event", "subject", subject, "turn_id", logger.TurnID(ctx), "error", err)
		return
	}
	if err := s.queue.Publish(ctx, subject, data); err != nil {
		slog.Warn("publish turn event failed", "subject", subject, "turn_id", logger.TurnID(ctx), "error", err)
	}
}
