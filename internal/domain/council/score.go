package council

import "github.com/synod-io/synod/internal/domain/agent"

// ScoreAlpha is the EMA blend weight of a fresh round against the prior
// score: new = prior*(1-α) + roundAvg*α.
const ScoreAlpha = 0.2

// UpdateScores folds one turn's rankings into the persistent score table and
// returns the updated copy. Keys are canonical agent names; raw names are
// canonicalized before every lookup and write. Per mentioned agent the round
// average is its total awarded points divided by the number of reviewers that
// awarded it any, blended by ScoreAlpha against the prior score, except that
// a missing or zero prior adopts the round average outright (fast start).
// A stored score above MaxRoundPoints predates this scheme and is reset to 0
// before blending. Agents nobody awarded points this turn keep their scores
// untouched.
func UpdateScores(prior map[string]float64, rankings []Ranking, labelToAgent map[string]string, countSelf bool) map[string]float64 {
	scores := make(map[string]float64, len(prior))
	for name, v := range prior {
		scores[name] = v
	}

	totals := make(map[string]float64)
	reviewers := make(map[string]int)
	for _, r := range rankings {
		awarded := PointsForReview(r.Parsed, r.Reviewer, labelToAgent, countSelf)
		for name, pts := range awarded {
			totals[name] += pts
			reviewers[name]++
		}
	}

	for name, total := range totals {
		canonical := agent.Canonicalize(name)
		roundAvg := total / float64(reviewers[name])

		current, exists := scores[canonical]
		if exists && current > MaxRoundPoints {
			current = 0
		}
		if !exists || current == 0 {
			scores[canonical] = round2(roundAvg)
			continue
		}
		scores[canonical] = round2(current*(1-ScoreAlpha) + roundAvg*ScoreAlpha)
	}

	return scores
}
