package council

import (
	"math"
	"sort"
)

// rankingPoints is the award for each 0-based position after a reviewer's
// labels are grouped per agent and re-sorted; positions beyond the table earn
// nothing and produce no entry.
var rankingPoints = [...]float64{25, 12, 6, 3, 2, 1}

// MaxRoundPoints is the largest award a single review can grant. The score
// table's legacy guard keys off this value; change them together.
const MaxRoundPoints = 25

// AggregateRankings builds the turn leaderboard: for every agent, the average
// of the 1-indexed positions its labels took across all reviewers, rounded to
// two decimals and sorted ascending (lower is better). A multi-round agent
// contributes one position per label per reviewer. Ties keep first-seen
// order; agents nobody ranked are omitted.
func AggregateRankings(rankings []Ranking, labelToAgent map[string]string) []AggregateRanking {
	positions := make(map[string][]int)
	var order []string

	for _, r := range rankings {
		for i, label := range r.Parsed {
			name, ok := labelToAgent[label]
			if !ok {
				continue
			}
			if _, seen := positions[name]; !seen {
				order = append(order, name)
			}
			positions[name] = append(positions[name], i+1)
		}
	}

	aggregate := make([]AggregateRanking, 0, len(order))
	for _, name := range order {
		sum := 0
		for _, p := range positions[name] {
			sum += p
		}
		aggregate = append(aggregate, AggregateRanking{
			Agent:       name,
			AverageRank: round2(float64(sum) / float64(len(positions[name]))),
			Count:       len(positions[name]),
		})
	}

	sort.SliceStable(aggregate, func(i, j int) bool {
		return aggregate[i].AverageRank < aggregate[j].AverageRank
	})
	return aggregate
}

// PointsForReview converts a single reviewer's parsed list into point awards
// keyed by agent display name. The reviewer's labels are grouped by agent, a
// multi-round agent's positions collapse into their average (its group rank),
// agents are re-sorted by group rank ascending and awarded from the fixed
// table. Agents absent from the parse get no entry. The reviewer's own
// response is scored like any other unless countSelf is false.
func PointsForReview(parsed []string, reviewer string, labelToAgent map[string]string, countSelf bool) map[string]float64 {
	type group struct {
		name      string
		positions []int
	}
	var groups []group
	index := make(map[string]int)

	for i, label := range parsed {
		name, ok := labelToAgent[label]
		if !ok {
			continue
		}
		if !countSelf && name == reviewer {
			continue
		}
		gi, seen := index[name]
		if !seen {
			gi = len(groups)
			index[name] = gi
			groups = append(groups, group{name: name})
		}
		groups[gi].positions = append(groups[gi].positions, i+1)
	}

	type ranked struct {
		name string
		rank float64
	}
	byRank := make([]ranked, len(groups))
	for i, g := range groups {
		sum := 0
		for _, p := range g.positions {
			sum += p
		}
		byRank[i] = ranked{name: g.name, rank: float64(sum) / float64(len(g.positions))}
	}
	sort.SliceStable(byRank, func(i, j int) bool { return byRank[i].rank < byRank[j].rank })

	points := make(map[string]float64, len(byRank))
	for i, g := range byRank {
		if i >= len(rankingPoints) {
			break
		}
		points[g.name] = rankingPoints[i]
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
