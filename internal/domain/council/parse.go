package council

import (
	"regexp"
	"strings"
)

// RankingMarker is the literal line reviewers are instructed to emit before
// their numbered list. It is a text-level contract with the agents; a reply
// that ignores it degrades to whatever bare labels can be found, never to an
// error.
const RankingMarker = "FINAL RANKING:"

var (
	// "1. Response A" or "3.Response B2"; the label itself is extracted
	// afterwards so numbering style does not leak into the result.
	numberedLabelPattern = regexp.MustCompile(`\d+\.\s*Response [A-Z]\d*`)
	labelPattern         = regexp.MustCompile(`Response [A-Z]\d*`)
)

// ParseRanking extracts an ordered label list from a reviewer's free-text
// reply. The reply is searched in decreasing order of strictness:
//
//  1. text after the ranking marker, as a numbered list
//  2. text after the ranking marker, as bare labels
//  3. the whole reply, as bare labels (marker missing entirely)
//
// Only the region between the first marker and any repeated marker is
// considered. The result may be empty or partial; ParseRanking never fails
// and does not validate completeness against the turn's label set.
func ParseRanking(raw string) []string {
	if strings.Contains(raw, RankingMarker) {
		region := strings.Split(raw, RankingMarker)[1]

		if numbered := numberedLabelPattern.FindAllString(region, -1); len(numbered) > 0 {
			labels := make([]string, len(numbered))
			for i, m := range numbered {
				labels[i] = labelPattern.FindString(m)
			}
			return labels
		}
		return labelPattern.FindAllString(region, -1)
	}

	return labelPattern.FindAllString(raw, -1)
}

// ParseFailed reports whether a reviewer produced text that yielded no
// labels at all. It separates a broken reply from an empty one for logging
// and turn artifacts; scoring treats both the same.
func ParseFailed(raw string, parsed []string) bool {
	return len(parsed) == 0 && strings.TrimSpace(raw) != ""
}
