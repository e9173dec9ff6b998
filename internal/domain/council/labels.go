package council

import "strconv"

// Assignment is the outcome of anonymizing one turn's responses: the labeled
// responses in input order plus the label→agent map, which is the only
// channel downstream code may use to resolve who wrote what.
type Assignment struct {
	Responses    []LabeledResponse `json:"responses"`
	LabelToAgent map[string]string `json:"label_to_agent"`
}

// Anonymize assigns one label per response. When every agent appears once
// the labels are "Response A", "Response B", … in input order. When any
// agent appears more than once (multi-round turns), every agent keeps the
// letter assigned at its first occurrence and each of its responses gets a
// 1-indexed round suffix: "Response A1", "Response A2", "Response B1".
// Labels are unique within a turn.
func Anonymize(responses []ModelResponse) Assignment {
	counts := make(map[string]int, len(responses))
	for _, r := range responses {
		counts[r.Agent.Name]++
	}
	multiRound := false
	for _, n := range counts {
		if n > 1 {
			multiRound = true
			break
		}
	}

	assignment := Assignment{
		Responses:    make([]LabeledResponse, 0, len(responses)),
		LabelToAgent: make(map[string]string, len(responses)),
	}

	letters := make(map[string]byte, len(counts))
	rounds := make(map[string]int, len(counts))
	var next byte = 'A'

	for _, r := range responses {
		letter, seen := letters[r.Agent.Name]
		if !seen {
			letter = next
			letters[r.Agent.Name] = letter
			next++
		}
		rounds[r.Agent.Name]++

		label := "Response " + string(letter)
		if multiRound {
			label += strconv.Itoa(rounds[r.Agent.Name])
		}

		assignment.Responses = append(assignment.Responses, LabeledResponse{
			Label: label,
			Agent: r.Agent.Name,
			Text:  r.Text,
		})
		assignment.LabelToAgent[label] = r.Agent.Name
	}

	return assignment
}

// ReviewerLabel returns the label standing in for the given agent when it
// acts as a reviewer. A multi-round agent carries several labels; its latest
// one is used.
func (a Assignment) ReviewerLabel(agentName string) (string, bool) {
	for i := len(a.Responses) - 1; i >= 0; i-- {
		if a.Responses[i].Agent == agentName {
			return a.Responses[i].Label, true
		}
	}
	return "", false
}

// Labels returns the labels in assignment order.
func (a Assignment) Labels() []string {
	labels := make([]string, len(a.Responses))
	for i, r := range a.Responses {
		labels[i] = r.Label
	}
	return labels
}
