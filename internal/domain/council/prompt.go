package council

import (
	"bytes"
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"text/template"
)

//go:embed templates/ranking.tmpl
var rankingTmplText string

//go:embed templates/synthesis.tmpl
var synthesisTmplText string

var (
	rankingTmpl   = template.Must(template.New("ranking").Parse(rankingTmplText))
	synthesisTmpl = template.Must(template.New("synthesis").Parse(synthesisTmplText))
)

// ContextTurn is one prior exchange prefixed to a prompt for continuity. The
// caller bounds how many turns are included; rendering is purely textual.
type ContextTurn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type rankingPromptData struct {
	Context    string
	Query      string
	Responses  []LabeledResponse
	GroupNotes []string
}

type synthesisPromptData struct {
	Context   string
	Query     string
	Responses []LabeledResponse
	GroupNote string
	Rankings  []reviewerRanking
}

type reviewerRanking struct {
	Label string
	Text  string
}

// BuildRankingPrompt renders the Stage2 prompt: every labeled response, the
// multi-round note when labels share an agent, and the instruction to finish
// with the ranking marker followed by a numbered list of bare labels.
// Deterministic for identical inputs.
func BuildRankingPrompt(query string, a Assignment, context []ContextTurn) string {
	return render(rankingTmpl, rankingPromptData{
		Context:    formatContext(context),
		Query:      query,
		Responses:  a.Responses,
		GroupNotes: groupNotes(a),
	})
}

// BuildSynthesisPrompt renders the Stage3 prompt for the chairman: the
// labeled Stage1 responses plus every reviewer's raw ranking, keyed by that
// reviewer's own label so a reviewer that is also a reviewed agent stays
// anonymous. Deterministic for identical inputs.
func BuildSynthesisPrompt(query string, a Assignment, rankings []Ranking, context []ContextTurn) string {
	reviews := make([]reviewerRanking, 0, len(rankings))
	for _, r := range rankings {
		label, ok := a.ReviewerLabel(r.Reviewer)
		if !ok {
			label = "Anonymous Reviewer"
		}
		reviews = append(reviews, reviewerRanking{Label: label, Text: r.Raw})
	}

	return render(synthesisTmpl, synthesisPromptData{
		Context:   formatContext(context),
		Query:     query,
		Responses: a.Responses,
		GroupNote: strings.Join(groupNotes(a), "; "),
		Rankings:  reviews,
	})
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		// Embedded templates over plain value types; an execution error is a
		// programmer error.
		panic(fmt.Sprintf("council: render %s: %v", tmpl.Name(), err))
	}
	return buf.String()
}

// formatContext renders prior turns into the prompt preamble. Empty input
// yields an empty string so templates skip the section entirely.
func formatContext(turns []ContextTurn) string {
	if len(turns) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("PREVIOUS CONTEXT:\n\n")
	for i, t := range turns {
		fmt.Fprintf(&b, "User Question %d: %s\n", i+1, t.Question)
		fmt.Fprintf(&b, "LLM Answer %d: %s\n\n", i+1, t.Answer)
	}
	b.WriteString("CURRENT TASK:\n")
	return b.String()
}

// groupNotes explains which labels share an agent on multi-round turns, one
// line per multi-label agent sorted by letter. Single-label agents produce
// no note, so single-round turns render without the section.
func groupNotes(a Assignment) []string {
	groups := make(map[string][]string)
	var letters []string
	for _, r := range a.Responses {
		short := strings.TrimPrefix(r.Label, "Response ")
		letter := short[:1]
		if _, seen := groups[letter]; !seen {
			letters = append(letters, letter)
		}
		groups[letter] = append(groups[letter], short)
	}
	sort.Strings(letters)

	var notes []string
	for _, letter := range letters {
		if len(groups[letter]) > 1 {
			notes = append(notes, fmt.Sprintf(
				"Responses %s are from the same model (generated in separate, independent sessions)",
				strings.Join(groups[letter], ", ")))
		}
	}
	return notes
}
