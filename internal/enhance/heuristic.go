package enhance

import (
	"context"
	"html"
	"regexp"
	"strings"
)

var (
	decisionPattern = regexp.MustCompile(`(?i)decided|decision|agreed|approved|resolved|concluded`)
	actionPattern   = regexp.MustCompile(`(?i)action|todo|task|assign|follow.?up|next step|will do|need to`)
	numberedPattern = regexp.MustCompile(`^\d+[.)]`)
	keyPointPattern = regexp.MustCompile(`(?i)important|key|note|remember|highlight|question|asked`)

	bulletPrefix   = regexp.MustCompile(`^[-•*]\s*`)
	decisionPrefix = regexp.MustCompile(`(?i)^(decision|decided):\s*`)
	actionPrefix   = regexp.MustCompile(`(?i)^(action|todo|task):\s*`)
)

const (
	summaryLimit  = 200
	longLineLimit = 100
)

// Sections is the classification of a set of notes, one line per entry.
type Sections struct {
	Discussion  []string
	KeyPoints   []string
	Decisions   []string
	ActionItems []string
}

// Classify sorts note lines into decisions, action items, key points and
// general discussion. Each line lands in the first section it matches.
func Classify(notes string) Sections {
	var s Sections
	for _, line := range strings.Split(notes, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case decisionPattern.MatchString(lower):
			s.Decisions = append(s.Decisions, decisionPrefix.ReplaceAllString(line, ""))
		case actionPattern.MatchString(lower),
			strings.HasPrefix(lower, "-"), strings.HasPrefix(lower, "•"),
			numberedPattern.MatchString(lower),
			strings.Contains(lower, "@"), strings.Contains(lower, "due:"):
			item := actionPrefix.ReplaceAllString(line, "")
			s.ActionItems = append(s.ActionItems, strings.TrimSpace(bulletPrefix.ReplaceAllString(item, "")))
		case keyPointPattern.MatchString(lower), strings.Contains(lower, "?"), len(line) > longLineLimit:
			s.KeyPoints = append(s.KeyPoints, strings.TrimSpace(bulletPrefix.ReplaceAllString(line, "")))
		default:
			s.Discussion = append(s.Discussion, strings.TrimSpace(bulletPrefix.ReplaceAllString(line, "")))
		}
	}
	return s
}

// Heuristic formats notes locally without calling any model.
type Heuristic struct{}

func (Heuristic) Name() string { return "heuristic" }

func (Heuristic) Enhance(_ context.Context, req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return Format(req.RawNotes), nil
}

// Format renders classified notes as HTML. All note text is escaped.
func Format(notes string) string {
	s := Classify(strings.TrimSpace(notes))
	var b strings.Builder

	b.WriteString("<h2>Summary</h2>\n<p>")
	b.WriteString(html.EscapeString(summarize(s)))
	b.WriteString("</p>\n\n")

	writeList(&b, "Discussion", s.Discussion, false)
	writeList(&b, "Key Points", s.KeyPoints, true)

	if len(s.Decisions) > 0 {
		writeList(&b, "Decisions", s.Decisions, false)
	} else {
		b.WriteString("<h3>Decisions</h3>\n<p><em>No specific decisions were made during this discussion.</em></p>\n\n")
	}

	if len(s.ActionItems) > 0 {
		writeList(&b, "Action Items", s.ActionItems, false)
	} else {
		b.WriteString("<h3>Action Items</h3>\n<p><em>No action items were identified during this discussion.</em></p>\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func summarize(s Sections) string {
	source := s.Discussion
	n := 3
	if len(source) == 0 {
		source, n = s.KeyPoints, 2
	}
	if len(source) > n {
		source = source[:n]
	}
	text := strings.Join(source, " ")
	if text == "" {
		return "Discussion notes recorded for this agenda item."
	}
	if r := []rune(text); len(r) > summaryLimit {
		return string(r[:summaryLimit]) + "..."
	}
	return text
}

func writeList(b *strings.Builder, heading string, items []string, strong bool) {
	if len(items) == 0 {
		return
	}
	b.WriteString("<h3>" + heading + "</h3>\n<ul>\n")
	for _, item := range items {
		text := html.EscapeString(item)
		if strong {
			text = "<strong>" + text + "</strong>"
		}
		b.WriteString("<li>" + text + "</li>\n")
	}
	b.WriteString("</ul>\n\n")
}
