package markdown

import (
	"regexp"
	"strings"
)

// Workflow section headings, matched case-insensitively against level-2 headings.
const (
	SectionPreconditions = "preconditions"
	SectionSteps         = "steps"
	SectionFailureModes  = "failure modes"
	SectionRecovery      = "recovery"
	SectionGuardrails    = "guardrails"
)

// apiRefPattern matches the first backtick-wrapped operation id in a step.
var apiRefPattern = regexp.MustCompile("`([a-z_][a-z0-9_]*)`")

// Step is one item of a workflow's steps section.
type Step struct {
	Number  int
	Action  string
	UsesAPI string
}

// WorkflowSections holds the structured content of a workflow body.
// Missing sections are empty, never nil.
type WorkflowSections struct {
	Preconditions []string
	Steps         []Step
	FailureModes  []string
	Recovery      []string
	Guardrails    []string
}

// ParseWorkflowSections extracts the list items under the known level-2
// headings. A section runs until the next level-2 heading; when a heading
// repeats, the later section wins.
func ParseWorkflowSections(body string) WorkflowSections {
	sections := SplitSections(body)

	ws := WorkflowSections{
		Preconditions: ListItems(sections[SectionPreconditions]),
		FailureModes:  ListItems(sections[SectionFailureModes]),
		Recovery:      ListItems(sections[SectionRecovery]),
		Guardrails:    ListItems(sections[SectionGuardrails]),
		Steps:         []Step{},
	}

	for i, action := range ListItems(sections[SectionSteps]) {
		ws.Steps = append(ws.Steps, Step{
			Number:  i + 1,
			Action:  action,
			UsesAPI: DetectAPIReference(action),
		})
	}

	return ws
}

// SplitSections maps each lower-cased level-2 heading to the lines that
// follow it, up to the next level-2 heading.
func SplitSections(body string) map[string][]string {
	sections := make(map[string][]string)

	current := ""
	inSection := false
	var buf []string

	flush := func() {
		if inSection {
			sections[current] = buf
		}
	}

	for _, line := range splitLines(body) {
		if _, text, ok := parseHeading(line, 2, 2); ok {
			flush()
			current = strings.ToLower(text)
			inSection = true
			buf = nil
			continue
		}
		if inSection {
			buf = append(buf, line)
		}
	}
	flush()

	return sections
}

// ListItems returns the text of every bullet ("-", "*") or numbered ("1.")
// list line. Other lines are dropped.
func ListItems(lines []string) []string {
	items := []string{}
	for _, line := range lines {
		if item, ok := listItem(strings.TrimSpace(line)); ok {
			items = append(items, item)
		}
	}
	return items
}

func listItem(line string) (string, bool) {
	var rest string
	switch {
	case strings.HasPrefix(line, "-") || strings.HasPrefix(line, "*"):
		rest = line[1:]
	default:
		i := 0
		for i < len(line) && line[i] >= '0' && line[i] <= '9' {
			i++
		}
		if i == 0 || i >= len(line) || line[i] != '.' {
			return "", false
		}
		rest = line[i+1:]
	}

	if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
		return "", false
	}
	item := strings.TrimSpace(rest)
	if item == "" {
		return "", false
	}
	return item, true
}

// DetectAPIReference returns the first backtick-wrapped lower-case
// identifier in text, or "".
func DetectAPIReference(text string) string {
	m := apiRefPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
