// Package markdown extracts outline and workflow structure from document
// bodies with line-oriented scans. It does not build a full Markdown AST.
package markdown

import (
	"strings"
	"unicode"
)

// Heading is one ATX heading and the headings nested under it.
type Heading struct {
	Depth    int        `json:"depth"`
	Text     string     `json:"text"`
	Anchor   string     `json:"anchor"`
	Children []*Heading `json:"children"`
}

// Outline is the heading structure of a document body.
type Outline struct {
	// Tree holds the top-level headings; deeper headings hang off Children.
	Tree []*Heading
	// Anchors lists every heading anchor in document order, duplicates kept.
	Anchors []string
}

// ExtractHeadings scans body for "#" through "######" headings.
func ExtractHeadings(body string) Outline {
	out := Outline{Tree: []*Heading{}, Anchors: []string{}}
	var stack []*Heading

	for _, line := range splitLines(body) {
		depth, text, ok := parseHeading(line, 1, 6)
		if !ok {
			continue
		}

		h := &Heading{Depth: depth, Text: text, Anchor: Slugify(text), Children: []*Heading{}}
		out.Anchors = append(out.Anchors, h.Anchor)

		for len(stack) > 0 && stack[len(stack)-1].Depth >= depth {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			out.Tree = append(out.Tree, h)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, h)
		}
		stack = append(stack, h)
	}

	return out
}

// parseHeading recognises a heading line whose marker length is within
// [minDepth, maxDepth]. The marker must start the line and be followed by
// whitespace and non-empty text.
func parseHeading(line string, minDepth, maxDepth int) (int, string, bool) {
	depth := 0
	for depth < len(line) && line[depth] == '#' {
		depth++
	}
	if depth < minDepth || depth > maxDepth || depth == len(line) {
		return 0, "", false
	}
	rest := line[depth:]
	if !unicode.IsSpace(rune(rest[0])) {
		return 0, "", false
	}
	text := strings.TrimSpace(rest)
	if text == "" {
		return 0, "", false
	}
	return depth, text, true
}

// Slugify converts heading text into an anchor: lower-cased, characters
// other than ASCII word characters, whitespace and hyphens removed, runs of
// whitespace and hyphens collapsed to one hyphen, edges trimmed.
func Slugify(text string) string {
	var b strings.Builder
	pendingHyphen := false

	for _, r := range strings.ToLower(text) {
		switch {
		case r == '-' || unicode.IsSpace(r):
			pendingHyphen = true
		case isWordRune(r):
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		}
	}

	return b.String()
}

func isWordRune(r rune) bool {
	return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func splitLines(body string) []string {
	return strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
}
