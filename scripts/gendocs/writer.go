package main

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

// MarkdownWriter accumulates a generated Markdown page.
type MarkdownWriter struct {
	buf bytes.Buffer
}

// NewMarkdownWriter creates an empty page.
func NewMarkdownWriter() *MarkdownWriter {
	return &MarkdownWriter{}
}

// Frontmatter writes the YAML block the docs site reads titles from.
func (w *MarkdownWriter) Frontmatter(title, description string) {
	data, err := yaml.Marshal(map[string]string{
		"title":       title,
		"description": description,
	})
	if err != nil {
		panic(fmt.Sprintf("frontmatter: %v", err))
	}
	w.buf.WriteString("---\n")
	w.buf.Write(data)
	w.buf.WriteString("---\n\n")
}

// GeneratedMarker warns editors that the page is overwritten on regeneration.
func (w *MarkdownWriter) GeneratedMarker() {
	w.buf.WriteString("<!-- Generated by scripts/gendocs. DO NOT EDIT. -->\n\n")
}

// Header writes a heading of the given level.
func (w *MarkdownWriter) Header(level int, text string) {
	fmt.Fprintf(&w.buf, "%s %s\n\n", strings.Repeat("#", level), text)
}

// Paragraph writes a block of text.
func (w *MarkdownWriter) Paragraph(text string) {
	w.buf.WriteString(strings.TrimSpace(text))
	w.buf.WriteString("\n\n")
}

// CodeBlock writes a fenced code block.
func (w *MarkdownWriter) CodeBlock(lang, code string) {
	fmt.Fprintf(&w.buf, "```%s\n%s\n```\n\n", lang, strings.TrimRight(code, "\n"))
}

// BulletList writes one item per line.
func (w *MarkdownWriter) BulletList(items []string) {
	for _, item := range items {
		fmt.Fprintf(&w.buf, "- %s\n", item)
	}
	w.buf.WriteString("\n")
}

// Table writes a Markdown table. Empty tables are skipped.
func (w *MarkdownWriter) Table(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	t := table.NewWriter()
	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	t.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		t.AppendRow(r)
	}

	w.buf.WriteString(t.RenderMarkdown())
	w.buf.WriteString("\n\n")
}

// Bytes returns the page content.
func (w *MarkdownWriter) Bytes() []byte {
	return w.buf.Bytes()
}

// InlineCode wraps s in backticks.
func InlineCode(s string) string {
	return "`" + s + "`"
}

// cleanDescription collapses whitespace and drops a trailing period.
func cleanDescription(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSuffix(s, ".")
}
