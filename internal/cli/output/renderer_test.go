package output

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func newTestRenderer(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", true, ModeText},
		{"", false, ModeMarkdown},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+map[bool]string{true: "tty", false: "pipe"}[tt.isTTY], func(t *testing.T) {
			r, _, _ := newTestRenderer(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestNewRenderer_BufferIsNotTerminal(t *testing.T) {
	r := NewRenderer(&bytes.Buffer{}, &bytes.Buffer{}, ModeAuto)
	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeMarkdown, r.EffectiveMode())
}

func TestRenderer_Markdown(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeMarkdown, false)

	r.Header(1, "Graph Statistics")
	r.Success("Build completed")
	r.Muted("graph.json")
	r.StatusLine("concept", "success", "3 nodes")
	r.Warning("Unresolved resource")

	got := out.String()
	assert.Contains(t, got, "# Graph Statistics\n")
	assert.Contains(t, got, "**Build completed**")
	assert.Contains(t, got, "_graph.json_")
	assert.Contains(t, got, "- concept: success (3 nodes)")
	assert.Contains(t, errOut.String(), "! Unresolved resource")
	assert.False(t, ansi.MatchString(got+errOut.String()))
}

func TestRenderer_PlainTextWithoutTerminal(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText, false)

	r.Header(2, "Nodes by type")
	r.Success("done")
	r.StatusLine("step", "failed", "")
	r.Error("boom")

	assert.Contains(t, out.String(), "Nodes by type\n")
	assert.Contains(t, out.String(), "✓ done")
	assert.Contains(t, out.String(), "✗ step")
	assert.Contains(t, errOut.String(), "✗ boom")
	assert.False(t, ansi.MatchString(out.String()+errOut.String()))
}

func TestRenderer_JSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON, false)

	require.NoError(t, r.JSON(map[string]int{"total_nodes": 3}))
	assert.Equal(t, "{\n  \"total_nodes\": 3\n}\n", out.String())

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, 3, decoded["total_nodes"])
}

func TestRenderer_Table(t *testing.T) {
	t.Run("markdown", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeMarkdown, false)
		r.Table([]string{"Type", "Count"}, [][]string{{"doc", "2"}, {"api", "3"}})

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "Type")
		assert.Contains(t, lines[1], "---")
		assert.Contains(t, lines[2], "doc")
		assert.Contains(t, lines[3], "api")
	})

	t.Run("text", func(t *testing.T) {
		r, out, _ := newTestRenderer(ModeText, false)
		r.Table([]string{"Type", "Count"}, [][]string{{"doc", "2"}})

		assert.Contains(t, out.String(), "┌")
		assert.Contains(t, out.String(), "doc")
	})
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Title", FormatHeader(1, "Title"))
	assert.Equal(t, "### Deep", FormatHeader(3, "Deep"))
	assert.Equal(t, "# Clamp", FormatHeader(0, "Clamp"))
	assert.Equal(t, "- **Nodes:** 12", FormatKeyValue("Nodes", "12"))
}

func TestNewStyles_Plain(t *testing.T) {
	s := NewStyles(false)
	assert.Equal(t, "text", s.Bold.Render("text"))
	assert.Equal(t, "✓", s.StatusSuccess.String())
}
