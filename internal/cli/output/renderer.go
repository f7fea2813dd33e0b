package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles Styles
}

// NewRenderer creates a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit terminal state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: NewStyles(isTTY),
	}
}

// EffectiveMode resolves ModeAuto against the terminal state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the text-mode styles.
func (r *Renderer) Styles() Styles { return r.styles }

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool { return r.isTTY }

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the diagnostic output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(level, text))
		r.Println()
		return
	}
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println()
	r.Println(style.Render(text))
}

// Success writes a success message.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println("**" + msg + "**")
		return
	}
	r.Println(r.styles.StatusSuccess.String() + " " + r.styles.Success.Render(msg))
}

// Muted writes a de-emphasized message.
func (r *Renderer) Muted(msg string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println("_" + msg + "_")
		return
	}
	r.Println(r.styles.Muted.Render(msg))
}

// Warning writes a warning to the diagnostic stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.StatusWarning.String()+" "+r.styles.Warning.Render(msg))
}

// Error writes an error to the diagnostic stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.StatusFailed.String()+" "+r.styles.Error.Render(msg))
}

// StatusLine writes "<icon> name  detail" where status is success, warning
// or failed.
func (r *Renderer) StatusLine(name, status, detail string) {
	if r.EffectiveMode() == ModeMarkdown {
		line := fmt.Sprintf("- %s: %s", name, status)
		if detail != "" {
			line += " (" + detail + ")"
		}
		r.Println(line)
		return
	}

	icon := r.styles.StatusSuccess.String()
	switch status {
	case "warning":
		icon = r.styles.StatusWarning.String()
	case "failed":
		icon = r.styles.StatusFailed.String()
	}
	line := icon + " " + name
	if detail != "" {
		line += "  " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table writes rows under header, as a box table in text mode and a
// Markdown table otherwise.
func (r *Renderer) Table(header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println()
		return
	}
	t.Render()
}

// FormatHeader returns a Markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a Markdown list item "- **key:** value".
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}
