// Package output renders command results as styled terminal text, Markdown
// or JSON.
package output

import (
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Mode selects how command output is rendered.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto"     // text on a terminal, markdown otherwise
	ModeText     Mode = "text"     // styled for humans
	ModeMarkdown Mode = "markdown" // plain Markdown for agents and pipes
	ModeJSON     Mode = "json"     // machine-readable
)

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
