package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Lito-docs/graph/internal/cli"
	"github.com/Lito-docs/graph/internal/cli/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// generateCLIDocs generates CLI documentation from Cobra commands.
func generateCLIDocs(outDir string) error {
	log.Printf("Generating CLI docs to %s", outDir)

	// Create output directory
	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Get root command
	rootCmd := cli.NewRootCmd()

	// Generate index page
	if err := generateCLIIndex(rootCmd, outDir); err != nil {
		return fmt.Errorf("failed to generate index: %w", err)
	}
	log.Printf("  Generated index.md")

	// Generate page for each command
	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		if err := generateCommandPage(cmd, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", cmd.Name(), err)
		}
		log.Printf("  Generated %s.md", cmd.Name())
	}

	return nil
}

// generateCLIIndex generates the CLI overview page.
func generateCLIIndex(rootCmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()

	w.Frontmatter("CLI Reference", "Command-line interface reference for lito-graph")
	w.GeneratedMarker()

	w.Header(1, "CLI Reference")
	w.Paragraph("lito-graph compiles a Markdown docs directory into a knowledge graph and lets you explore the result.")

	w.Header(2, "Installation")
	w.CodeBlock("bash", "go install github.com/Lito-docs/graph/cmd/lito-graph@latest")

	w.Header(2, "Basic Usage")
	w.CodeBlock("bash", "lito-graph <command> [options]")

	w.Header(2, "Commands")

	headers := []string{"Command", "Description"}
	var rows [][]string

	for _, cmd := range rootCmd.Commands() {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "__complete" {
			continue
		}
		link := fmt.Sprintf("[%s](/cli/%s)", InlineCode(cmd.Name()), cmd.Name())
		rows = append(rows, []string{link, cleanDescription(cmd.Short)})
	}

	w.Table(headers, rows)

	w.Header(2, "Global Options")
	w.Paragraph("These flags are available for all commands:")
	writeFlagsTable(w, rootCmd.PersistentFlags())

	w.Header(2, "Configuration")
	w.Paragraph(fmt.Sprintf("Settings are read from %s in the working directory or any parent directory. "+
		"Relative paths in the file are resolved against the directory holding it.",
		InlineCode(config.ConfigFileNames[0])))

	w.Header(2, "Environment Variables")
	w.Paragraph("Every setting can also be given as an environment variable. Nested keys use a double underscore.")
	w.Table([]string{"Variable", "Setting", "Default"}, envRows())

	w.Paragraph("Precedence, highest first: command-line flags, environment variables, config file, defaults.")

	w.Header(2, "Exit Codes")
	exitHeaders := []string{"Code", "Meaning"}
	exitRows := [][]string{
		{InlineCode("0"), "Success, including builds that produced warnings"},
		{InlineCode("1"), "Error (check stderr for details)"},
	}
	w.Table(exitHeaders, exitRows)

	w.Header(2, "Getting Help")
	w.CodeBlock("bash", `# General help
lito-graph help
lito-graph --help

# Command-specific help
lito-graph build --help`)

	// Write file
	filename := filepath.Join(outDir, "index.md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

// generateCommandPage generates documentation for a single command.
func generateCommandPage(cmd *cobra.Command, outDir string) error {
	w := NewMarkdownWriter()

	// Frontmatter
	w.Frontmatter(cmd.Name(), cmd.Short)
	w.GeneratedMarker()

	// Title and long description
	w.Header(1, cmd.Name())
	if cmd.Long != "" {
		w.Paragraph(cmd.Long)
	} else {
		w.Paragraph(cmd.Short)
	}

	// Usage
	w.Header(2, "Usage")
	useLine := cmd.UseLine()
	if cmd.HasSubCommands() {
		useLine = fmt.Sprintf("lito-graph %s <subcommand> [options]", cmd.Name())
	} else if !strings.HasPrefix(useLine, "lito-graph") {
		useLine = "lito-graph " + useLine
	}
	w.CodeBlock("bash", useLine)

	// Aliases
	if len(cmd.Aliases) > 0 {
		w.Header(2, "Aliases")
		var aliases []string
		for _, alias := range cmd.Aliases {
			aliases = append(aliases, InlineCode(alias))
		}
		w.BulletList(aliases)
	}

	// Subcommands
	if cmd.HasSubCommands() {
		w.Header(2, "Subcommands")
		headers := []string{"Subcommand", "Description"}
		var rows [][]string
		for _, sub := range cmd.Commands() {
			if sub.Hidden {
				continue
			}
			rows = append(rows, []string{InlineCode(sub.Name()), cleanDescription(sub.Short)})
		}
		w.Table(headers, rows)
	}

	// Local flags
	if cmd.HasLocalFlags() {
		w.Header(2, "Options")
		writeFlagsTable(w, cmd.LocalFlags())
	}

	// Inherited flags from parent
	if cmd.HasInheritedFlags() {
		w.Header(2, "Global Options")
		writeFlagsTable(w, cmd.InheritedFlags())
	}

	// Examples
	if cmd.Example != "" {
		w.Header(2, "Examples")
		// Clean up example - remove common leading whitespace
		example := cleanExample(cmd.Example)
		w.CodeBlock("bash", example)
	}

	// Write file
	filename := filepath.Join(outDir, cmd.Name()+".md")
	return os.WriteFile(filename, w.Bytes(), 0600)
}

// envRows lists the environment variable for every config key.
func envRows() [][]string {
	defaults := config.Defaults()
	keys := make([]string, 0, len(defaults))
	for key := range defaults {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	rows := make([][]string, 0, len(keys))
	for _, key := range keys {
		name := config.EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "__"))
		def := fmt.Sprint(defaults[key])
		switch def {
		case "", "[]", "0", "false":
			def = "-"
		default:
			def = InlineCode(def)
		}
		rows = append(rows, []string{InlineCode(name), InlineCode(key), def})
	}
	return rows
}

// writeFlagsTable writes a table of flags.
func writeFlagsTable(w *MarkdownWriter, flags *pflag.FlagSet) {
	headers := []string{"Option", "Short", "Default", "Description"}
	var rows [][]string

	flags.VisitAll(func(f *pflag.Flag) {
		// Skip hidden flags
		if f.Hidden {
			return
		}

		option := "--" + f.Name
		short := ""
		if f.Shorthand != "" {
			short = "-" + f.Shorthand
		}

		defVal := f.DefValue
		switch {
		case defVal == "":
			// Keep empty
		case defVal == "false" || defVal == "true":
			// Keep as-is for booleans
		case f.Value.Type() == "string" && defVal != "":
			defVal = InlineCode(defVal)
		}

		desc := cleanDescription(f.Usage)

		rows = append(rows, []string{
			InlineCode(option),
			short,
			defVal,
			desc,
		})
	})

	w.Table(headers, rows)
}

// cleanExample removes common leading whitespace from example text.
func cleanExample(example string) string {
	lines := strings.Split(example, "\n")
	if len(lines) == 0 {
		return example
	}

	// Find minimum indentation (ignoring empty lines)
	minIndent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		indent := len(line) - len(strings.TrimLeft(line, " \t"))
		if minIndent == -1 || indent < minIndent {
			minIndent = indent
		}
	}

	if minIndent <= 0 {
		return strings.TrimSpace(example)
	}

	// Remove common indentation
	var result []string
	for _, line := range lines {
		if len(line) >= minIndent {
			result = append(result, line[minIndent:])
		} else {
			result = append(result, strings.TrimLeft(line, " \t"))
		}
	}

	return strings.TrimSpace(strings.Join(result, "\n"))
}
