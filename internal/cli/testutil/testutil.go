// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/Lito-docs/graph/internal/cli/output"
)

// DocsTree is a small docs site covering every document type.
var DocsTree = map[string]string{
	"index.md": `---
title: Acme Docs
---

# Acme Docs

Welcome to Acme.
`,
	"concepts/index.md": `---
title: Concepts
---

The building blocks.
`,
	"concepts/workspace.md": `---
type: concept
title: Workspace
canonical_name: Workspace
aliases: [Org Workspace]
related_entities: [User, billing_account]
tags: [core]
---

A workspace groups users.
`,
	"concepts/user.md": `---
type: concept
title: User
canonical_name: User
related_entities: [Workspace]
---

A person.
`,
	"api/create-workspace.md": `---
type: api
title: Create workspace
operation_id: create_workspace
method: POST
path: /v1/workspaces
resource: Workspace
tags: [core]
---

Creates a workspace.
`,
	"workflows/onboard.md": `---
type: workflow
title: Onboard
workflow_id: onboard
goal: Onboard a customer
primary_entity: Workspace
---

## Steps

1. Create the workspace with ` + "`create_workspace`" + `
2. Invite the admin with ` + "`invite_member`" + `
3. Say hello
`,
	"README.md": "# Not a page\n",
}

// SetupTestDocs writes DocsTree into a temporary directory and returns it.
func SetupTestDocs(t *testing.T) string {
	t.Helper()
	return WriteDocs(t, DocsTree)
}

// WriteDocs writes files (relative path -> content) into a temporary directory.
func WriteDocs(t *testing.T, files map[string]string) string {
	t.Helper()

	tmpDir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(tmpDir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	return tmpDir
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// Output returns the captured stdout.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the captured stderr.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks for balanced code fences and non-empty headers.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	if fenceCount := strings.Count(md, "```"); fenceCount%2 != 0 {
		t.Errorf("unbalanced code fences in markdown: found %d occurrences", fenceCount)
	}

	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
	}
}
