package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onboardBody = "# Onboard New Workspace\n\n" +
	"This workflow provisions a new workspace.\n\n" +
	"## Preconditions\n\n" +
	"- User has valid billing plan.\n" +
	"- Customer account exists.\n\n" +
	"## Steps\n\n" +
	"1. Create workspace via `create_workspace` API.\n" +
	"2. Assign default roles to initial users.\n" +
	"3. Provision default projects.\n" +
	"4. Send onboarding email sequence.\n\n" +
	"## Failure Modes\n\n" +
	"- Workspace creation fails due to invalid billing.\n" +
	"- Role assignment fails due to permission issues.\n\n" +
	"## Recovery\n\n" +
	"- If billing invalid: trigger notify_billing_issue workflow.\n" +
	"- If permission error: escalate to human operator.\n\n" +
	"## Guardrails\n\n" +
	"- Never delete existing workspaces during onboarding.\n" +
	"- Escalate to human if workspace creation fails twice."

func TestParseWorkflowSections_All(t *testing.T) {
	ws := ParseWorkflowSections(onboardBody)

	require.Len(t, ws.Preconditions, 2)
	assert.Equal(t, "User has valid billing plan.", ws.Preconditions[0])

	require.Len(t, ws.Steps, 4)
	assert.Equal(t, 1, ws.Steps[0].Number)
	assert.Contains(t, ws.Steps[0].Action, "Create workspace")
	assert.Equal(t, "create_workspace", ws.Steps[0].UsesAPI)
	assert.Empty(t, ws.Steps[1].UsesAPI)
	assert.Equal(t, 4, ws.Steps[3].Number)

	assert.Len(t, ws.FailureModes, 2)
	assert.Len(t, ws.Recovery, 2)
	assert.Len(t, ws.Guardrails, 2)
}

func TestParseWorkflowSections_Missing(t *testing.T) {
	body := "# Simple Workflow\n\n## Steps\n\n1. Do the thing.\n2. Done."

	ws := ParseWorkflowSections(body)
	assert.Len(t, ws.Steps, 2)
	assert.Equal(t, []string{}, ws.Preconditions)
	assert.Equal(t, []string{}, ws.FailureModes)
	assert.Equal(t, []string{}, ws.Recovery)
	assert.Equal(t, []string{}, ws.Guardrails)
}

func TestParseWorkflowSections_NoSteps(t *testing.T) {
	ws := ParseWorkflowSections("Just prose.")
	assert.NotNil(t, ws.Steps)
	assert.Empty(t, ws.Steps)
}

func TestParseWorkflowSections_APIReferences(t *testing.T) {
	body := "## Steps\n\n" +
		"1. Call `list_workspaces` to get all workspaces.\n" +
		"2. For each workspace, call `delete_workspace`.\n" +
		"3. Log the results."

	ws := ParseWorkflowSections(body)
	require.Len(t, ws.Steps, 3)
	assert.Equal(t, "list_workspaces", ws.Steps[0].UsesAPI)
	assert.Equal(t, "delete_workspace", ws.Steps[1].UsesAPI)
	assert.Empty(t, ws.Steps[2].UsesAPI)
}

func TestParseWorkflowSections_Boundaries(t *testing.T) {
	body := "## STEPS\n" +
		"- first\n" +
		"Some prose that is dropped.\n" +
		"### Details\n" +
		"* second\n" +
		"## Notes\n" +
		"- not a step\n" +
		"## Steps\n" +
		"- replacement"

	ws := ParseWorkflowSections(body)
	require.Len(t, ws.Steps, 1, "a repeated heading replaces the earlier section")
	assert.Equal(t, "replacement", ws.Steps[0].Action)
}

func TestSplitSections_LevelThreeDoesNotEndSection(t *testing.T) {
	body := "## Steps\n- first\n### Details\n* second\n## Notes\n- other"

	sections := SplitSections(body)
	assert.Equal(t, []string{"first", "second"}, ListItems(sections["steps"]))
	assert.Equal(t, []string{"other"}, ListItems(sections["notes"]))
}

func TestListItems(t *testing.T) {
	lines := []string{
		"- dash item",
		"* star item",
		"  12. numbered item  ",
		"-no space",
		"1.no space",
		"---",
		"-",
		"plain text",
		"**bold** text",
	}
	assert.Equal(t, []string{"dash item", "star item", "numbered item"}, ListItems(lines))
}

func TestDetectAPIReference(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Create workspace via `create_workspace` API.", "create_workspace"},
		{"Use `first_op` then `second_op`.", "first_op"},
		{"Skip `Not-An-Op` and take `real_op`.", "real_op"},
		{"No reference here.", ""},
		{"`_private1`", "_private1"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectAPIReference(tt.text))
		})
	}
}
