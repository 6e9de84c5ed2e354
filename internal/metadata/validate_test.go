package metadata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_CleanProject(t *testing.T) {
	s := loadProject(t)
	issues := s.Validate()
	assert.Empty(t, issues)
	assert.False(t, HasErrors(issues))
}

func findIssue(t *testing.T, issues []Issue, fragment string) {
	t.Helper()
	for _, issue := range issues {
		if strings.Contains(issue.Message, fragment) {
			return
		}
	}
	t.Fatalf("no issue containing %q in %v", fragment, issues)
}

func TestValidate_BrokenReferences(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"meta.yaml": `
calendars:
  - id: fiscal
    levels: [year, month]

datasources:
  - id: lake
    type: object_store

datasets:
  - id: finance
    resolver: ghost_rules
    calendar: lunar

resolvers:
  - id: real_rules
    rules:
      - name: weekly
        data_level: week
        strategy:
          type: path
          datasource: swamp
          path: "/{period_id}"

projects:
  - id: migration
    resolvers:
      phantom: ghost_rules

periods:
  - id: 2024-01
    level: month
    parent: "2024"
`,
	})
	s, err := Load(dir)
	require.NoError(t, err)

	issues := s.Validate()
	require.True(t, HasErrors(issues))

	findIssue(t, issues, `unknown resolver "ghost_rules"`)
	findIssue(t, issues, `unknown calendar "lunar"`)
	findIssue(t, issues, `overrides unknown dataset "phantom"`)
	findIssue(t, issues, `data level "week" is not defined`)
	findIssue(t, issues, `unknown datasource "swamp"`)
	findIssue(t, issues, `unknown parent period "2024"`)
}

func TestValidate_WarnsOnUnresolvableDataset(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"meta.yaml": "datasets:\n  - id: orphan\n",
	})
	s, err := Load(dir)
	require.NoError(t, err)

	issues := s.Validate()
	require.Len(t, issues, 1)
	assert.Equal(t, SeverityWarning, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "no resolver and no system default")
	assert.False(t, HasErrors(issues))
}

func TestValidate_UndefinedDefaultResolver(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"meta.yaml": "default_resolver: ghost\n",
	})
	s, err := Load(dir)
	require.NoError(t, err)

	issues := s.Validate()
	require.True(t, HasErrors(issues))
	findIssue(t, issues, `resolver "ghost" is not defined`)
}

func TestIssueString(t *testing.T) {
	issue := Issue{Severity: SeverityError, Subject: "dataset x", Message: "broken"}
	assert.Equal(t, "[error] dataset x: broken", issue.String())
}
