package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCLI executes the root command against the testdata project and
// returns captured stdout and stderr.
func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)

	cfg := filepath.Join("testdata", "project", "ledgerpipe.yaml")
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestResolveCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "resolve", "finance", "2024-Q1", "ledger")
	require.NoError(t, err)

	assert.Contains(t, stdout, "table ledger: 1 location(s) via resolver finance_rules")
	assert.Contains(t, stdout, "ledger_2024-Q1")
	assert.Contains(t, stdout, "* ledger-warehouse")
	assert.Contains(t, stdout, "earlier rule already matched (rule not evaluated)")
}

func TestResolveCommand_ExpandsQuarter(t *testing.T) {
	stdout, _, err := runCLI(t, "resolve", "finance", "2024-Q1", "invoices")
	require.NoError(t, err)

	assert.Contains(t, stdout, "table invoices: 3 location(s)")
	assert.Contains(t, stdout, "/extracts/finance/2024-01/invoices.parquet")
	assert.Contains(t, stdout, "/extracts/finance/2024-03/invoices.parquet")
}

func TestResolveCommand_JSON(t *testing.T) {
	stdout, _, err := runCLI(t, "resolve", "finance", "2024-Q1", "ledger", "invoices", "-o", "json")
	require.NoError(t, err)

	var report struct {
		Dataset        string `json:"dataset"`
		ResolverID     string `json:"resolver_id"`
		ResolverSource string `json:"resolver_source"`
		Tables         []struct {
			Table  string `json:"table"`
			Result *struct {
				Locations []struct {
					PeriodID string `json:"period_id"`
					Path     string `json:"path"`
					Table    string `json:"table,omitempty"`
				} `json:"locations"`
			} `json:"result"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))

	assert.Equal(t, "finance", report.Dataset)
	assert.Equal(t, "finance_rules", report.ResolverID)
	assert.Equal(t, "dataset_reference", report.ResolverSource)
	require.Len(t, report.Tables, 2)
	// Results keep input order regardless of concurrent resolution.
	assert.Equal(t, "ledger", report.Tables[0].Table)
	assert.Equal(t, "invoices", report.Tables[1].Table)
	require.NotNil(t, report.Tables[1].Result)
	assert.Len(t, report.Tables[1].Result.Locations, 3)
}

func TestResolveCommand_ProjectOverride(t *testing.T) {
	stdout, _, err := runCLI(t, "resolve", "finance", "2024-01", "ledger", "--project", "restatement")
	require.NoError(t, err)

	assert.Contains(t, stdout, "via resolver archive_rules")
	assert.Contains(t, stdout, "https://archive.internal/finance/2024-01/ledger")
	assert.Contains(t, stdout, "source project_override")
}

func TestResolveCommand_FailureExitsNonZero(t *testing.T) {
	// scratch is not a known dataset, so resolver selection fails.
	_, _, err := runCLI(t, "resolve", "scratch", "2024-Q1", "ledger")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resolver selection failed")
}

func TestResolveCommand_NoMatchFailsInBothModes(t *testing.T) {
	// ops_rules only matches the inventory table, so widgets never
	// resolves. The exit status must not depend on the output mode.
	_, _, err := runCLI(t, "resolve", "ops", "2024-Q1", "widgets")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 tables failed to resolve")

	stdout, _, err := runCLI(t, "resolve", "ops", "2024-Q1", "widgets", "-o", "json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 tables failed to resolve")

	// The JSON report is still written alongside the failure.
	var report struct {
		Tables []struct {
			Table string `json:"table"`
			Error string `json:"error"`
		} `json:"tables"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	require.Len(t, report.Tables, 1)
	assert.Contains(t, report.Tables[0].Error, "no rule matched")
}

func TestResolveCommand_RecordAndRuns(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "audit.db")

	_, stderr, err := runCLI(t,
		"resolve", "finance", "2024-Q1", "ledger", "invoices",
		"--record", "--audit-path", auditPath)
	require.NoError(t, err)
	assert.Contains(t, stderr, "recorded run")

	stdout, _, err := runCLI(t, "runs", "--audit-path", auditPath, "-o", "json")
	require.NoError(t, err)

	var runs []struct {
		ID        string `json:"id"`
		ProjectID string `json:"project_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)

	stdout, _, err = runCLI(t, "runs", runs[0].ID, "--audit-path", auditPath, "-o", "json")
	require.NoError(t, err)

	var resolutions []struct {
		TableName string `json:"table_name"`
		Outcome   string `json:"outcome"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resolutions))
	require.Len(t, resolutions, 2)
	for _, res := range resolutions {
		assert.Equal(t, "resolved", res.Outcome)
	}
}

func TestRunsCommand_MissingStore(t *testing.T) {
	auditPath := filepath.Join(t.TempDir(), "absent.db")
	_, _, err := runCLI(t, "runs", "--audit-path", auditPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audit store")
}

func TestRulesCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "rules")
	require.NoError(t, err)

	assert.Contains(t, stdout, "resolver finance_rules (2 rules)")
	assert.Contains(t, stdout, "resolver archive_rules (1 rules)")
	assert.Contains(t, stdout, "table in ('ledger', 'journal')")
	assert.Contains(t, stdout, "(unconditional)")
}

func TestRulesCommand_SingleResolverJSON(t *testing.T) {
	stdout, _, err := runCLI(t, "rules", "finance_rules", "-o", "json")
	require.NoError(t, err)

	var views []struct {
		ID    string `json:"id"`
		Rules []struct {
			Position  int    `json:"position"`
			Name      string `json:"name"`
			DataLevel string `json:"data_level"`
			Strategy  string `json:"strategy"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &views))
	require.Len(t, views, 1)
	require.Len(t, views[0].Rules, 2)
	assert.Equal(t, 1, views[0].Rules[0].Position)
	assert.Equal(t, "any", views[0].Rules[0].DataLevel)
	assert.Equal(t, "month", views[0].Rules[1].DataLevel)
	assert.Equal(t, "path", views[0].Rules[1].Strategy)
}

func TestRulesCommand_UnknownResolver(t *testing.T) {
	_, _, err := runCLI(t, "rules", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown resolver "ghost"`)
}

func TestPeriodsCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "periods", "2024-Q1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "2024-Q1 (quarter, seq 1)")
	assert.Contains(t, stdout, "  2024-01 (month, seq 1)")
	assert.Contains(t, stdout, "[2024-02-01 .. 2024-02-29]")
}

func TestPeriodsCommand_JSON(t *testing.T) {
	stdout, _, err := runCLI(t, "periods", "2024", "-o", "json")
	require.NoError(t, err)

	var view struct {
		ID       string `json:"id"`
		Level    string `json:"level"`
		Children []struct {
			ID       string `json:"id"`
			Children []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"children"`
		} `json:"children"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.Equal(t, "2024", view.ID)
	assert.Equal(t, "year", view.Level)
	require.Len(t, view.Children, 1)
	require.Len(t, view.Children[0].Children, 3)
	assert.Equal(t, "January 2024", view.Children[0].Children[0].Name)
}

func TestPeriodsCommand_Unknown(t *testing.T) {
	_, _, err := runCLI(t, "periods", "1999-Q9")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown period "1999-Q9"`)
}

func TestValidateCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "metadata OK")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ledgerpipe "+Version)
}

func TestVersionCommand_JSON(t *testing.T) {
	stdout, _, err := runCLI(t, "version", "-o", "json")
	require.NoError(t, err)

	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, Version, info["version"])
}
