package expr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

var evalVars = resolver.Vars{
	Period:  "2024-Q1",
	Table:   "orders",
	Dataset: "sales",
}

func TestEval_Matches(t *testing.T) {
	matching := []string{
		"table == 'orders'",
		"table = 'orders'",
		"dataset != 'hr'",
		"period >= '2024'",
		"period < '2025'",
		"dataset == 'sales' and table == 'orders'",
		"dataset == 'hr' or table == 'orders'",
		"not table == 'refunds'",
		"table in ('orders', 'refunds')",
		"table not in ('invoices', 'refunds')",
		"true",
		"(dataset == 'sales') && (period <= '2024-Q4')",
	}
	for _, src := range matching {
		t.Run(src, func(t *testing.T) {
			verdict, err := MustCompile(src).Eval(evalVars)
			require.NoError(t, err)
			assert.True(t, verdict.Matched, "expected %q to match", src)
			assert.Empty(t, verdict.FailedVar)
		})
	}
}

func TestEval_FailedVariable(t *testing.T) {
	cases := []struct {
		src       string
		wantVar   string
		wantValue string
	}{
		{"table == 'refunds'", "table", "orders"},
		{"'refunds' == table", "table", "orders"},
		{"dataset == 'hr'", "dataset", "sales"},
		{"period > '2025'", "period", "2024-Q1"},
		{"table in ('refunds', 'invoices')", "table", "orders"},
		{"table not in ('orders')", "table", "orders"},
		// and: first failing conjunct is reported.
		{"dataset == 'hr' and table == 'orders'", "dataset", "sales"},
		{"dataset == 'sales' and table == 'refunds'", "table", "orders"},
		// or: first failing branch is reported when both fail.
		{"dataset == 'hr' or table == 'refunds'", "dataset", "sales"},
		// not: the variable behind the negated condition.
		{"not table == 'orders'", "table", "orders"},
	}
	for _, tc := range cases {
		t.Run(tc.src, func(t *testing.T) {
			verdict, err := MustCompile(tc.src).Eval(evalVars)
			require.NoError(t, err)
			assert.False(t, verdict.Matched)
			assert.Equal(t, tc.wantVar, verdict.FailedVar)
			assert.Equal(t, tc.wantValue, verdict.FailedValue)
		})
	}
}

func TestEval_ConstantFalseHasNoFailedVariable(t *testing.T) {
	for _, src := range []string{"false", "not true", "false and table == 'orders'"} {
		t.Run(src, func(t *testing.T) {
			verdict, err := MustCompile(src).Eval(evalVars)
			require.NoError(t, err)
			assert.False(t, verdict.Matched)
			assert.Empty(t, verdict.FailedVar)
			assert.Empty(t, verdict.FailedValue)
		})
	}
}

func TestEval_TypeMismatch(t *testing.T) {
	// All context variables are strings: comparing to a number literal
	// is an evaluation error, not a false match.
	_, err := MustCompile("period >= 2024").Eval(evalVars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type mismatch")

	_, err = MustCompile("table in (1, 2)").Eval(evalVars)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "type mismatch")
}

func TestEval_NumberComparison(t *testing.T) {
	verdict, err := MustCompile("2024 < 2025").Eval(evalVars)
	require.NoError(t, err)
	assert.True(t, verdict.Matched)
}

func TestEval_Deterministic(t *testing.T) {
	e := MustCompile("dataset == 'hr' and table == 'orders'")
	first, err := e.Eval(evalVars)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := e.Eval(evalVars)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
