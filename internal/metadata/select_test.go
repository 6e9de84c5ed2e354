package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/ledgerpipe/internal/resolver"
)

func TestSelectResolver_Precedence(t *testing.T) {
	s := loadProject(t)

	t.Run("project override wins", func(t *testing.T) {
		res, source, err := s.SelectResolver("finance", "migration")
		require.NoError(t, err)
		assert.Equal(t, "archive_rules", res.ID)
		assert.Equal(t, resolver.SourceProjectOverride, source)
	})

	t.Run("dataset reference without project", func(t *testing.T) {
		res, source, err := s.SelectResolver("finance", "")
		require.NoError(t, err)
		assert.Equal(t, "finance_rules", res.ID)
		assert.Equal(t, resolver.SourceDatasetReference, source)
	})

	t.Run("project without override falls through", func(t *testing.T) {
		// migration overrides finance only; scratch keeps falling
		// through to the system default.
		res, source, err := s.SelectResolver("scratch", "migration")
		require.NoError(t, err)
		assert.Equal(t, "archive_rules", res.ID)
		assert.Equal(t, resolver.SourceSystemDefault, source)
	})

	t.Run("system default", func(t *testing.T) {
		res, source, err := s.SelectResolver("scratch", "")
		require.NoError(t, err)
		assert.Equal(t, "archive_rules", res.ID)
		assert.Equal(t, resolver.SourceSystemDefault, source)
	})

	t.Run("unknown dataset", func(t *testing.T) {
		_, _, err := s.SelectResolver("nope", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown dataset "nope"`)
	})

	t.Run("unknown project", func(t *testing.T) {
		_, _, err := s.SelectResolver("finance", "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown project "nope"`)
	})
}

func TestSelectResolver_NoCandidate(t *testing.T) {
	dir := writeProject(t, map[string]string{
		"meta.yaml": "datasets:\n  - id: orphan\n",
	})
	s, err := Load(dir)
	require.NoError(t, err)

	_, _, err = s.SelectResolver("orphan", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no resolver for dataset "orphan"`)
}

func TestCalendarFor(t *testing.T) {
	s := loadProject(t)

	t.Run("explicit reference", func(t *testing.T) {
		cal, err := s.CalendarFor("finance")
		require.NoError(t, err)
		assert.Equal(t, "fiscal", cal.ID())
	})

	t.Run("single calendar fallback", func(t *testing.T) {
		cal, err := s.CalendarFor("scratch")
		require.NoError(t, err)
		assert.Equal(t, "fiscal", cal.ID())
	})

	t.Run("no calendars", func(t *testing.T) {
		dir := writeProject(t, map[string]string{
			"meta.yaml": "datasets:\n  - id: d\n",
		})
		bare, err := Load(dir)
		require.NoError(t, err)
		_, err = bare.CalendarFor("d")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no calendars defined")
	})

	t.Run("ambiguous without reference", func(t *testing.T) {
		dir := writeProject(t, map[string]string{
			"meta.yaml": "datasets:\n  - id: d\ncalendars:\n  - id: a\n    levels: [year]\n  - id: b\n    levels: [year]\n",
		})
		multi, err := Load(dir)
		require.NoError(t, err)
		_, err = multi.CalendarFor("d")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "must reference a calendar")
	})
}

func TestPeriodsFor(t *testing.T) {
	s := loadProject(t)

	t.Run("subtree from quarter", func(t *testing.T) {
		set, err := s.PeriodsFor("2024-Q1")
		require.NoError(t, err)
		assert.Equal(t, 4, set.Len()) // quarter plus three months

		months := set.Children("2024-Q1")
		require.Len(t, months, 3)
		assert.Equal(t, "2024-01", months[0].ID)
		assert.Equal(t, "2024-03", months[2].ID)
	})

	t.Run("leaf period", func(t *testing.T) {
		set, err := s.PeriodsFor("2024-02")
		require.NoError(t, err)
		assert.Equal(t, 1, set.Len())
	})

	t.Run("whole year", func(t *testing.T) {
		set, err := s.PeriodsFor("2024")
		require.NoError(t, err)
		assert.Equal(t, 6, set.Len())
	})

	t.Run("unknown period", func(t *testing.T) {
		_, err := s.PeriodsFor("2031-Q9")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown period "2031-Q9"`)
	})
}
