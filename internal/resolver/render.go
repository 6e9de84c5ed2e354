package resolver

import (
	"strings"

	"github.com/leapstack-labs/ledgerpipe/internal/calendar"
)

// tokenValues builds the substitution context for one period: the
// period's own identifiers plus the request's table/dataset values and
// the strategy's datasource.
func tokenValues(req Request, period *calendar.Period, datasourceID string) map[string]string {
	return map[string]string{
		"period_id":     period.ID,
		"period_name":   period.DisplayName(),
		"table_name":    req.TableName,
		"dataset_id":    req.DatasetID,
		"datasource_id": datasourceID,
	}
}

// renderTemplate substitutes {token} placeholders in tmpl from values.
// Rendering fails closed: an unrecognized, empty or unterminated token
// returns an empty string and a non-empty offending token text, never a
// partial result.
func renderTemplate(tmpl string, values map[string]string) (rendered, badToken string) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); {
		ch := tmpl[i]
		if ch != '{' {
			b.WriteByte(ch)
			i++
			continue
		}

		end := strings.IndexByte(tmpl[i+1:], '}')
		if end < 0 {
			return "", tmpl[i:]
		}
		token := tmpl[i+1 : i+1+end]
		if token == "" {
			// An empty badToken would read as success downstream.
			return "", "{}"
		}
		value, ok := values[token]
		if !ok {
			return "", token
		}
		b.WriteString(value)
		i += end + 2
	}

	return b.String(), ""
}
