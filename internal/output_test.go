package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mixedSubscriptions() []Subscription {
	trial := rec("c3", 9.99, StatusExpiringSoon)
	trial.IsTrial = true
	return []Subscription{
		rec("a1", 10, StatusActive),
		rec("b2", 5, StatusCanceled),
		trial,
	}
}

func TestFilterByStatus(t *testing.T) {
	subs := mixedSubscriptions()

	tests := []struct {
		show string
		want []string
	}{
		{ShowAll, []string{"a1", "b2", "c3"}},
		{"", []string{"a1", "b2", "c3"}},
		{ShowActive, []string{"a1", "c3"}},
		{ShowCanceled, []string{"b2"}},
		{ShowTrials, []string{"c3"}},
	}
	for _, tt := range tests {
		t.Run(tt.show, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(FilterByStatus(subs, tt.show)))
		})
	}
}

func TestResolveID(t *testing.T) {
	subs := []Subscription{
		rec("4f1c2a90-aaaa", 1, StatusActive),
		rec("4f1c9b11-bbbb", 1, StatusActive),
		rec("4f1", 1, StatusActive),
		rec("9e2d", 1, StatusActive),
	}

	tests := []struct {
		name    string
		ref     string
		want    string
		wantErr bool
	}{
		{"exact", "9e2d", "9e2d", false},
		{"exact wins over prefix", "4f1", "4f1", false},
		{"unique prefix", "4f1c2", "4f1c2a90-aaaa", false},
		{"trimmed", " 9e ", "9e2d", false},
		{"ambiguous prefix", "4f1c", "", true},
		{"no match", "zz", "", true},
		{"empty", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveID(subs, tt.ref)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewListJSON(t *testing.T) {
	out := NewListJSON(mixedSubscriptions(), GetCurrency("USD"))

	assert.Equal(t, 3, out.Summary.Count)
	assert.Equal(t, 19.99, out.Summary.MonthlyTotal)
	assert.Equal(t, 239.88, out.Summary.YearlyTotal)
	assert.Equal(t, "USD", out.Summary.Currency)

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, out))
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "subscriptions")
	assert.Contains(t, decoded, "summary")
}

func TestNewListJSON_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, NewListJSON(nil, GetCurrency("USD"))))
	assert.Contains(t, buf.String(), `"subscriptions": []`)
}

func TestPrintSubscriptionsTable(t *testing.T) {
	subs := mixedSubscriptions()
	var buf bytes.Buffer
	PrintSubscriptionsTable(&buf, subs, FilterByStatus(subs, ShowActive), ShowActive, GetCurrency("USD"))

	out := buf.String()
	assert.Contains(t, out, "Tracking 3 subscriptions (2 live, 1 canceled)")
	assert.Contains(t, out, "Service a1")
	assert.Contains(t, out, "Service c3")
	assert.NotContains(t, out, "Service b2")
	assert.Contains(t, out, "$19.99")
}

func TestPrintDashboard_Empty(t *testing.T) {
	var buf bytes.Buffer
	PrintDashboard(&buf, BuildDashboard(nil, viewNow, DefaultUpcomingLimit), GetCurrency("USD"))

	out := buf.String()
	assert.Contains(t, out, "No upcoming renewals soon.")
	assert.Contains(t, out, "No active spending data")
	assert.NotContains(t, out, "free trials")
}

func TestPrintInsights_NoTrials(t *testing.T) {
	sub := rec("a", 10, StatusActive)
	sub.Category = "Software"
	var buf bytes.Buffer
	PrintInsights(&buf, BuildInsights([]Subscription{sub}), GetCurrency("USD"))

	out := buf.String()
	assert.Contains(t, out, "Software ($10.00 / month)")
	assert.Contains(t, out, "No active free trials found.")
}

func TestInDays(t *testing.T) {
	assert.Equal(t, "today", inDays(0))
	assert.Equal(t, "in 1 day", inDays(1))
	assert.Equal(t, "in 12 days", inDays(12))
	assert.True(t, strings.Contains(inDays(-3), "3 days ago"))
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "4f1c2a90", shortID("4f1c2a90-1111-2222-3333-444455556666"))
	assert.Equal(t, "1", shortID("1"))
}
