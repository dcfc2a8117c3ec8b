package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const (
	ShowAll      = "all"
	ShowActive   = "active"
	ShowCanceled = "canceled"
	ShowTrials   = "trials"
)

// ListJSON is the JSON form of the list command
type ListJSON struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Summary       ListSummary    `json:"summary"`
}

type ListSummary struct {
	Count        int     `json:"count"`
	MonthlyTotal float64 `json:"monthly_total"`
	YearlyTotal  float64 `json:"yearly_total"`
	Currency     string  `json:"currency"`
}

// PrintJSON writes v as indented JSON
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// NewListJSON builds the list output. Totals cover the displayed records.
func NewListJSON(subs []Subscription, cur Currency) ListJSON {
	if subs == nil {
		subs = []Subscription{}
	}
	monthly := TotalMonthlySpend(subs)
	return ListJSON{
		Subscriptions: subs,
		Summary: ListSummary{
			Count:        len(subs),
			MonthlyTotal: RoundCents(monthly),
			YearlyTotal:  RoundCents(monthly * 12),
			Currency:     cur.Code,
		},
	}
}

func statusText(s Status) string {
	switch s {
	case StatusActive:
		return text.FgGreen.Sprint("ACTIVE")
	case StatusExpiringSoon:
		return text.FgYellow.Sprint("EXPIRING SOON")
	case StatusCanceled:
		return text.FgHiBlack.Sprint("CANCELED")
	}
	return string(s)
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

// PrintSubscriptionsTable outputs records as a formatted table
func PrintSubscriptionsTable(w io.Writer, allSubs []Subscription, displaySubs []Subscription, show string, cur Currency) {
	canceled := 0
	for _, sub := range allSubs {
		if sub.Status == StatusCanceled {
			canceled++
		}
	}
	fmt.Fprintf(w, "Tracking %d subscriptions (%d live, %d canceled)\n", len(allSubs), len(allSubs)-canceled, canceled)
	fmt.Fprintf(w, "Showing: %s\n\n", show)

	t := newTable(w)
	header := table.Row{"ID", "Name", "Category", "Status", "Cycle", "Renews", "Cost"}
	t.AppendHeader(header)

	for _, sub := range displaySubs {
		name := sub.Name
		if sub.IsTrial {
			name += " " + text.FgYellow.Sprint("(trial)")
		}
		category := sub.Category.String()
		if category == "" {
			category = OtherCategory
		}
		t.AppendRow(table.Row{
			shortID(sub.ID), name, category, statusText(sub.Status),
			string(sub.BillingCycle), sub.NextRenewalDate.String(), FormatCost(sub),
		})
	}

	monthly := TotalMonthlySpend(displaySubs)
	t.AppendSeparator()
	t.AppendFooter(table.Row{"", "", "", "", "", text.Bold.Sprint("Total (live)"), text.Bold.Sprint(cur.Format(monthly))})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: len(header), Align: text.AlignRight},
	})
	t.Render()
}

// PrintDashboard outputs the dashboard figures
func PrintDashboard(w io.Writer, d Dashboard, cur Currency) {
	stats := newTable(w)
	stats.AppendHeader(table.Row{"Active Subs", "Monthly Spend", "Yearly Proj.", "Free Trials"})
	stats.AppendRow(table.Row{
		d.ActiveCount,
		text.Bold.Sprint(cur.Format(d.MonthlySpend)),
		cur.Format(d.YearlyProjection),
		d.TrialCount,
	})
	stats.Render()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Upcoming Renewals\n")
	if len(d.Upcoming) == 0 {
		fmt.Fprintln(w, "No upcoming renewals soon.")
	} else {
		up := newTable(w)
		up.AppendHeader(table.Row{"Date", "Name", "In", "Cost"})
		for _, r := range d.Upcoming {
			up.AppendRow(table.Row{r.NextRenewalDate.String(), r.Name, inDays(r.InDays), FormatCost(r.Subscription)})
		}
		up.SetColumnConfigs([]table.ColumnConfig{{Number: 4, Align: text.AlignRight}})
		up.Render()
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Monthly Spending by Category\n")
	printCategories(w, d.Categories, cur, "No active spending data")

	if d.TrialCount > 0 {
		fmt.Fprintf(w, "\nYou have %d free trials. Don't forget to cancel before they charge you!\n", d.TrialCount)
	}
}

// PrintInsights outputs the insights figures
func PrintInsights(w io.Writer, in Insights, cur Currency) {
	top, topValue := "N/A", cur.Format(0)
	if in.TopCategory != nil {
		top, topValue = in.TopCategory.Name, cur.Format(in.TopCategory.Value)
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Monthly Burn", "At Risk (Trials)", "Top Category"})
	t.AppendRow(table.Row{
		text.Bold.Sprint(cur.Format(in.MonthlyBurn)),
		cur.Format(in.TrialExposure),
		fmt.Sprintf("%s (%s / month)", top, topValue),
	})
	t.Render()
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Spending by Category\n")
	printCategories(w, in.Categories, cur, "No active spending data")
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Savings Opportunities\n")
	if len(in.Trials) == 0 {
		fmt.Fprintln(w, "No active free trials found. You're doing great!")
		return
	}
	st := newTable(w)
	st.AppendHeader(table.Row{"Trial", "Ends", "Save"})
	for _, sub := range in.Trials {
		st.AppendRow(table.Row{sub.Name, sub.NextRenewalDate.String(), FormatCost(sub)})
	}
	st.SetColumnConfigs([]table.ColumnConfig{{Number: 3, Align: text.AlignRight}})
	st.Render()
}

func printCategories(w io.Writer, cats []CategorySpend, cur Currency, empty string) {
	if len(cats) == 0 {
		fmt.Fprintln(w, empty)
		return
	}
	total := 0.0
	for _, c := range cats {
		total += c.Value
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Category", "Share", "Cost"})
	for _, c := range cats {
		share := 0.0
		if total > 0 {
			share = c.Value / total * 100
		}
		t.AppendRow(table.Row{c.Name, fmt.Sprintf("%.0f%%", share), cur.Format(c.Value)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

func inDays(n int) string {
	switch {
	case n < 0:
		return text.FgRed.Sprintf("%d days ago", -n)
	case n == 0:
		return "today"
	case n == 1:
		return "in 1 day"
	}
	return fmt.Sprintf("in %d days", n)
}

// shortID keeps uuids readable in tables; any unique prefix is accepted by
// the commands that take an id.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// FilterByStatus filters records by the --show option
func FilterByStatus(subs []Subscription, show string) []Subscription {
	if show == ShowAll || show == "" {
		return subs
	}
	var result []Subscription
	for _, sub := range subs {
		switch {
		case show == ShowActive && sub.Status.Live():
			result = append(result, sub)
		case show == ShowCanceled && sub.Status == StatusCanceled:
			result = append(result, sub)
		case show == ShowTrials && sub.IsTrial:
			result = append(result, sub)
		}
	}
	return result
}

// ResolveID finds the full id for an exact id or a unique id prefix.
func ResolveID(subs []Subscription, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	var matches []string
	for _, sub := range subs {
		if sub.ID == ref {
			return sub.ID, nil
		}
		if ref != "" && strings.HasPrefix(sub.ID, ref) {
			matches = append(matches, sub.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no subscription with id %q", ref)
	case 1:
		return matches[0], nil
	}
	return "", fmt.Errorf("id prefix %q is ambiguous (%d matches)", ref, len(matches))
}
