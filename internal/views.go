package internal

import (
	"math"
	"sort"
	"time"
)

// OtherCategory labels records whose category is blank.
const OtherCategory = "Other"

// DefaultUpcomingLimit is how many renewals the dashboard shows.
const DefaultUpcomingLimit = 3

// chartPalette colors category slices in order of first appearance.
var chartPalette = []string{"#6366f1", "#ec4899", "#f59e0b", "#10b981", "#3b82f6", "#8b5cf6"}

// CategorySpend is the summed cost of one category.
type CategorySpend struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color,omitempty"`
}

// TotalMonthlySpend sums the cost of every non-canceled record. Costs are
// added as-is whatever their billing cycle.
func TotalMonthlySpend(subs []Subscription) float64 {
	total := 0.0
	for _, sub := range subs {
		if sub.Status != StatusCanceled {
			total += sub.Cost
		}
	}
	return total
}

// YearlyProjection is the monthly spend times twelve.
func YearlyProjection(subs []Subscription) float64 {
	return TotalMonthlySpend(subs) * 12
}

// UpcomingRenewals returns at most limit non-canceled records ordered by
// next renewal date. Records with equal dates keep their input order.
func UpcomingRenewals(subs []Subscription, limit int) []Subscription {
	if limit <= 0 {
		return nil
	}
	var live []Subscription
	for _, sub := range subs {
		if sub.Status != StatusCanceled {
			live = append(live, sub)
		}
	}
	sort.SliceStable(live, func(i, j int) bool {
		return live[i].NextRenewalDate.Before(live[j].NextRenewalDate.Time)
	})
	if len(live) > limit {
		live = live[:limit]
	}
	return live
}

// CategoryBreakdown groups non-canceled records by category for the
// spending chart.
func CategoryBreakdown(subs []Subscription) []CategorySpend {
	return groupByCategory(subs, func(s Subscription) bool { return s.Status != StatusCanceled })
}

// InsightBreakdown groups Active and Expiring Soon records by category.
func InsightBreakdown(subs []Subscription) []CategorySpend {
	return groupByCategory(subs, func(s Subscription) bool { return s.Status.Live() })
}

// groupByCategory sums cost per category in order of first occurrence and
// rounds each sum to cents.
func groupByCategory(subs []Subscription, include func(Subscription) bool) []CategorySpend {
	var order []string
	sums := make(map[string]float64)
	for _, sub := range subs {
		if !include(sub) {
			continue
		}
		name := sub.Category.String()
		if name == "" {
			name = OtherCategory
		}
		if _, ok := sums[name]; !ok {
			order = append(order, name)
		}
		sums[name] += sub.Cost
	}

	result := make([]CategorySpend, 0, len(order))
	for i, name := range order {
		result = append(result, CategorySpend{
			Name:  name,
			Value: RoundCents(sums[name]),
			Color: chartPalette[i%len(chartPalette)],
		})
	}
	return result
}

// TrialExposure sums the cost of trials that have not been canceled.
func TrialExposure(subs []Subscription) float64 {
	total := 0.0
	for _, sub := range subs {
		if sub.IsTrial && sub.Status != StatusCanceled {
			total += sub.Cost
		}
	}
	return total
}

// TopCategory returns the most expensive category among Active and
// Expiring Soon records. The first category encountered wins ties.
func TopCategory(subs []Subscription) (CategorySpend, bool) {
	var order []string
	sums := make(map[string]float64)
	for _, sub := range subs {
		if !sub.Status.Live() {
			continue
		}
		name := sub.Category.String()
		if _, ok := sums[name]; !ok {
			order = append(order, name)
		}
		sums[name] += sub.Cost
	}
	if len(order) == 0 {
		return CategorySpend{}, false
	}
	sort.SliceStable(order, func(i, j int) bool {
		return sums[order[i]] > sums[order[j]]
	})
	return CategorySpend{Name: order[0], Value: sums[order[0]]}, true
}

// ActiveCount counts records whose status is exactly Active.
func ActiveCount(subs []Subscription) int {
	n := 0
	for _, sub := range subs {
		if sub.Status == StatusActive {
			n++
		}
	}
	return n
}

// TrialCount counts every trial, canceled or not.
func TrialCount(subs []Subscription) int {
	n := 0
	for _, sub := range subs {
		if sub.IsTrial {
			n++
		}
	}
	return n
}

// TrialSubscriptions returns the trials still running.
func TrialSubscriptions(subs []Subscription) []Subscription {
	var out []Subscription
	for _, sub := range subs {
		if sub.IsTrial && sub.Status.Live() {
			out = append(out, sub)
		}
	}
	return out
}

// DaysUntil returns the whole days from now until d, rounded up.
func DaysUntil(d Date, now time.Time) int {
	return int(math.Ceil(d.Sub(now).Hours() / 24))
}

// RoundCents rounds to two decimal places.
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

type Renewal struct {
	Subscription
	InDays int `json:"inDays"`
}

// Dashboard bundles the figures shown on the main screen.
type Dashboard struct {
	ActiveCount      int             `json:"activeCount"`
	MonthlySpend     float64         `json:"monthlySpend"`
	YearlyProjection float64         `json:"yearlyProjection"`
	TrialCount       int             `json:"trialCount"`
	Categories       []CategorySpend `json:"categories"`
	Upcoming         []Renewal       `json:"upcoming"`
}

func BuildDashboard(subs []Subscription, now time.Time, limit int) Dashboard {
	monthly := TotalMonthlySpend(subs)
	d := Dashboard{
		ActiveCount:      ActiveCount(subs),
		MonthlySpend:     RoundCents(monthly),
		YearlyProjection: RoundCents(monthly * 12),
		TrialCount:       TrialCount(subs),
		Categories:       CategoryBreakdown(subs),
		Upcoming:         []Renewal{},
	}
	for _, sub := range UpcomingRenewals(subs, limit) {
		d.Upcoming = append(d.Upcoming, Renewal{Subscription: sub, InDays: DaysUntil(sub.NextRenewalDate, now)})
	}
	return d
}

// Insights bundles the figures shown on the insights screen.
type Insights struct {
	MonthlyBurn   float64         `json:"monthlyBurn"`
	TrialExposure float64         `json:"trialExposure"`
	TopCategory   *CategorySpend  `json:"topCategory,omitempty"`
	Categories    []CategorySpend `json:"categories"`
	Trials        []Subscription  `json:"trials"`
}

func BuildInsights(subs []Subscription) Insights {
	in := Insights{
		MonthlyBurn:   RoundCents(TotalMonthlySpend(subs)),
		TrialExposure: RoundCents(TrialExposure(subs)),
		Categories:    InsightBreakdown(subs),
		Trials:        TrialSubscriptions(subs),
	}
	if top, ok := TopCategory(subs); ok {
		top.Value = RoundCents(top.Value)
		in.TopCategory = &top
	}
	if in.Trials == nil {
		in.Trials = []Subscription{}
	}
	return in
}
