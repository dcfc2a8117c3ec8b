package internal

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultTolerance is the max price change between consecutive charges
// (0.35 = 35%) for them to still count as one subscription.
const DefaultTolerance = 0.35

// graceDays is how long past an expected charge a subscription still
// counts as running.
const graceDays = 5

// LocalExtractor finds subscriptions in statement text without calling
// an external service: payees charged once per cycle with a stable price.
type LocalExtractor struct {
	// Tolerance defaults to DefaultTolerance.
	Tolerance float64
	// Currency is used for lines that do not name one.
	Currency string
	Logger   *zap.Logger
	Now      func() time.Time
}

func (l *LocalExtractor) DetectSubscriptions(_ context.Context, freeText string) ([]DetectedSubscription, error) {
	payments := ParseStatement(freeText)
	if len(payments) == 0 {
		return nil, &ExtractionError{Err: errors.New("no dated payment lines found")}
	}

	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	tolerance := l.Tolerance
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	currency := l.Currency
	if currency == "" {
		currency = "USD"
	}

	detected := DetectRecurring(payments, tolerance, now())
	for i := range detected {
		if detected[i].Currency == "" {
			detected[i].Currency = currency
		}
	}
	if l.Logger != nil {
		l.Logger.Debug("local detection finished", zap.Int("payments", len(payments)), zap.Int("detected", len(detected)))
	}
	return detected, nil
}

func (l *LocalExtractor) CancellationText(context.Context, string) string {
	return FallbackCancellationText
}

// DetectRecurring groups charges by payee and keeps the groups that repeat
// on a weekly, monthly or yearly rhythm with amounts within tolerance of
// each other. Groups whose last charge is overdue by more than a grace
// period are treated as stopped and dropped. Results are ordered by cost,
// highest first.
func DetectRecurring(payments []Payment, tolerance float64, today time.Time) []DetectedSubscription {
	charges := FilterCharges(payments)

	byPayee := make(map[string][]Payment)
	var order []string
	for _, p := range charges {
		key := payeeKey(p.Payee)
		if _, ok := byPayee[key]; !ok {
			order = append(order, key)
		}
		byPayee[key] = append(byPayee[key], p)
	}

	var detected []DetectedSubscription
	for _, key := range order {
		group := byPayee[key]
		if len(group) < 2 {
			continue
		}
		sort.SliceStable(group, func(i, j int) bool { return group[i].Date.Before(group[j].Date) })

		cycle, ok := DetectCycle(group)
		if !ok || !AmountsWithinTolerance(group, tolerance) {
			continue
		}

		last := group[len(group)-1]
		if Lapsed(last.Date, cycle, today) {
			continue
		}
		next := NextRenewal(last.Date, cycle, today)

		detected = append(detected, DetectedSubscription{
			Name:            last.Payee,
			Cost:            RoundCents(math.Abs(last.Amount)),
			Currency:        last.Currency,
			BillingCycle:    cycle,
			NextRenewalDate: NewDate(next),
			Category:        OtherCategory,
		})
	}

	sort.SliceStable(detected, func(i, j int) bool { return detected[i].Cost > detected[j].Cost })
	return detected
}

// FilterCharges returns the money going out. Receipts and pasted lists
// often show charges as positive numbers, so when nothing is negative
// every payment counts as a charge.
func FilterCharges(payments []Payment) []Payment {
	var charges []Payment
	for _, p := range payments {
		if p.Amount < 0 {
			charges = append(charges, p)
		}
	}
	if len(charges) > 0 {
		return charges
	}
	for _, p := range payments {
		if p.Amount > 0 {
			charges = append(charges, p)
		}
	}
	return charges
}

// payeeKey folds case and drops trailing reference numbers so
// "NETFLIX.COM 4471" and "Netflix.com 9921" group together.
func payeeKey(payee string) string {
	words := strings.Fields(strings.ToLower(payee))
	for len(words) > 1 && strings.IndexFunc(words[len(words)-1], func(r rune) bool { return r < '0' || r > '9' }) == -1 {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

// DetectCycle classifies the spacing of sorted charges. Monthly charges
// must also land once per calendar month.
func DetectCycle(sorted []Payment) (BillingCycle, bool) {
	if len(sorted) < 2 {
		return "", false
	}
	var gaps []float64
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].Date.Sub(sorted[i-1].Date).Hours()/24)
	}
	sort.Float64s(gaps)
	median := gaps[len(gaps)/2]

	switch {
	case median >= 6 && median <= 8:
		return CycleWeekly, true
	case median >= 25 && median <= 35 && IsMonthlyPattern(sorted):
		return CycleMonthly, true
	case median >= 350 && median <= 380:
		return CycleYearly, true
	}
	return "", false
}

// IsMonthlyPattern checks that charges occur exactly once per calendar month.
func IsMonthlyPattern(payments []Payment) bool {
	byMonth := make(map[string]int)
	for _, p := range payments {
		byMonth[p.Date.Format("2006-01")]++
	}
	for _, count := range byMonth {
		if count != 1 {
			return false
		}
	}
	return true
}

// AmountsWithinTolerance checks consecutive amounts rather than the
// average, which copes with gradual price and exchange-rate drift.
func AmountsWithinTolerance(payments []Payment, tolerance float64) bool {
	if len(payments) < 2 {
		return len(payments) == 1
	}
	for i := 1; i < len(payments); i++ {
		prev := math.Abs(payments[i-1].Amount)
		curr := math.Abs(payments[i].Amount)
		if prev == 0 {
			return false
		}
		if math.Abs(curr-prev)/prev > tolerance {
			return false
		}
	}
	return true
}

func advance(t time.Time, cycle BillingCycle) time.Time {
	switch cycle {
	case CycleWeekly:
		return t.AddDate(0, 0, 7)
	case CycleYearly:
		return t.AddDate(1, 0, 0)
	}
	return t.AddDate(0, 1, 0)
}

// NextRenewal is the first charge date after last, by cycle, that falls
// on or after today.
func NextRenewal(last time.Time, cycle BillingCycle, today time.Time) time.Time {
	today = NewDate(today).Time
	next := advance(last, cycle)
	for next.Before(today) {
		next = advance(next, cycle)
	}
	return next
}

// Lapsed reports whether the charge expected after last is more than the
// grace period overdue.
func Lapsed(last time.Time, cycle BillingCycle, today time.Time) bool {
	expected := advance(last, cycle)
	return NewDate(today).Time.After(expected.AddDate(0, 0, graceDays))
}
