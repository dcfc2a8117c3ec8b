package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

type BillingCycle string

const (
	CycleMonthly BillingCycle = "Monthly"
	CycleYearly  BillingCycle = "Yearly"
	CycleWeekly  BillingCycle = "Weekly"
)

// BillingCycles lists the accepted cycles in schema order.
var BillingCycles = []BillingCycle{CycleMonthly, CycleYearly, CycleWeekly}

func (c BillingCycle) Valid() bool {
	switch c {
	case CycleMonthly, CycleYearly, CycleWeekly:
		return true
	}
	return false
}

// ParseBillingCycle accepts any casing of a known cycle name.
func ParseBillingCycle(s string) (BillingCycle, error) {
	for _, c := range BillingCycles {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown billing cycle %q (want one of %v)", s, BillingCycles)
}

type Status string

const (
	StatusActive       Status = "Active"
	StatusCanceled     Status = "Canceled"
	StatusExpiringSoon Status = "Expiring Soon"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusCanceled, StatusExpiringSoon:
		return true
	}
	return false
}

// Live reports whether the status counts towards spend (anything but Canceled).
func (s Status) Live() bool {
	return s == StatusActive || s == StatusExpiringSoon
}

// Category is a free-form, non-empty, trimmed label.
type Category string

// NewCategory trims s and rejects empty labels.
func NewCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyCategory
	}
	return Category(s), nil
}

func (c Category) String() string { return string(c) }

// Date is a calendar date. It is stored as YYYY-MM-DD but also accepts
// full RFC 3339 timestamps when decoding older state.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses YYYY-MM-DD or an RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return Date{t}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return Date{}, fmt.Errorf("parsing date %q: %w", s, err)
	}
	return NewDate(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Subscription is the single persisted record type. JSON keys match the
// persisted layout and must not change.
type Subscription struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Cost            float64      `json:"cost"`
	Currency        string       `json:"currency"`
	BillingCycle    BillingCycle `json:"billingCycle"`
	NextRenewalDate Date         `json:"nextRenewalDate"`
	Category        Category     `json:"category"`
	IsTrial         bool         `json:"isTrial"`
	Status          Status       `json:"status"`
	LogoURL         string       `json:"logoUrl,omitempty"`
}

// Validate checks the field constraints a record must satisfy before it
// enters the store.
func (s Subscription) Validate() error {
	switch {
	case strings.TrimSpace(s.ID) == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case strings.TrimSpace(s.Name) == "":
		return fmt.Errorf("%w: record %s has no name", ErrInvalidRecord, s.ID)
	case !validCost(s.Cost):
		return fmt.Errorf("%w: record %s has cost %v", ErrInvalidRecord, s.ID, s.Cost)
	case !s.BillingCycle.Valid():
		return fmt.Errorf("%w: record %s has billing cycle %q", ErrInvalidRecord, s.ID, s.BillingCycle)
	case !s.Status.Valid():
		return fmt.Errorf("%w: record %s has status %q", ErrInvalidRecord, s.ID, s.Status)
	}
	return nil
}

// validCost rejects negative, NaN and infinite amounts. The latter two
// cannot be stored as JSON.
func validCost(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// DetectedSubscription is one item returned by the extraction service,
// before an id and status have been assigned.
type DetectedSubscription struct {
	Name            string       `json:"name"`
	Cost            float64      `json:"cost"`
	Currency        string       `json:"currency"`
	BillingCycle    BillingCycle `json:"billingCycle"`
	NextRenewalDate Date         `json:"nextRenewalDate"`
	Category        string       `json:"category"`
	IsTrial         bool         `json:"isTrial"`
}
