package internal

import "time"

// DemoSubscriptions returns the fixed demo set offered during onboarding,
// with renewal dates relative to now.
func DemoSubscriptions(now time.Time) []Subscription {
	in := func(days int) Date { return NewDate(now.AddDate(0, 0, days)) }
	return []Subscription{
		{
			ID:              "1",
			Name:            "Netflix Premium",
			Cost:            19.99,
			Currency:        "USD",
			BillingCycle:    CycleMonthly,
			NextRenewalDate: in(5),
			Category:        "Entertainment",
			Status:          StatusActive,
			LogoURL:         LogoURL("netflix"),
		},
		{
			ID:              "2",
			Name:            "Adobe Creative Cloud",
			Cost:            54.99,
			Currency:        "USD",
			BillingCycle:    CycleMonthly,
			NextRenewalDate: in(15),
			Category:        "Software",
			Status:          StatusActive,
			LogoURL:         LogoURL("adobe"),
		},
		{
			ID:              "3",
			Name:            "Fitness Plus",
			Cost:            9.99,
			Currency:        "USD",
			BillingCycle:    CycleMonthly,
			NextRenewalDate: in(2),
			Category:        "Health",
			IsTrial:         true,
			Status:          StatusExpiringSoon,
			LogoURL:         LogoURL("fitness"),
		},
	}
}
