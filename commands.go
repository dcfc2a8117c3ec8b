package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gigurra/subtrack/internal"
	"github.com/google/uuid"
)

type DashboardParams struct {
	Config string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Output string `descr:"Output format" alts:"table,json" strict:"true" default:"table" short:"o"`
}

func (a *app) dashboard(_ context.Context, p *DashboardParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	d := internal.BuildDashboard(a.store.Subscriptions(), a.now(), a.cfg.UpcomingLimit)
	if p.Output == "json" {
		return internal.PrintJSON(a.stdout, d)
	}
	internal.PrintDashboard(a.stdout, d, a.currency)
	return nil
}

type ListParams struct {
	Config string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Output string `descr:"Output format" alts:"table,json" strict:"true" default:"table" short:"o"`
	Show   string `descr:"Which subscriptions to show" alts:"all,active,canceled,trials" strict:"true" default:"all"`
}

func (a *app) list(_ context.Context, p *ListParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	all := a.store.Subscriptions()
	shown := internal.FilterByStatus(all, p.Show)
	if p.Output == "json" {
		return internal.PrintJSON(a.stdout, internal.NewListJSON(shown, a.currency))
	}
	internal.PrintSubscriptionsTable(a.stdout, all, shown, p.Show, a.currency)
	return nil
}

type InsightsParams struct {
	Config string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Output string `descr:"Output format" alts:"table,json" strict:"true" default:"table" short:"o"`
}

func (a *app) insights(_ context.Context, p *InsightsParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	in := internal.BuildInsights(a.store.Subscriptions())
	if p.Output == "json" {
		return internal.PrintJSON(a.stdout, in)
	}
	internal.PrintInsights(a.stdout, in, a.currency)
	return nil
}

type ImportParams struct {
	Config   string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Source   string `descr:"Text file, .xlsx export or - for stdin. Prefix with a format (text:, xlsx:, transactions-json:, handelsbanken-xlsx:) to force it" positional:"true"`
	Detected bool   `descr:"Source is an already extracted JSON array; skip the extraction service" optional:"true"`
}

func (a *app) importSubscriptions(ctx context.Context, p *ImportParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	text, err := internal.ReadInput(p.Source, a.stdin)
	if err != nil {
		return err
	}

	importer := &internal.Importer{Store: a.store, Logger: a.log}
	var added []internal.Subscription
	if p.Detected {
		detected, perr := internal.ParseDetected(text)
		if perr != nil {
			return fmt.Errorf("reading detected subscriptions: %w", perr)
		}
		added, err = importer.ImportDetected(ctx, detected)
	} else {
		importer.Extractor = a.extractor(ctx)
		fmt.Fprintln(a.stderr, "Analyzing...")
		added, err = importer.Import(ctx, text)
	}
	if err := a.saved(err); err != nil {
		return err
	}

	if len(added) == 0 {
		fmt.Fprintln(a.stdout, "No subscriptions found in the input.")
		return nil
	}
	fmt.Fprintf(a.stdout, "Added %d subscriptions:\n", len(added))
	for _, sub := range added {
		trial := ""
		if sub.IsTrial {
			trial = " (trial)"
		}
		fmt.Fprintf(a.stdout, "  %s  %s%s, %s %s, renews %s\n",
			sub.ID, sub.Name, trial, internal.FormatCost(sub), strings.ToLower(string(sub.BillingCycle)), sub.NextRenewalDate)
	}
	return nil
}

type AddParams struct {
	Config   string  `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Name     string  `descr:"Service name"`
	Cost     float64 `descr:"Cost per billing cycle"`
	Currency string  `descr:"Currency code or symbol" default:"USD"`
	Cycle    string  `descr:"Billing cycle" alts:"Monthly,Yearly,Weekly" strict:"true" default:"Monthly"`
	Renewal  string  `descr:"Next renewal date (YYYY-MM-DD)"`
	Category string  `descr:"Category" default:"Other"`
	Trial    bool    `descr:"Mark as a free trial" optional:"true"`
}

func (a *app) add(ctx context.Context, p *AddParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	cycle, err := internal.ParseBillingCycle(p.Cycle)
	if err != nil {
		return err
	}
	renewal, err := internal.ParseDate(p.Renewal)
	if err != nil {
		return err
	}
	category, err := internal.NewCategory(p.Category)
	if err != nil {
		return err
	}
	status := internal.StatusActive
	if p.Trial {
		status = internal.StatusExpiringSoon
	}
	sub := internal.Subscription{
		ID:              uuid.NewString(),
		Name:            strings.TrimSpace(p.Name),
		Cost:            p.Cost,
		Currency:        strings.TrimSpace(p.Currency),
		BillingCycle:    cycle,
		NextRenewalDate: renewal,
		Category:        category,
		IsTrial:         p.Trial,
		Status:          status,
		LogoURL:         internal.LogoURL(p.Name),
	}
	if err := a.saved(a.store.Add(ctx, sub)); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Added %s (%s)\n", sub.Name, sub.ID)
	return nil
}

type CancelParams struct {
	Config  string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	ID      string `descr:"Subscription id or unique id prefix" positional:"true"`
	NoEmail bool   `descr:"Skip generating the cancellation email" optional:"true"`
}

func (a *app) cancel(ctx context.Context, p *CancelParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	id, err := internal.ResolveID(a.store.Subscriptions(), p.ID)
	if err != nil {
		return err
	}
	sub, _ := a.store.Get(id)

	if !p.NoEmail {
		email := a.extractor(ctx).CancellationText(ctx, sub.Name)
		fmt.Fprintf(a.stdout, "Send this to %s to cancel:\n\n%s\n\n", sub.Name, email)
	}

	if err := a.saved(a.store.Cancel(ctx, id)); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Marked %s as canceled.\n", sub.Name)
	return nil
}

type RecategorizeParams struct {
	Config   string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	ID       string `descr:"Subscription id or unique id prefix" positional:"true"`
	Category string `descr:"New category" positional:"true"`
}

func (a *app) recategorize(ctx context.Context, p *RecategorizeParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	id, err := internal.ResolveID(a.store.Subscriptions(), p.ID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(p.Category) == "" {
		fmt.Fprintln(a.stdout, "Category unchanged.")
		return nil
	}
	if err := a.saved(a.store.Recategorize(ctx, id, p.Category)); err != nil {
		return err
	}
	sub, _ := a.store.Get(id)
	fmt.Fprintf(a.stdout, "%s is now in %s.\n", sub.Name, sub.Category)
	return nil
}

type OnboardParams struct {
	Config string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Demo   bool   `descr:"Load demo subscriptions" optional:"true"`
}

func (a *app) onboard(ctx context.Context, p *OnboardParams) error {
	if err := a.saved(a.store.CompleteOnboarding(ctx, p.Demo)); err != nil {
		return err
	}
	if p.Demo {
		fmt.Fprintf(a.stdout, "Welcome! Loaded %d demo subscriptions.\n", len(a.store.Subscriptions()))
	} else {
		fmt.Fprintln(a.stdout, "Welcome! Run `subtrack import` to add your subscriptions.")
	}
	return nil
}

type ResetParams struct {
	Config string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Yes    bool   `descr:"Confirm deleting all data" optional:"true"`
}

func (a *app) reset(ctx context.Context, p *ResetParams) error {
	if !p.Yes {
		return errors.New("this deletes all data and cannot be undone; re-run with --yes")
	}
	if err := a.saved(a.store.Reset(ctx)); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "All data cleared. Run `subtrack onboard` to start again.")
	return nil
}

type ExportParams struct {
	Config string `descr:"Path to config file (default ~/.subtrack/config.yaml)" optional:"true"`
	Path   string `descr:"Output file" positional:"true"`
	Format string `descr:"Export format (default: from file extension)" alts:"json,xlsx" optional:"true"`
}

func (a *app) export(_ context.Context, p *ExportParams) error {
	if err := a.requireOnboarded(); err != nil {
		return err
	}
	format, err := internal.ExportFormat(p.Format, p.Path)
	if err != nil {
		return err
	}
	subs := a.store.Subscriptions()
	switch format {
	case "xlsx":
		err = internal.ExportXLSX(p.Path, subs)
	default:
		err = internal.ExportJSON(p.Path, subs, a.currency)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Exported %d subscriptions to %s\n", len(subs), p.Path)
	return nil
}

type ConfigInitParams struct {
	Config string `descr:"Path to write (default ~/.subtrack/config.yaml)" optional:"true"`
	Force  bool   `descr:"Overwrite an existing file" optional:"true"`
}

func configInit(p *ConfigInitParams) error {
	path := configPathOrDefault(p.Config)
	if _, err := os.Stat(path); err == nil && !p.Force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := internal.NewDefaultConfig().Save(path); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}
