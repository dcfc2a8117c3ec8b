package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/GiGurra/boa/pkg/boa"
)

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func main() {
	boa.CmdT[boa.NoParams]{
		Use:   "subtrack",
		Short: "Track subscriptions detected from pasted statements and receipts",
		Long: "Paste bank statements or email receipts; an AI extraction service turns them into " +
			"subscription records stored locally, with dashboards, insights and cancellation help.",
		SubCmds: boa.SubCmds(
			boa.NewCmdT[DashboardParams]("dashboard").
				WithShort("Show spend totals, categories and upcoming renewals").
				WithRunFunc(func(p *DashboardParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.dashboard(ctx, p) })
				}),
			boa.NewCmdT[ListParams]("list").
				WithShort("List tracked subscriptions").
				WithRunFunc(func(p *ListParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.list(ctx, p) })
				}),
			boa.NewCmdT[InsightsParams]("insights").
				WithShort("Show monthly burn, trial exposure and top category").
				WithRunFunc(func(p *InsightsParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.insights(ctx, p) })
				}),
			boa.NewCmdT[ImportParams]("import").
				WithShort("Detect subscriptions in pasted text and add them").
				WithLong("Reads a text file, an .xlsx export or stdin (-), sends the text with today's date to the "+
					"extraction service and appends every detected subscription. Nothing is added when detection fails.").
				WithRunFunc(func(p *ImportParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.importSubscriptions(ctx, p) })
				}),
			boa.NewCmdT[AddParams]("add").
				WithShort("Add a subscription by hand").
				WithRunFunc(func(p *AddParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.add(ctx, p) })
				}),
			boa.NewCmdT[CancelParams]("cancel").
				WithShort("Draft a cancellation email and mark a subscription canceled").
				WithRunFunc(func(p *CancelParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.cancel(ctx, p) })
				}),
			boa.NewCmdT[RecategorizeParams]("recategorize").
				WithShort("Move a subscription to another category").
				WithRunFunc(func(p *RecategorizeParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.recategorize(ctx, p) })
				}),
			boa.NewCmdT[OnboardParams]("onboard").
				WithShort("Finish first-time setup, optionally with demo data").
				WithRunFunc(func(p *OnboardParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.onboard(ctx, p) })
				}),
			boa.NewCmdT[ResetParams]("reset").
				WithShort("Delete all subscriptions and start over").
				WithRunFunc(func(p *ResetParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.reset(ctx, p) })
				}),
			boa.NewCmdT[ExportParams]("export").
				WithShort("Export subscriptions to JSON or Excel").
				WithRunFunc(func(p *ExportParams) {
					run(p.Config, func(ctx context.Context, a *app) error { return a.export(ctx, p) })
				}),
			boa.CmdT[boa.NoParams]{
				Use:   "config",
				Short: "Manage the config file",
				SubCmds: boa.SubCmds(
					boa.NewCmdT[ConfigInitParams]("init").
						WithShort("Write a default config file").
						WithRunFunc(func(p *ConfigInitParams) {
							if err := configInit(p); err != nil {
								fmt.Fprintf(os.Stderr, "Error: %v\n", err)
								os.Exit(1)
							}
						}),
				),
			},
		),
	}.Run()
}
