package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/meridian-erp/ledgercore/internal/app"
	"github.com/meridian-erp/ledgercore/internal/ledger"
	"github.com/meridian-erp/ledgercore/internal/platform/api"
	"github.com/meridian-erp/ledgercore/internal/shared"
)

func main() {
	partyID := flag.Int64("party", 0, "customer or supplier id")
	kind := flag.String("kind", "customer", "party kind: customer or supplier")
	from := flag.String("from", "", "start date (YYYY-MM-DD)")
	to := flag.String("to", "", "end date (YYYY-MM-DD)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.LogFormat)

	if *partyID <= 0 {
		logger.Error("party id required")
		flag.Usage()
		os.Exit(2)
	}
	partyKind := api.PartyCustomer
	ledgerResource := shared.ResourceCustomerLedger
	if *kind == string(api.PartySupplier) {
		partyKind = api.PartySupplier
		ledgerResource = shared.ResourceSupplierLedger
	}

	fromDate, err := parseDateFlag(*from)
	if err != nil {
		logger.Error("parse from date", slog.Any("error", err))
		os.Exit(2)
	}
	toDate, err := parseDateFlag(*to)
	if err != nil {
		logger.Error("parse to date", slog.Any("error", err))
		os.Exit(2)
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout)
	resolver := shared.StaticResolver{ledgerResource: shared.ViewOnly()}
	caps, err := resolver.CanFor(ctx, ledgerResource)
	if err != nil {
		logger.Error("resolve capability", slog.Any("error", err))
		os.Exit(1)
	}

	engine := ledger.NewEngine(logger, client, caps, api.PartyRef{Kind: partyKind, ID: *partyID})
	if err := engine.Load(ctx, fromDate, toDate); err != nil {
		logger.Error("load ledger", slog.Any("error", err), slog.String("message", shared.UserSafeMessage(err)))
		os.Exit(1)
	}

	printStatement(engine)
}

func parseDateFlag(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	return time.Parse(ledger.DateLayout, raw)
}

func printStatement(engine *ledger.Engine) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tREF\tBILLED\tRECEIVED\tOUTSTANDING\tCREDITED\tRUNNING")
	for _, e := range engine.Entries() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Date.Format(ledger.DateLayout),
			e.Type,
			e.PostedNumber,
			shared.FormatAmount(e.InvoiceTotal),
			shared.FormatAmount(e.TotalReceived),
			shared.FormatAmount(e.BalanceRemaining),
			shared.FormatAmount(e.CreditedAmount),
			shared.FormatAmount(e.RunningBalance),
		)
	}
	_ = w.Flush()

	s := engine.Summary()
	fmt.Println()
	fmt.Printf("Total invoiced:      %s\n", shared.FormatAmount(s.TotalInvoiced))
	fmt.Printf("Received on invoice: %s\n", shared.FormatAmount(s.ReceivedOnInvoice))
	fmt.Printf("Payments credited:   %s\n", shared.FormatAmount(s.PaymentsCredited))
	fmt.Printf("Net balance:         %s\n", shared.FormatAmount(s.NetBalance))
}
