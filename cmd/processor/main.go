package main

import (
	"fmt"
	"log/slog"
	"os"

	"txnproc/internal/config"
	"txnproc/internal/engine"
	"txnproc/internal/fileio"
	"txnproc/internal/ledger"
	"txnproc/internal/refdata"
)

// Batch mode: validate a transaction file against an account file and
// reference data, then write the balances report and the decision log.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 6 {
		fmt.Fprintf(os.Stderr, "usage: %s <users.csv> <transactions.csv> <bins.csv> <balances-out.csv> <events-out.csv>\n", os.Args[0])
		os.Exit(2)
	}
	usersPath, transactionsPath, binsPath := os.Args[1], os.Args[2], os.Args[3]
	balancesPath, eventsPath := os.Args[4], os.Args[5]

	cfg, err := config.New()
	if err != nil {
		logger.Error("failed to load configuration", "error", err.Error())
		os.Exit(1)
	}

	accounts, err := fileio.ReadAccounts(usersPath)
	if err != nil {
		logger.Error("failed to read users file", "path", usersPath, "error", err.Error())
		os.Exit(1)
	}
	transactions, err := fileio.ReadTransactions(transactionsPath)
	if err != nil {
		logger.Error("failed to read transactions file", "path", transactionsPath, "error", err.Error())
		os.Exit(1)
	}
	bins, err := fileio.ReadBinEntries(binsPath)
	if err != nil {
		logger.Error("failed to read bin table", "path", binsPath, "error", err.Error())
		os.Exit(1)
	}
	countries, err := fileio.ReadCountryCodes(cfg.CountryCodesPath)
	if err != nil {
		logger.Error("failed to read country codes", "path", cfg.CountryCodesPath, "error", err.Error())
		os.Exit(1)
	}

	ref, err := refdata.New(countries, bins)
	if err != nil {
		logger.Error("invalid reference data", "error", err.Error())
		os.Exit(1)
	}

	led, err := ledger.New(accounts)
	if err != nil {
		logger.Error("invalid account records", "error", err.Error())
		os.Exit(1)
	}

	eng := engine.New(ref, logger)
	decisions := eng.ProcessBatch(led, transactions)

	if err := fileio.WriteBalances(balancesPath, led.Snapshot()); err != nil {
		logger.Error("failed to write balances file", "path", balancesPath, "error", err.Error())
		os.Exit(1)
	}
	if err := fileio.WriteDecisions(eventsPath, decisions); err != nil {
		logger.Error("failed to write events file", "path", eventsPath, "error", err.Error())
		os.Exit(1)
	}

	logger.Info("batch complete",
		"transactions", len(transactions),
		"accounts", len(accounts),
	)
}
