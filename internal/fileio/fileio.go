// Package fileio holds the delimited-file adapters used by the batch CLI.
// These are plain I/O collaborators: they parse input files into domain
// records and serialize engine output, with no decision logic of their own.
package fileio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"txnproc/internal/models"
)

// ReadAccounts parses the users file: one header row, then
// id,name,balance,country,frozen,min_deposit,max_deposit,min_withdraw,max_withdraw.
// The frozen column is "0" for active, anything else for frozen.
func ReadAccounts(path string) ([]models.Account, error) {
	rows, err := readCSV(path, 9)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.Account, 0, len(rows))
	for i, row := range rows {
		balance, err := parseAmount(path, i, "balance", row[2])
		if err != nil {
			return nil, err
		}
		minDeposit, err := parseAmount(path, i, "min_deposit", row[5])
		if err != nil {
			return nil, err
		}
		maxDeposit, err := parseAmount(path, i, "max_deposit", row[6])
		if err != nil {
			return nil, err
		}
		minWithdraw, err := parseAmount(path, i, "min_withdraw", row[7])
		if err != nil {
			return nil, err
		}
		maxWithdraw, err := parseAmount(path, i, "max_withdraw", row[8])
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, models.Account{
			ID:          row[0],
			DisplayName: row[1],
			Balance:     balance,
			CountryCode: row[3],
			Frozen:      row[4] != "0",
			MinDeposit:  minDeposit,
			MaxDeposit:  maxDeposit,
			MinWithdraw: minWithdraw,
			MaxWithdraw: maxWithdraw,
		})
	}
	return accounts, nil
}

// ReadTransactions parses the transactions file: one header row, then
// id,user_id,type,amount,method,account_number.
func ReadTransactions(path string) ([]models.Transaction, error) {
	rows, err := readCSV(path, 6)
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(rows))
	for i, row := range rows {
		amount, err := parseAmount(path, i, "amount", row[3])
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, models.Transaction{
			ID:               row[0],
			UserID:           row[1],
			Kind:             models.TransactionKind(row[2]),
			Amount:           amount,
			Method:           models.PaymentMethod(row[4]),
			PaymentAccountID: row[5],
		})
	}
	return transactions, nil
}

// ReadBinEntries parses the BIN table file: one header row, then
// name,range_from,range_to,type,country.
func ReadBinEntries(path string) ([]models.BinEntry, error) {
	rows, err := readCSV(path, 5)
	if err != nil {
		return nil, err
	}

	entries := make([]models.BinEntry, 0, len(rows))
	for i, row := range rows {
		low, err := strconv.ParseUint(row[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid range_from %q: %w", path, i+2, row[1], err)
		}
		high, err := strconv.ParseUint(row[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: invalid range_to %q: %w", path, i+2, row[2], err)
		}
		entries = append(entries, models.BinEntry{
			Label:             row[0],
			RangeLow:          low,
			RangeHigh:         high,
			CardType:          row[3],
			IssuerCountryCode: row[4],
		})
	}
	return entries, nil
}

// ReadCountryCodes parses the tab-separated country reference file. Each
// line carries at least three columns; the second (holder country code)
// maps to the third (card issuer country code).
func ReadCountryCodes(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open country codes: %w", err)
	}
	defer f.Close()

	codes := make(map[string]string)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), "\t")
		if len(parts) < 3 {
			continue
		}
		codes[parts[1]] = parts[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read country codes: %w", err)
	}
	return codes, nil
}

// WriteBalances writes the final balances report, one row per account in
// ledger order, amounts fixed to two decimals.
func WriteBalances(path string, snapshots []models.BalanceSnapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create balances file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"user_id", "balance"}); err != nil {
		return fmt.Errorf("write balances header: %w", err)
	}
	for _, snapshot := range snapshots {
		if err := w.Write([]string{snapshot.UserID, snapshot.Balance.StringFixed(2)}); err != nil {
			return fmt.Errorf("write balance row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteDecisions writes the decision log, one row per processed
// transaction in input order.
func WriteDecisions(path string, decisions []models.Decision) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create events file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"transaction_id", "status", "message"}); err != nil {
		return fmt.Errorf("write events header: %w", err)
	}
	for _, decision := range decisions {
		if err := w.Write([]string{decision.TransactionID, string(decision.Status), decision.Reason}); err != nil {
			return fmt.Errorf("write event row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func readCSV(path string, fields int) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	// First row is the header.
	return rows[1:], nil
}

func parseAmount(path string, row int, field, value string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%s row %d: invalid %s %q: %w", path, row+2, field, value, err)
	}
	return amount, nil
}
