package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"

	"txnproc/internal/errors"
	"txnproc/internal/models"
)

// Ledger is the in-memory collection of user accounts. It is loaded once
// per batch and mutated only through Apply, at the commit step of an
// approved transaction. The load order is preserved for the balances
// report.
type Ledger struct {
	accounts map[string]*models.Account
	order    []string
}

// New builds a ledger from loaded account records. Account ids must be
// unique.
func New(accounts []models.Account) (*Ledger, error) {
	l := &Ledger{
		accounts: make(map[string]*models.Account, len(accounts)),
		order:    make([]string, 0, len(accounts)),
	}
	for i := range accounts {
		account := accounts[i]
		if _, exists := l.accounts[account.ID]; exists {
			return nil, fmt.Errorf("account %s: %w", account.ID, errors.ErrDuplicateAccount)
		}
		l.accounts[account.ID] = &account
		l.order = append(l.order, account.ID)
	}
	return l, nil
}

// Get returns the account with the given user id.
func (l *Ledger) Get(userID string) (*models.Account, bool) {
	account, ok := l.accounts[userID]
	return account, ok
}

// Apply adjusts the balance of the given account for an approved
// transaction: deposits credit, withdrawals debit.
func (l *Ledger) Apply(userID string, kind models.TransactionKind, amount decimal.Decimal) {
	account, ok := l.accounts[userID]
	if !ok {
		return
	}
	switch kind {
	case models.KindDeposit:
		account.Balance = account.Balance.Add(amount)
	case models.KindWithdraw:
		account.Balance = account.Balance.Sub(amount)
	}
}

// Snapshot returns the current balance of every account, in load order.
func (l *Ledger) Snapshot() []models.BalanceSnapshot {
	snapshots := make([]models.BalanceSnapshot, 0, len(l.order))
	for _, id := range l.order {
		snapshots = append(snapshots, models.BalanceSnapshot{
			UserID:  id,
			Balance: l.accounts[id].Balance,
		})
	}
	return snapshots
}

// Size reports the number of accounts in the ledger.
func (l *Ledger) Size() int {
	return len(l.order)
}
