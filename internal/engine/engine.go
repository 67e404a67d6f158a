package engine

import (
	"fmt"
	"log/slog"

	"txnproc/internal/ledger"
	"txnproc/internal/models"
	"txnproc/internal/refdata"
)

const reasonApproved = "OK"

// Engine evaluates transactions one at a time against the account ledger,
// the reference data and the history of already-decided transactions.
// Evaluation is strictly sequential: later transactions depend on the
// balances and approvals accumulated by earlier ones.
type Engine struct {
	ref    *refdata.ReferenceData
	logger *slog.Logger
}

func New(ref *refdata.ReferenceData, logger *slog.Logger) *Engine {
	return &Engine{
		ref:    ref,
		logger: logger,
	}
}

// History is the accumulator threaded through a batch fold. It records
// every processed transaction id and, for approved transactions, which
// user first used each payment account.
type History struct {
	processed map[string]struct{}
	owners    map[string]string
}

func NewHistory() *History {
	return &History{
		processed: make(map[string]struct{}),
		owners:    make(map[string]string),
	}
}

// Processed reports whether a transaction id has already been decided,
// regardless of outcome. A declined transaction still burns its id.
func (h *History) Processed(transactionID string) bool {
	_, ok := h.processed[transactionID]
	return ok
}

// Owner returns the user that first used a payment account in an
// approved transaction.
func (h *History) Owner(paymentAccountID string) (string, bool) {
	owner, ok := h.owners[paymentAccountID]
	return owner, ok
}

func (h *History) markProcessed(transactionID string) {
	h.processed[transactionID] = struct{}{}
}

func (h *History) recordApproval(tx models.Transaction) {
	if _, ok := h.owners[tx.PaymentAccountID]; !ok {
		h.owners[tx.PaymentAccountID] = tx.UserID
	}
}

// ProcessBatch folds the transaction stream over the ledger and a fresh
// history, producing one decision per transaction in input order.
func (e *Engine) ProcessBatch(led *ledger.Ledger, transactions []models.Transaction) []models.Decision {
	history := NewHistory()
	decisions := make([]models.Decision, 0, len(transactions))
	for _, tx := range transactions {
		decisions = append(decisions, e.Evaluate(tx, led, history))
	}
	return decisions
}

// Evaluate runs the ordered gate sequence for a single transaction and
// returns its terminal decision. Any fault escaping a gate (malformed
// payment data, panics) is caught here and downgraded to a generic
// decline, so one broken transaction never aborts the rest of the batch.
func (e *Engine) Evaluate(tx models.Transaction, led *ledger.Ledger, history *History) (decision models.Decision) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("unexpected fault while evaluating transaction",
				"transaction_id", tx.ID,
				"panic", fmt.Sprint(r),
			)
			decision = e.processingFault(tx)
		}
		history.markProcessed(tx.ID)
	}()

	decision, err := e.evaluate(tx, led, history)
	if err != nil {
		e.logger.Error("fault while evaluating transaction",
			"transaction_id", tx.ID,
			"error", err.Error(),
		)
		return e.processingFault(tx)
	}
	if decision.Status == models.StatusDeclined {
		e.logger.Debug("transaction declined",
			"transaction_id", tx.ID,
			"user_id", tx.UserID,
			"reason", decision.Reason,
		)
	}
	return decision
}

// evaluate applies the gates in strict order; the first failing gate
// declines and short-circuits the rest. A returned error is a processing
// fault, not a business decline.
func (e *Engine) evaluate(tx models.Transaction, led *ledger.Ledger, history *History) (models.Decision, error) {
	if history.Processed(tx.ID) {
		return e.declined(tx, fmt.Sprintf("Transaction %s already processed (id non-unique)", tx.ID)), nil
	}

	account, ok := led.Get(tx.UserID)
	if !ok {
		return e.declined(tx, fmt.Sprintf("User %s not found in Users", tx.UserID)), nil
	}
	if account.Frozen {
		return e.declined(tx, fmt.Sprintf("User %s is frozen", tx.UserID)), nil
	}

	if tx.Amount.Sign() <= 0 {
		return e.declined(tx, fmt.Sprintf("Amount %s is invalid", tx.Amount.StringFixed(2))), nil
	}

	switch tx.Kind {
	case models.KindDeposit:
		if tx.Amount.LessThan(account.MinDeposit) {
			return e.declined(tx, fmt.Sprintf("Amount %s is under the deposit limit of %s",
				tx.Amount.StringFixed(2), account.MinDeposit.StringFixed(2))), nil
		}
		if tx.Amount.GreaterThan(account.MaxDeposit) {
			return e.declined(tx, fmt.Sprintf("Amount %s is over the deposit limit of %s",
				tx.Amount.StringFixed(2), account.MaxDeposit.StringFixed(2))), nil
		}
	case models.KindWithdraw:
		if tx.Amount.LessThan(account.MinWithdraw) {
			return e.declined(tx, fmt.Sprintf("Amount %s is under the withdraw limit of %s",
				tx.Amount.StringFixed(2), account.MinWithdraw.StringFixed(2))), nil
		}
		if tx.Amount.GreaterThan(account.MaxWithdraw) {
			return e.declined(tx, fmt.Sprintf("Amount %s is over the withdraw limit of %s",
				tx.Amount.StringFixed(2), account.MaxWithdraw.StringFixed(2))), nil
		}
		if tx.Amount.GreaterThan(account.Balance) {
			return e.declined(tx, fmt.Sprintf("Not enough balance for withdrawal %s - balance is too low at %s",
				tx.Amount.StringFixed(2), account.Balance.StringFixed(2))), nil
		}
		// Withdrawals are only allowed against a payment account that has
		// previously been approved for a deposit.
		if _, used := history.Owner(tx.PaymentAccountID); !used {
			return e.declined(tx, fmt.Sprintf("Cannot withdraw with a new account %s", tx.PaymentAccountID)), nil
		}
	default:
		return e.declined(tx, fmt.Sprintf("Type %s is not supported", tx.Kind)), nil
	}

	switch tx.Method {
	case models.MethodTransfer:
		if reason := validateIBAN(tx.PaymentAccountID, account.CountryCode); reason != "" {
			return e.declined(tx, reason), nil
		}
	case models.MethodCard:
		reason, err := e.validateCard(tx.PaymentAccountID, account.CountryCode)
		if err != nil {
			return models.Decision{}, err
		}
		if reason != "" {
			return e.declined(tx, reason), nil
		}
	default:
		return e.declined(tx, fmt.Sprintf("Method %s is not supported", tx.Method)), nil
	}

	// A payment account approved for one user can never be used by another.
	if owner, ok := history.Owner(tx.PaymentAccountID); ok && owner != tx.UserID {
		return e.declined(tx, fmt.Sprintf("Account %s is in use by another user", tx.PaymentAccountID)), nil
	}

	// Commit: record the approval and adjust the balance atomically with
	// respect to the fold. No partial mutation is visible before this point.
	history.recordApproval(tx)
	led.Apply(tx.UserID, tx.Kind, tx.Amount)

	return models.Decision{
		TransactionID: tx.ID,
		Status:        models.StatusApproved,
		Reason:        reasonApproved,
	}, nil
}

func (e *Engine) declined(tx models.Transaction, reason string) models.Decision {
	return models.Decision{
		TransactionID: tx.ID,
		Status:        models.StatusDeclined,
		Reason:        reason,
	}
}

func (e *Engine) processingFault(tx models.Transaction) models.Decision {
	return e.declined(tx, fmt.Sprintf("Error processing transaction %s", tx.ID))
}
