package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the closed set of supported transaction types.
// Anything outside this set is declined by the engine.
type TransactionKind string

const (
	KindDeposit  TransactionKind = "DEPOSIT"
	KindWithdraw TransactionKind = "WITHDRAW"
)

// PaymentMethod is the closed set of supported payment rails.
type PaymentMethod string

const (
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodCard     PaymentMethod = "CARD"
)

type DecisionStatus string

const (
	StatusApproved DecisionStatus = "APPROVED"
	StatusDeclined DecisionStatus = "DECLINED"
)

// CardTypeDebit is the only card type accepted for card payments.
const CardTypeDebit = "DC"

// Account is a user record in the ledger. Balance is the only field
// mutated after load, and only by an approved transaction.
type Account struct {
	ID          string          `json:"id"`
	DisplayName string          `json:"display_name"`
	Balance     decimal.Decimal `json:"balance"`
	CountryCode string          `json:"country_code"`
	Frozen      bool            `json:"frozen"`
	MinDeposit  decimal.Decimal `json:"min_deposit"`
	MaxDeposit  decimal.Decimal `json:"max_deposit"`
	MinWithdraw decimal.Decimal `json:"min_withdraw"`
	MaxWithdraw decimal.Decimal `json:"max_withdraw"`
}

// Transaction is a single validation request. PaymentAccountID holds an
// IBAN for TRANSFER or a card number for CARD and is interpreted only by
// the method-specific validation.
type Transaction struct {
	ID               string          `json:"id"`
	UserID           string          `json:"user_id"`
	Kind             TransactionKind `json:"kind"`
	Amount           decimal.Decimal `json:"amount"`
	Method           PaymentMethod   `json:"method"`
	PaymentAccountID string          `json:"payment_account_id"`
}

// BinEntry maps an inclusive card-prefix range to a card type and the
// issuing country. Ranges are required to be non-overlapping.
type BinEntry struct {
	Label             string `json:"label"`
	RangeLow          uint64 `json:"range_low"`
	RangeHigh         uint64 `json:"range_high"`
	CardType          string `json:"card_type"`
	IssuerCountryCode string `json:"issuer_country_code"`
}

// Decision is the terminal outcome for one processed transaction.
type Decision struct {
	TransactionID string         `json:"transaction_id"`
	Status        DecisionStatus `json:"status"`
	Reason        string         `json:"reason"`
}

// BalanceSnapshot is one line of the final balances report.
type BalanceSnapshot struct {
	UserID  string          `json:"user_id"`
	Balance decimal.Decimal `json:"balance"`
}

type ProcessBatchRequest struct {
	Accounts     []Account     `json:"accounts"`
	Transactions []Transaction `json:"transactions"`
}

type ProcessBatchResult struct {
	BatchID   string            `json:"batch_id"`
	Decisions []Decision        `json:"decisions"`
	Balances  []BalanceSnapshot `json:"balances"`
}

type BatchRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
