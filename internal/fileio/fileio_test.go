package fileio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txnproc/internal/models"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadAccounts(t *testing.T) {
	path := writeFile(t, "users.csv",
		"user_id,username,balance,country,frozen,deposit_min,deposit_max,withdraw_min,withdraw_max\n"+
			"U1,alice,100.50,LT,0,10.00,1000.00,10.00,500.00\n"+
			"U2,bob,0.00,DE,1,5.00,200.00,5.00,100.00\n")

	accounts, err := ReadAccounts(path)
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "U1", accounts[0].ID)
	assert.Equal(t, "alice", accounts[0].DisplayName)
	assert.Equal(t, "LT", accounts[0].CountryCode)
	assert.False(t, accounts[0].Frozen)
	assert.Equal(t, "100.50", accounts[0].Balance.StringFixed(2))
	assert.Equal(t, "1000.00", accounts[0].MaxDeposit.StringFixed(2))

	assert.True(t, accounts[1].Frozen)
}

func TestReadAccounts_BadAmount(t *testing.T) {
	path := writeFile(t, "users.csv",
		"user_id,username,balance,country,frozen,deposit_min,deposit_max,withdraw_min,withdraw_max\n"+
			"U1,alice,notanumber,LT,0,10,1000,10,500\n")

	_, err := ReadAccounts(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balance")
}

func TestReadTransactions(t *testing.T) {
	path := writeFile(t, "transactions.csv",
		"transaction_id,user_id,type,amount,method,account_number\n"+
			"T1,U1,DEPOSIT,100.00,TRANSFER,LT601010012345678901\n"+
			"T2,U1,WITHDRAW,50.00,CARD,4123456789012345\n")

	transactions, err := ReadTransactions(path)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, "T1", transactions[0].ID)
	assert.Equal(t, models.KindDeposit, transactions[0].Kind)
	assert.Equal(t, models.MethodTransfer, transactions[0].Method)
	assert.Equal(t, "LT601010012345678901", transactions[0].PaymentAccountID)
	assert.Equal(t, models.KindWithdraw, transactions[1].Kind)
	assert.Equal(t, models.MethodCard, transactions[1].Method)
}

func TestReadBinEntries(t *testing.T) {
	path := writeFile(t, "bins.csv",
		"name,range_from,range_to,type,country\n"+
			"LHV,4123450000,4123459999,DC,LTU\n")

	entries, err := ReadBinEntries(path)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, "LHV", entries[0].Label)
	assert.Equal(t, uint64(4123450000), entries[0].RangeLow)
	assert.Equal(t, uint64(4123459999), entries[0].RangeHigh)
	assert.Equal(t, "DC", entries[0].CardType)
	assert.Equal(t, "LTU", entries[0].IssuerCountryCode)
}

func TestReadCountryCodes(t *testing.T) {
	path := writeFile(t, "country_codes.txt",
		"Lithuania\tLT\tLTU\tother\n"+
			"Germany\tDE\tDEU\n"+
			"short line\n")

	codes, err := ReadCountryCodes(path)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"LT": "LTU", "DE": "DEU"}, codes)
}

func TestWriteBalances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balances.csv")

	err := WriteBalances(path, []models.BalanceSnapshot{
		{UserID: "U1", Balance: decimal.RequireFromString("50")},
		{UserID: "U2", Balance: decimal.RequireFromString("-3.5")},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "user_id,balance\nU1,50.00\nU2,-3.50\n", string(content))
}

func TestWriteDecisions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.csv")

	err := WriteDecisions(path, []models.Decision{
		{TransactionID: "T1", Status: models.StatusApproved, Reason: "OK"},
		{TransactionID: "T2", Status: models.StatusDeclined, Reason: "User U9 not found in Users"},
	})
	require.NoError(t, err)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"transaction_id,status,message\n"+
			"T1,APPROVED,OK\n"+
			"T2,DECLINED,User U9 not found in Users\n",
		string(content))
}
