package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	tests := []struct {
		name     string
		username string
		hash     string
		balance  decimal.Decimal
		wantErr  error
	}{
		{"valid", "alice", "hash", decimal.NewFromInt(1000), nil},
		{"zero balance", "alice", "hash", decimal.Zero, nil},
		{"empty username", "", "hash", decimal.Zero, ErrEmptyUsername},
		{"empty hash", "alice", "", decimal.Zero, ErrEmptyPasswordHash},
		{"negative balance", "alice", "hash", decimal.NewFromInt(-1), ErrNegativeBalance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := NewUser(tt.username, tt.hash, tt.balance)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, user.Username)
			assert.True(t, tt.balance.Equal(user.Balance))
		})
	}
}

func TestUser_CanAfford(t *testing.T) {
	user := &User{Balance: decimal.RequireFromString("100.50")}

	assert.True(t, user.CanAfford(decimal.RequireFromString("100.50")))
	assert.True(t, user.CanAfford(decimal.NewFromInt(1)))
	assert.False(t, user.CanAfford(decimal.RequireFromString("100.51")))
}

func TestNewTransaction(t *testing.T) {
	now := time.Now()

	txn, err := NewTransaction("tx-1", decimal.NewFromInt(300), "bob", now)
	require.NoError(t, err)
	assert.Equal(t, TransactionPending, txn.Status)
	assert.False(t, txn.Settled())
	assert.Equal(t, Details{TransactionID: "tx-1", Amount: decimal.NewFromInt(300)}, txn.Details())

	_, err = NewTransaction("", decimal.NewFromInt(300), "bob", now)
	assert.ErrorIs(t, err, ErrEmptyTransactionID)

	_, err = NewTransaction("tx-2", decimal.Zero, "bob", now)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)

	_, err = NewTransaction("tx-3", decimal.NewFromInt(-5), "bob", now)
	assert.ErrorIs(t, err, ErrNonPositiveAmount)
}

func TestNewPayment(t *testing.T) {
	txn := &Transaction{ID: "tx-1", Amount: decimal.NewFromInt(300)}
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))

	payment, err := NewPayment("pay-1", txn, at)
	require.NoError(t, err)
	assert.Equal(t, "tx-1", payment.TransactionID)
	assert.True(t, payment.Amount.Equal(decimal.NewFromInt(300)))
	assert.Equal(t, time.UTC, payment.Timestamp.Location())

	_, err = NewPayment("", txn, at)
	assert.ErrorIs(t, err, ErrEmptyPaymentID)

	_, err = NewPayment("pay-2", nil, at)
	assert.ErrorIs(t, err, ErrEmptyTransactionID)
}

func TestCheckAmountRange(t *testing.T) {
	tests := []struct {
		raw     string
		wantErr bool
	}{
		{"0.01", false},
		{"300", false},
		{"999999999999999999", false},
		{"0.00000001", false},
		{"1000000000000000000", true},
		{"0.000000001", true},
		{"1e50000000", true},
		{"1e-50000000", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			err := CheckAmountRange(decimal.RequireFromString(tt.raw))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrAmountOutOfRange)
				return
			}
			assert.NoError(t, err)
		})
	}

	_, err := NewTransaction("tx-1", decimal.RequireFromString("1e50000000"), "bob", time.Now())
	assert.ErrorIs(t, err, ErrAmountOutOfRange)

	_, err = NewUser("alice", "hash", decimal.RequireFromString("1e50000000"))
	assert.ErrorIs(t, err, ErrAmountOutOfRange)
}
