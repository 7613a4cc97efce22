package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "PENDING"
	TransactionSettled TransactionStatus = "SETTLED"
)

var (
	ErrEmptyTransactionID = errors.New("transaction id is required")
	ErrNonPositiveAmount  = errors.New("amount must be greater than zero")
)

// Transaction is a payment request waiting to be paid by whoever scans it.
type Transaction struct {
	ID        string            `json:"transactionId"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    TransactionStatus `json:"status"`
	Issuer    string            `json:"issuer,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

func NewTransaction(id string, amount decimal.Decimal, issuer string, createdAt time.Time) (*Transaction, error) {
	if id == "" {
		return nil, ErrEmptyTransactionID
	}
	if !amount.IsPositive() {
		return nil, ErrNonPositiveAmount
	}
	if err := CheckAmountRange(amount); err != nil {
		return nil, err
	}
	return &Transaction{
		ID:        id,
		Amount:    amount,
		Status:    TransactionPending,
		Issuer:    issuer,
		CreatedAt: createdAt,
	}, nil
}

func (t *Transaction) Settled() bool {
	return t.Status == TransactionSettled
}

// Details is the part of a transaction encoded into the QR code.
type Details struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
}

func (t *Transaction) Details() Details {
	return Details{TransactionID: t.ID, Amount: t.Amount}
}
