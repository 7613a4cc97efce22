package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrEmptyPaymentID = errors.New("payment id is required")

type Payment struct {
	ID            string          `json:"paymentId"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	Timestamp     time.Time       `json:"timestamp"`
}

func NewPayment(id string, txn *Transaction, at time.Time) (*Payment, error) {
	if id == "" {
		return nil, ErrEmptyPaymentID
	}
	if txn == nil || txn.ID == "" {
		return nil, ErrEmptyTransactionID
	}
	return &Payment{
		ID:            id,
		TransactionID: txn.ID,
		Amount:        txn.Amount,
		Timestamp:     at.UTC(),
	}, nil
}

// Settlement is the outcome of paying a transaction.
type Settlement struct {
	Payment    *Payment
	NewBalance decimal.Decimal
}
