package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/shopspring/decimal"
)

const (
	txnFieldID        = "transactionId"
	txnFieldAmount    = "amount"
	txnFieldStatus    = "status"
	txnFieldIssuer    = "issuer"
	txnFieldCreatedAt = "createdAt"
)

type TransactionRepository interface {
	Create(ctx context.Context, txn *model.Transaction) error
	GetByID(ctx context.Context, id string) (*model.Transaction, error)
}

type transactionRepository struct {
	store Store
}

func NewTransactionRepository(store Store) TransactionRepository {
	return &transactionRepository{store: store}
}

func (r *transactionRepository) Create(ctx context.Context, txn *model.Transaction) error {
	if err := r.store.HSet(ctx, TransactionKey(txn.ID), transactionToHash(txn)); err != nil {
		return fmt.Errorf("failed to store transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) GetByID(ctx context.Context, id string) (*model.Transaction, error) {
	values, err := r.store.HGetAll(ctx, TransactionKey(id))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return transactionFromHash(values)
}

func transactionToHash(txn *model.Transaction) map[string]string {
	return map[string]string{
		txnFieldID:        txn.ID,
		txnFieldAmount:    txn.Amount.String(),
		txnFieldStatus:    string(txn.Status),
		txnFieldIssuer:    txn.Issuer,
		txnFieldCreatedAt: txn.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// transactionFromHash also accepts records written before status and
// createdAt existed; those are read as pending.
func transactionFromHash(values map[string]string) (*model.Transaction, error) {
	amount, err := decimal.NewFromString(values[txnFieldAmount])
	if err != nil {
		return nil, fmt.Errorf("invalid amount for transaction %q: %w", values[txnFieldID], err)
	}

	txn := &model.Transaction{
		ID:     values[txnFieldID],
		Amount: amount,
		Status: model.TransactionStatus(values[txnFieldStatus]),
		Issuer: values[txnFieldIssuer],
	}
	if txn.Status == "" {
		txn.Status = model.TransactionPending
	}
	if raw := values[txnFieldCreatedAt]; raw != "" {
		createdAt, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid createdAt for transaction %q: %w", txn.ID, err)
		}
		txn.CreatedAt = createdAt
	}
	return txn, nil
}
