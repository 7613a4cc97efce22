package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
)

// SettleFunc decides whether user may pay txn. Either argument is nil when
// the record does not exist. On success it debits user.Balance, marks txn
// as needed and returns the payment to record.
type SettleFunc func(user *model.User, txn *model.Transaction) (*model.Payment, error)

type PaymentRepository interface {
	// Settle reads the transaction and the payer, runs apply and stores the
	// new balance, the transaction status and the payment as one atomic step.
	Settle(ctx context.Context, username, transactionID string, apply SettleFunc) (*model.Settlement, error)
	GetByUsername(ctx context.Context, username string) ([]*model.Payment, error)
}

type paymentRepository struct {
	store Store
}

func NewPaymentRepository(store Store) PaymentRepository {
	return &paymentRepository{store: store}
}

func (r *paymentRepository) Settle(ctx context.Context, username, transactionID string, apply SettleFunc) (*model.Settlement, error) {
	userKey := UserKey(username)
	txnKey := TransactionKey(transactionID)

	var settlement *model.Settlement
	err := r.store.Atomic(ctx, []string{txnKey, userKey}, func(tx Tx) error {
		settlement = nil

		txn, err := readTransaction(tx, txnKey)
		if err != nil {
			return err
		}
		user, err := readUser(tx, userKey)
		if err != nil {
			return err
		}

		payment, err := apply(user, txn)
		if err != nil {
			return err
		}

		encoded, err := json.Marshal(payment)
		if err != nil {
			return fmt.Errorf("failed to encode payment: %w", err)
		}

		tx.HSet(userKey, map[string]string{userFieldBalance: user.Balance.String()})
		tx.HSet(txnKey, map[string]string{txnFieldStatus: string(txn.Status)})
		tx.HSet(PaymentsKey(username), map[string]string{payment.ID: string(encoded)})

		settlement = &model.Settlement{Payment: payment, NewBalance: user.Balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settlement, nil
}

// GetByUsername returns the payments of username, newest first.
func (r *paymentRepository) GetByUsername(ctx context.Context, username string) ([]*model.Payment, error) {
	values, err := r.store.HGetAll(ctx, PaymentsKey(username))
	if err != nil {
		return nil, err
	}

	payments := make([]*model.Payment, 0, len(values))
	for id, raw := range values {
		var p model.Payment
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("invalid payment %q: %w", id, err)
		}
		if p.ID == "" {
			p.ID = id
		}
		payments = append(payments, &p)
	}

	sort.Slice(payments, func(i, j int) bool {
		if payments[i].Timestamp.Equal(payments[j].Timestamp) {
			return payments[i].ID > payments[j].ID
		}
		return payments[i].Timestamp.After(payments[j].Timestamp)
	})

	return payments, nil
}

func readTransaction(tx Tx, key string) (*model.Transaction, error) {
	values, err := tx.HGetAll(key)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return transactionFromHash(values)
}

func readUser(tx Tx, key string) (*model.User, error) {
	values, err := tx.HGetAll(key)
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return userFromHash(values)
}
