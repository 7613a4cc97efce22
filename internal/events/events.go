package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
)

const (
	SubjectTransactionCreated = "wallet.transaction.created"
	SubjectPaymentSettled     = "wallet.payment.settled"
)

type Publisher interface {
	TransactionCreated(ctx context.Context, txn *model.Transaction) error
	PaymentSettled(ctx context.Context, payer string, settlement *model.Settlement) error
	Close() error
}

// Conn is the subset of *nats.Conn the publisher needs.
type Conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

type PaymentSettledEvent struct {
	Payer         string          `json:"payer"`
	PaymentID     string          `json:"paymentId"`
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	NewBalance    decimal.Decimal `json:"newBalance"`
	Timestamp     time.Time       `json:"timestamp"`
}

type NATSPublisher struct {
	conn Conn
}

// Connect dials url and returns a publisher on that connection.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("qr-wallet"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	return NewNATSPublisher(nc), nil
}

func NewNATSPublisher(conn Conn) *NATSPublisher {
	return &NATSPublisher{conn: conn}
}

func (p *NATSPublisher) TransactionCreated(ctx context.Context, txn *model.Transaction) error {
	return p.publish(ctx, SubjectTransactionCreated, txn)
}

func (p *NATSPublisher) PaymentSettled(ctx context.Context, payer string, settlement *model.Settlement) error {
	return p.publish(ctx, SubjectPaymentSettled, PaymentSettledEvent{
		Payer:         payer,
		PaymentID:     settlement.Payment.ID,
		TransactionID: settlement.Payment.TransactionID,
		Amount:        settlement.Payment.Amount,
		NewBalance:    settlement.NewBalance,
		Timestamp:     settlement.Payment.Timestamp,
	})
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}

func (p *NATSPublisher) publish(ctx context.Context, subject string, v interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// Nop drops every event. It is used when no NATS url is configured.
type Nop struct{}

func (Nop) TransactionCreated(context.Context, *model.Transaction) error    { return nil }
func (Nop) PaymentSettled(context.Context, string, *model.Settlement) error { return nil }
func (Nop) Close() error                                                    { return nil }
