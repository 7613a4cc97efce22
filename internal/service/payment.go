package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/events"
	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/Evgen-Mutagen/qr-wallet/internal/repository"
	"go.uber.org/zap"
)

type paymentService struct {
	paymentRepo repository.PaymentRepository
	publisher   events.Publisher
	logger      *zap.Logger
	// singleUse rejects a second payment against an already settled
	// transaction. When false a transaction can be paid any number of times.
	singleUse bool
	newID     func() (string, error)
	now       func() time.Time
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	publisher events.Publisher,
	logger *zap.Logger,
	singleUse bool,
) core.PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		publisher:   publisher,
		logger:      logger,
		singleUse:   singleUse,
		newID:       newID,
		now:         time.Now,
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, payer, transactionID string) (*model.Settlement, error) {
	if transactionID == "" {
		return nil, fmt.Errorf("%w: transactionId is required", ErrInvalidInput)
	}

	settlement, err := s.paymentRepo.Settle(ctx, payer, transactionID, s.settle)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", ErrStoreConflict, err)
		}
		if isDomainError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	s.logger.Info("Payment settled",
		zap.String("payer", payer),
		zap.String("transaction_id", transactionID),
		zap.String("payment_id", settlement.Payment.ID),
		zap.String("amount", settlement.Payment.Amount.String()))

	if err := s.publisher.PaymentSettled(ctx, payer, settlement); err != nil {
		s.logger.Warn("Failed to publish payment event",
			zap.String("payment_id", settlement.Payment.ID),
			zap.Error(err))
	}

	return settlement, nil
}

// settle runs inside the store's atomic section and may be called again if
// the section is retried.
func (s *paymentService) settle(user *model.User, txn *model.Transaction) (*model.Payment, error) {
	if txn == nil {
		return nil, ErrTransactionNotFound
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if s.singleUse && txn.Settled() {
		return nil, ErrTransactionSettled
	}
	if !user.CanAfford(txn.Amount) {
		return nil, ErrInsufficientFunds
	}

	id, err := s.newID()
	if err != nil {
		return nil, err
	}
	payment, err := model.NewPayment(id, txn, s.now())
	if err != nil {
		return nil, err
	}

	user.Balance = user.Balance.Sub(txn.Amount)
	txn.Status = model.TransactionSettled
	return payment, nil
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrTransactionNotFound,
		ErrUserNotFound,
		ErrTransactionSettled,
		ErrInsufficientFunds,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
