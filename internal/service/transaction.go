package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/events"
	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/Evgen-Mutagen/qr-wallet/internal/repository"
	"github.com/Evgen-Mutagen/qr-wallet/internal/util/qr"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type transactionService struct {
	txnRepo   repository.TransactionRepository
	encoder   qr.Encoder
	publisher events.Publisher
	logger    *zap.Logger
	newID     func() (string, error)
	now       func() time.Time
}

func NewTransactionService(
	txnRepo repository.TransactionRepository,
	encoder qr.Encoder,
	publisher events.Publisher,
	logger *zap.Logger,
) core.TransactionService {
	return &transactionService{
		txnRepo:   txnRepo,
		encoder:   encoder,
		publisher: publisher,
		logger:    logger,
		newID:     newID,
		now:       time.Now,
	}
}

// CreateTransaction persists a pending transaction before encoding it, so a
// failed encode still leaves a payable transaction behind.
func (s *transactionService) CreateTransaction(ctx context.Context, issuer string, amount decimal.Decimal) (*model.Transaction, string, error) {
	if !amount.IsPositive() {
		return nil, "", ErrInvalidAmount
	}
	if err := model.CheckAmountRange(amount); err != nil {
		return nil, "", fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	id, err := s.newID()
	if err != nil {
		return nil, "", err
	}

	txn, err := model.NewTransaction(id, amount, issuer, s.now().UTC())
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.txnRepo.Create(ctx, txn); err != nil {
		return nil, "", fmt.Errorf("failed to create transaction: %w", err)
	}

	if err := s.publisher.TransactionCreated(ctx, txn); err != nil {
		s.logger.Warn("Failed to publish transaction event",
			zap.String("transaction_id", txn.ID),
			zap.Error(err))
	}

	payload, err := json.Marshal(txn.Details())
	if err != nil {
		return txn, "", fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	qrCode, err := s.encoder.DataURL(payload)
	if err != nil {
		return txn, "", fmt.Errorf("%w: %v", ErrEncodeFailed, err)
	}

	return txn, qrCode, nil
}
