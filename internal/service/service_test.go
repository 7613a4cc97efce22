package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Evgen-Mutagen/qr-wallet/internal/events"
	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/Evgen-Mutagen/qr-wallet/internal/repository"
	"github.com/Evgen-Mutagen/qr-wallet/internal/util/qr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret   = "test-secret"
	testPassword = "Abcde1!2"
)

type wallet struct {
	store        *repository.MemoryStore
	auth         *authService
	transactions *transactionService
	payments     *paymentService
	balances     *balanceService
	publisher    *recordingPublisher
}

func newWallet(t *testing.T, singleUse bool) *wallet {
	t.Helper()
	store := repository.NewMemoryStore()
	userRepo := repository.NewUserRepository(store)
	txnRepo := repository.NewTransactionRepository(store)
	paymentRepo := repository.NewPaymentRepository(store)
	publisher := &recordingPublisher{}
	logger := zap.NewNop()

	return &wallet{
		store:        store,
		auth:         NewAuthService(userRepo, testSecret, bcrypt.MinCost).(*authService),
		transactions: NewTransactionService(txnRepo, qr.NewPNGEncoder(64), publisher, logger).(*transactionService),
		payments:     NewPaymentService(paymentRepo, publisher, logger, singleUse).(*paymentService),
		balances:     NewBalanceService(userRepo, paymentRepo).(*balanceService),
		publisher:    publisher,
	}
}

func (w *wallet) register(t *testing.T, username string, balance int64) {
	t.Helper()
	_, err := w.auth.Register(context.Background(), username, testPassword, decimal.NewFromInt(balance))
	require.NoError(t, err)
}

func (w *wallet) issue(t *testing.T, amount int64) *model.Transaction {
	t.Helper()
	txn, _, err := w.transactions.CreateTransaction(context.Background(), "merchant", decimal.NewFromInt(amount))
	require.NoError(t, err)
	return txn
}

type recordingPublisher struct {
	mu      sync.Mutex
	created []*model.Transaction
	settled []*model.Settlement
	err     error
}

func (p *recordingPublisher) TransactionCreated(_ context.Context, txn *model.Transaction) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, txn)
	return p.err
}

func (p *recordingPublisher) PaymentSettled(_ context.Context, _ string, s *model.Settlement) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settled = append(p.settled, s)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

var _ events.Publisher = (*recordingPublisher)(nil)

type failingEncoder struct{}

func (failingEncoder) DataURL([]byte) (string, error) {
	return "", errors.New("encoder broken")
}
