package core

import (
	"context"

	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/shopspring/decimal"
)

type (
	AuthService interface {
		Register(ctx context.Context, username, password string, balance decimal.Decimal) (*model.User, error)
		Login(ctx context.Context, username, password string) (string, error)
		ValidateToken(tokenString string) (string, error)
	}

	TransactionService interface {
		// CreateTransaction returns the stored transaction and its QR code as
		// a PNG data URL.
		CreateTransaction(ctx context.Context, issuer string, amount decimal.Decimal) (*model.Transaction, string, error)
	}

	PaymentService interface {
		ProcessPayment(ctx context.Context, payer, transactionID string) (*model.Settlement, error)
	}

	BalanceService interface {
		GetBalanceAndHistory(ctx context.Context, username string) (*model.Statement, error)
	}
)
