package service

import (
	"context"
	"fmt"

	"github.com/Evgen-Mutagen/qr-wallet/internal/core"
	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/Evgen-Mutagen/qr-wallet/internal/repository"
)

type balanceService struct {
	userRepo    repository.UserRepository
	paymentRepo repository.PaymentRepository
}

func NewBalanceService(
	userRepo repository.UserRepository,
	paymentRepo repository.PaymentRepository,
) core.BalanceService {
	return &balanceService{
		userRepo:    userRepo,
		paymentRepo: paymentRepo,
	}
}

// GetBalanceAndHistory returns the current balance and every payment of
// username, newest first. The whole history is returned on each call.
func (s *balanceService) GetBalanceAndHistory(ctx context.Context, username string) (*model.Statement, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	payments, err := s.paymentRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}

	return &model.Statement{
		Balance:  user.Balance,
		Payments: payments,
	}, nil
}
