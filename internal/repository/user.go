package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Evgen-Mutagen/qr-wallet/internal/model"
	"github.com/shopspring/decimal"
)

var ErrUserExists = errors.New("user already exists")

const (
	userFieldUsername = "username"
	userFieldPassword = "password"
	userFieldBalance  = "balance"
)

type UserRepository interface {
	// Create stores user unless a user with the same name already exists,
	// in which case it returns ErrUserExists and leaves the record untouched.
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

type userRepository struct {
	store Store
}

func NewUserRepository(store Store) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	key := UserKey(user.Username)
	return r.store.Atomic(ctx, []string{key}, func(tx Tx) error {
		existing, err := tx.HGetAll(key)
		if err != nil {
			return err
		}
		if len(existing) != 0 {
			return ErrUserExists
		}
		tx.HSet(key, userToHash(user))
		return nil
	})
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	values, err := r.store.HGetAll(ctx, UserKey(username))
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return userFromHash(values)
}

func userToHash(user *model.User) map[string]string {
	return map[string]string{
		userFieldUsername: user.Username,
		userFieldPassword: user.PasswordHash,
		userFieldBalance:  user.Balance.String(),
	}
}

func userFromHash(values map[string]string) (*model.User, error) {
	balance, err := decimal.NewFromString(values[userFieldBalance])
	if err != nil {
		return nil, fmt.Errorf("invalid balance for user %q: %w", values[userFieldUsername], err)
	}
	return &model.User{
		Username:     values[userFieldUsername],
		PasswordHash: values[userFieldPassword],
		Balance:      balance,
	}, nil
}
