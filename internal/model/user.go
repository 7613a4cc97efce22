package model

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyUsername     = errors.New("username is required")
	ErrEmptyPasswordHash = errors.New("password hash is required")
	ErrNegativeBalance   = errors.New("balance must not be negative")
)

type User struct {
	Username     string
	PasswordHash string
	Balance      decimal.Decimal
}

func NewUser(username, passwordHash string, balance decimal.Decimal) (*User, error) {
	if username == "" {
		return nil, ErrEmptyUsername
	}
	if passwordHash == "" {
		return nil, ErrEmptyPasswordHash
	}
	if balance.IsNegative() {
		return nil, ErrNegativeBalance
	}
	if err := CheckAmountRange(balance); err != nil {
		return nil, err
	}
	return &User{
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      balance,
	}, nil
}

// CanAfford reports whether the balance covers amount.
func (u *User) CanAfford(amount decimal.Decimal) bool {
	return u.Balance.GreaterThanOrEqual(amount)
}

// Statement is the balance together with the payment history of a user.
type Statement struct {
	Balance  decimal.Decimal `json:"balance"`
	Payments []*Payment      `json:"payments"`
}
