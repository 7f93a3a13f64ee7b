// Package wallet starts wallet top-ups so a customer short on balance can
// fund an order and retry.
package wallet

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/bridal-checkout/internal/storefront"
)

var (
	ErrInvalidAmount = errors.New("amount must be a positive whole number")
	ErrNoCheckoutURL = errors.New("payment provider returned no checkout url")
)

// MinDeposit is the smallest top-up the payment provider accepts.
var MinDeposit = decimal.NewFromInt(10000)

// Depositor is the wallet side of the storefront API.
type Depositor interface {
	Deposit(ctx context.Context, token string, amount decimal.Decimal) (storefront.DepositResult, error)
}

type Service struct {
	api    Depositor
	logger *slog.Logger
}

func NewService(api Depositor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{api: api, logger: logger}
}

// Deposit asks for a payment page for amount and returns it.
func (s *Service) Deposit(ctx context.Context, userID, token string, amount decimal.Decimal) (storefront.DepositResult, error) {
	if !amount.IsInteger() || amount.LessThan(MinDeposit) {
		return storefront.DepositResult{}, ErrInvalidAmount
	}
	res, err := s.api.Deposit(ctx, token, amount)
	if err != nil {
		return storefront.DepositResult{}, err
	}
	if res.CheckoutURL == "" {
		return storefront.DepositResult{}, ErrNoCheckoutURL
	}
	s.logger.Info("wallet deposit started", "user_id", userID, "amount", amount.String(), "transaction_id", res.TransactionID)
	return res, nil
}
