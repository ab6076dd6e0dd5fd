package service

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

// CompensationService exposes token balances and withdrawals.
type CompensationService struct {
	compensation ports.Compensation
	log          zerolog.Logger
}

// NewCompensationService creates a new compensation service
func NewCompensationService(compensation ports.Compensation, log zerolog.Logger) *CompensationService {
	return &CompensationService{
		compensation: compensation,
		log:          log.With().Str("component", "compensation_service").Logger(),
	}
}

// Balance returns the compensation balance of an address in whole tokens.
func (s *CompensationService) Balance(ctx context.Context, address string) (*core.Balance, error) {
	if !common.IsHexAddress(address) {
		return nil, core.ErrInvalidAddress
	}

	amount, err := s.compensation.BalanceOf(ctx, address)
	if err != nil {
		return nil, err
	}

	return &core.Balance{Address: address, Amount: amount}, nil
}

// Withdraw pays out amount to address and returns the transaction hash.
func (s *CompensationService) Withdraw(ctx context.Context, address string, amount decimal.Decimal) (string, error) {
	if !common.IsHexAddress(address) {
		return "", core.ErrInvalidAddress
	}

	txHash, err := s.compensation.Withdraw(ctx, address, amount)
	if err != nil {
		return "", err
	}

	s.log.Info().Str("address", address).Str("amount", amount.String()).Str("tx", txHash).Msg("compensation withdrawal submitted")
	return txHash, nil
}
