package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/medichain/medichain/core"
	"github.com/medichain/medichain/ports"
)

const compensationABI = `[
	{"type":"function","name":"withdraw","stateMutability":"nonpayable","inputs":[{"name":"recipient","type":"address"},{"name":"amount","type":"uint256"}],"outputs":[]}
]`

const tokenABI = `[
	{"type":"function","name":"balanceOf","stateMutability":"view","inputs":[{"name":"owner","type":"address"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"decimals","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint8"}]}
]`

// Compensation is the typed client for the compensation contract plus the
// ERC-20 token it pays out in. Balances are exposed in whole tokens.
type Compensation struct {
	client       *Client
	compensation *bind.BoundContract
	token        *bind.BoundContract

	decimals int32 // cached after first read, 0 until then
}

var (
	compensationParsedABI = mustParseABI(compensationABI)
	tokenParsedABI        = mustParseABI(tokenABI)
)

// NewCompensation binds the compensation and token contracts.
func NewCompensation(client *Client, compensationAddr, tokenAddr common.Address) ports.Compensation {
	return &Compensation{
		client:       client,
		compensation: client.bound(compensationAddr, compensationParsedABI),
		token:        client.bound(tokenAddr, tokenParsedABI),
	}
}

// BalanceOf returns the token balance of an address in whole tokens.
func (c *Compensation) BalanceOf(ctx context.Context, address string) (decimal.Decimal, error) {
	if !common.IsHexAddress(address) {
		return decimal.Zero, core.ErrInvalidAddress
	}

	decimals, err := c.tokenDecimals(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	var out []interface{}
	if err := c.token.Call(callOpts(ctx), &out, "balanceOf", common.HexToAddress(address)); err != nil {
		return decimal.Zero, fmt.Errorf("balanceOf: %w", err)
	}

	raw := *abi.ConvertType(out[0], new(*big.Int)).(**big.Int)
	return decimal.NewFromBigInt(raw, -decimals), nil
}

// Withdraw pays out amount (whole tokens) to address and returns the
// transaction hash.
func (c *Compensation) Withdraw(ctx context.Context, address string, amount decimal.Decimal) (string, error) {
	if !common.IsHexAddress(address) {
		return "", core.ErrInvalidAddress
	}
	if amount.Sign() <= 0 {
		return "", fmt.Errorf("withdrawal amount must be positive, got %s", amount)
	}

	decimals, err := c.tokenDecimals(ctx)
	if err != nil {
		return "", err
	}

	units := amount.Shift(decimals)
	if !units.IsInteger() {
		return "", fmt.Errorf("amount %s has more than %d decimal places", amount, decimals)
	}

	tx, err := c.compensation.Transact(c.client.transactOpts(ctx), "withdraw", common.HexToAddress(address), units.BigInt())
	if err != nil {
		return "", fmt.Errorf("withdraw: %w", err)
	}
	if err := c.client.waitMined(ctx, tx); err != nil {
		return "", err
	}

	return tx.Hash().Hex(), nil
}

func (c *Compensation) tokenDecimals(ctx context.Context) (int32, error) {
	if c.decimals != 0 {
		return c.decimals, nil
	}

	var out []interface{}
	if err := c.token.Call(callOpts(ctx), &out, "decimals"); err != nil {
		return 0, fmt.Errorf("token decimals: %w", err)
	}

	c.decimals = int32(*abi.ConvertType(out[0], new(uint8)).(*uint8))
	return c.decimals, nil
}
