package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/pkg/assets"
	"smartwallet-core/pkg/errno"
)

var testAssets = []assets.Asset{
	{Address: assets.AddressZero, Symbol: "ETH", Decimals: 18},
	{Address: "0x00000000000000000000000000000000000000aa", Symbol: "PLR", Decimals: 18},
	{Address: "0x00000000000000000000000000000000000000bb", Symbol: "USDC", Decimals: 6},
}

func TestGetAccountTokenDeposit(t *testing.T) {
	fake := newFakeGateway()
	fake.deposits = []gateway.PaymentDeposit{
		{Address: "0xDepositContract", Token: "0x00000000000000000000000000000000000000AA", AvailableAmount: "500"},
	}
	svc := NewDepositService(fake)

	// Addresses match regardless of hex casing.
	deposit, err := svc.GetAccountTokenDeposit(context.Background(), "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	require.NotNil(t, deposit)
	assert.Equal(t, "500", deposit.AvailableAmount)
}

func TestGetAccountTokenDepositMissing(t *testing.T) {
	fake := newFakeGateway()
	svc := NewDepositService(fake)

	deposit, err := svc.GetAccountTokenDeposit(context.Background(), "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.Nil(t, deposit)
}

func TestGetAccountTokenDepositFetchError(t *testing.T) {
	fake := newFakeGateway()
	fake.depositsErr = errors.New("gateway: unreachable")
	svc := NewDepositService(fake)

	deposit, err := svc.GetAccountTokenDeposit(context.Background(), "0x00000000000000000000000000000000000000aa")
	assert.Nil(t, deposit)
	assert.ErrorIs(t, err, errno.ErrDepositFetch)
}

func TestGetAccountTokenDepositBalance(t *testing.T) {
	fake := newFakeGateway()
	fake.deposits = []gateway.PaymentDeposit{
		{Token: "0x00000000000000000000000000000000000000aa", AvailableAmount: "1500000000000000000"},
	}
	svc := NewDepositService(fake)

	balance, err := svc.GetAccountTokenDepositBalance(context.Background(), "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("1500000000000000000")))
}

func TestGetAccountTokenDepositBalanceDefaultsToZero(t *testing.T) {
	fake := newFakeGateway()
	svc := NewDepositService(fake)

	// A fresh account has no deposit yet; that is not an error.
	balance, err := svc.GetAccountTokenDepositBalance(context.Background(), "0x00000000000000000000000000000000000000aa")
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
}

func TestGetAccountTokenDepositBalancePropagatesFetchError(t *testing.T) {
	fake := newFakeGateway()
	fake.depositsErr = errors.New("gateway: unreachable")
	svc := NewDepositService(fake)

	balance, err := svc.GetAccountTokenDepositBalance(context.Background(), "0x00000000000000000000000000000000000000aa")
	assert.ErrorIs(t, err, errno.ErrDepositFetch)
	assert.True(t, balance.IsZero())
}

func TestGetBalancesNativeExcludedFromFilter(t *testing.T) {
	fake := newFakeGateway()
	fake.balances = []gateway.AccountBalance{
		{Token: "", Balance: "2000000000000000000"},
		{Token: "0x00000000000000000000000000000000000000aa", Balance: "5000000000000000000"},
	}
	svc := NewDepositService(fake)

	balances, err := svc.GetBalances(context.Background(), "0xAccount", testAssets)
	require.NoError(t, err)

	assert.NotContains(t, fake.balanceTokens, assets.AddressZero)
	assert.ElementsMatch(t, []string{
		"0x00000000000000000000000000000000000000aa",
		"0x00000000000000000000000000000000000000bb",
	}, fake.balanceTokens)

	require.Len(t, balances, 2)
	assert.Equal(t, "ETH", balances[0].Symbol)
	assert.True(t, balances[0].Balance.Equal(decimal.RequireFromString("2")))
	assert.Equal(t, "PLR", balances[1].Symbol)
	assert.True(t, balances[1].Balance.Equal(decimal.RequireFromString("5")))
}

func TestGetBalancesSkipsUnknownEntries(t *testing.T) {
	fake := newFakeGateway()
	fake.balances = []gateway.AccountBalance{
		{Token: "0x00000000000000000000000000000000000000cc", Balance: "123"}, // not in the asset list
		{Token: "0x00000000000000000000000000000000000000bb", Balance: "7000000"},
	}
	svc := NewDepositService(fake)

	balances, err := svc.GetBalances(context.Background(), "0xAccount", testAssets)
	require.NoError(t, err)

	require.Len(t, balances, 1)
	assert.Equal(t, "USDC", balances[0].Symbol)
	assert.True(t, balances[0].Balance.Equal(decimal.RequireFromString("7")))
}

func TestGetBalancesFetchError(t *testing.T) {
	fake := newFakeGateway()
	fake.balancesErr = errors.New("gateway: unreachable")
	svc := NewDepositService(fake)

	balances, err := svc.GetBalances(context.Background(), "0xAccount", testAssets)
	assert.Nil(t, balances)
	assert.ErrorIs(t, err, errno.ErrGatewayTransport)
}
