package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"smartwallet-core/internal/gateway"
	"smartwallet-core/pkg/assets"
	"smartwallet-core/pkg/errno"
	"smartwallet-core/pkg/logger"
)

// Balance is one resolved asset balance in token units.
type Balance struct {
	Symbol  string          `json:"symbol"`
	Balance decimal.Decimal `json:"balance"`
}

// DepositService reads payment-network deposits and account balances
// from the gateway. Pure read path; nothing here touches the pending
// batch.
type DepositService struct {
	gw gateway.Gateway
}

func NewDepositService(gw gateway.Gateway) *DepositService {
	return &DepositService{gw: gw}
}

// GetAccountTokenDeposit returns the deposit for tokenAddress, or nil
// when the account holds no such deposit. The gateway only supports
// fetching all deposits, so the match happens client-side,
// case-insensitively. A fetch failure is unexpected and propagates; a
// missing deposit is a normal state and does not.
func (s *DepositService) GetAccountTokenDeposit(ctx context.Context, tokenAddress string) (*gateway.PaymentDeposit, error) {
	deposits, err := s.gw.GetPaymentDeposits(ctx, []string{tokenAddress})
	if err != nil {
		logger.Error("getAccountTokenDeposit fetch failed",
			zap.String("tokenAddress", tokenAddress), zap.Error(err))
		return nil, errno.ErrDepositFetch
	}

	for i := range deposits {
		if assets.AddressesEqual(deposits[i].Token, tokenAddress) {
			return &deposits[i], nil
		}
	}
	return nil, nil
}

// GetAccountTokenDepositBalance returns the available deposit amount in
// base units. No deposit yet is a normal state for a fresh account and
// yields zero, not an error.
func (s *DepositService) GetAccountTokenDepositBalance(ctx context.Context, tokenAddress string) (decimal.Decimal, error) {
	deposit, err := s.GetAccountTokenDeposit(ctx, tokenAddress)
	if err != nil {
		return decimal.Zero, err
	}
	if deposit == nil {
		logger.Warn("getAccountTokenDepositBalance: no deposit for token",
			zap.String("tokenAddress", tokenAddress))
		return decimal.Zero, nil
	}

	amount, parseErr := decimal.NewFromString(deposit.AvailableAmount)
	if parseErr != nil {
		logger.Error("getAccountTokenDepositBalance: malformed amount",
			zap.String("tokenAddress", tokenAddress),
			zap.String("availableAmount", deposit.AvailableAmount),
			zap.Error(parseErr))
		return decimal.Zero, nil
	}
	return amount, nil
}

// GetBalances fetches balances for assetList. The native currency is
// never part of the token filter (the gateway includes it regardless);
// every other asset is passed explicitly. Response entries that resolve
// to no known asset are skipped and logged; the partial result is
// returned.
func (s *DepositService) GetBalances(ctx context.Context, accountAddress string, assetList []assets.Asset) ([]Balance, error) {
	var tokenAddresses []string
	for _, a := range assetList {
		if a.IsNative() {
			continue
		}
		tokenAddresses = append(tokenAddresses, a.Address)
	}

	items, err := s.gw.GetAccountBalances(ctx, accountAddress, tokenAddresses)
	if err != nil {
		logger.Error("getBalances fetch failed",
			zap.String("account", accountAddress), zap.Error(err))
		return nil, errno.ErrGatewayTransport
	}

	balances := make([]Balance, 0, len(items))
	for _, item := range items {
		asset, ok := resolveBalanceAsset(item, assetList)
		if !ok {
			logger.Warn("getBalances: unmatched balance entry skipped",
				zap.String("token", item.Token))
			continue
		}

		balances = append(balances, Balance{
			Symbol:  asset.Symbol,
			Balance: assets.FormatUnitsString(item.Balance, asset.Decimals),
		})
	}
	return balances, nil
}

// resolveBalanceAsset maps one gateway balance entry back to an asset:
// an empty token means the native currency.
func resolveBalanceAsset(item gateway.AccountBalance, assetList []assets.Asset) (assets.Asset, bool) {
	for _, a := range assetList {
		if item.Token == "" {
			if a.IsNative() {
				return a, true
			}
			continue
		}
		if !a.IsNative() && assets.AddressesEqual(a.Address, item.Token) {
			return a, true
		}
	}
	return assets.Asset{}, false
}
