package assets

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// AddressZero is the placeholder address used for the chain's native
// currency in asset lists. It is not a token contract.
const AddressZero = "0x0000000000000000000000000000000000000000"

// Asset describes a token known to the wallet.
type Asset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

// IsNative reports whether the asset stands for the chain's gas currency.
func (a Asset) IsNative() bool {
	return AddressesEqual(a.Address, AddressZero)
}

// AddressesEqual compares two hex addresses case-insensitively.
func AddressesEqual(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Index is a read-only lookup from token address or symbol to asset
// metadata. It is built once by the caller and shared across queries.
type Index struct {
	byAddress map[string]Asset
	bySymbol  map[string]Asset
	list      []Asset
}

func NewIndex(list []Asset) *Index {
	idx := &Index{
		byAddress: make(map[string]Asset, len(list)),
		bySymbol:  make(map[string]Asset, len(list)),
		list:      append([]Asset(nil), list...),
	}
	for _, a := range list {
		idx.byAddress[strings.ToLower(a.Address)] = a
		idx.bySymbol[strings.ToUpper(a.Symbol)] = a
	}
	return idx
}

// ByAddress resolves an asset by token address, case-insensitively.
func (i *Index) ByAddress(address string) (Asset, bool) {
	a, ok := i.byAddress[strings.ToLower(address)]
	return a, ok
}

// BySymbol resolves an asset by symbol, case-insensitively.
func (i *Index) BySymbol(symbol string) (Asset, bool) {
	a, ok := i.bySymbol[strings.ToUpper(symbol)]
	return a, ok
}

// List returns all indexed assets in insertion order.
func (i *Index) List() []Asset {
	return i.list
}

// FormatUnits converts a base-unit integer amount (wei-like) into a token
// amount with the given number of decimals.
func FormatUnits(amount *big.Int, decimals int32) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals)
}

// FormatUnitsString is FormatUnits for amounts carried as decimal strings,
// which is how the gateway reports them. Malformed input yields zero.
func FormatUnitsString(amount string, decimals int32) decimal.Decimal {
	v, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return decimal.Zero
	}
	return FormatUnits(v, decimals)
}

// ParseTokenAmount converts a token amount into base units.
func ParseTokenAmount(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}
