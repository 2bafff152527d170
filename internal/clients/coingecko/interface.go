package coingecko

import (
	"context"

	"github.com/shopspring/decimal"
)

//go:generate mockery --name=PriceProvider --output=../../../tests/mocks --outpkg=mocks --filename=mock_price_provider.go
type PriceProvider interface {
	// GetMarketData is the detailed lookup returning price plus supply metrics.
	GetMarketData(ctx context.Context) (*MarketData, error)
	// GetSimplePrice is the lightweight price-only lookup.
	GetSimplePrice(ctx context.Context) (decimal.Decimal, error)
}

// MarketData is the subset of the coin detail response the oracle consumes.
// Supply metrics are optional upstream.
type MarketData struct {
	Price             decimal.Decimal
	CirculatingSupply decimal.NullDecimal
	TotalSupply       decimal.NullDecimal
	MaxSupply         decimal.NullDecimal
}
