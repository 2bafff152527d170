package coingecko

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/overtake-labs/staking-monitor/internal/clients/client"
	"github.com/overtake-labs/staking-monitor/internal/config"
	"github.com/overtake-labs/staking-monitor/internal/types"
	"github.com/shopspring/decimal"
)

const (
	coinEndpoint        = "/coins/"
	simplePriceEndpoint = "/simple/price"
	apiKeyHeader        = "x-cg-demo-api-key"
)

type Client struct {
	httpClient *http.Client
	cfg        *config.PriceConfig
}

func (c *Client) GetBaseURL() string {
	return strings.TrimRight(c.cfg.BaseURL, "/")
}

func (c *Client) GetDefaultRequestTimeout() time.Duration {
	return c.cfg.Timeout
}

func (c *Client) GetHttpClient() *http.Client {
	return c.httpClient
}

func NewClient(cfg *config.PriceConfig) *Client {
	return &Client{
		httpClient: &http.Client{},
		cfg:        cfg,
	}
}

type empty struct{}

type coinResponse struct {
	MarketData *struct {
		CurrentPrice      map[string]decimal.Decimal `json:"current_price"`
		CirculatingSupply decimal.NullDecimal        `json:"circulating_supply"`
		TotalSupply       decimal.NullDecimal        `json:"total_supply"`
		MaxSupply         decimal.NullDecimal        `json:"max_supply"`
	} `json:"market_data"`
}

// simplePriceResponse is keyed by coin id, then by vs currency
type simplePriceResponse map[string]map[string]decimal.Decimal

func (c *Client) GetMarketData(ctx context.Context) (*MarketData, error) {
	query := url.Values{}
	query.Set("localization", "false")
	query.Set("tickers", "false")
	query.Set("community_data", "false")
	query.Set("developer_data", "false")

	opts := &client.HttpClientOptions{
		Path:         coinEndpoint + url.PathEscape(c.cfg.CoinID) + "?" + query.Encode(),
		TemplatePath: coinEndpoint + "{id}",
		Headers:      c.headers(),
	}

	resp, err := client.SendRequest[empty, coinResponse](ctx, c, http.MethodGet, opts, nil)
	if err != nil {
		return nil, err
	}

	if resp.MarketData == nil {
		return nil, fmt.Errorf("market_data missing for %q: %w", c.cfg.CoinID, types.ErrMalformedData)
	}

	price, ok := resp.MarketData.CurrentPrice[c.cfg.VsCurrency]
	if !ok || !price.IsPositive() {
		return nil, fmt.Errorf("current_price.%s missing for %q: %w", c.cfg.VsCurrency, c.cfg.CoinID, types.ErrMalformedData)
	}

	return &MarketData{
		Price:             price,
		CirculatingSupply: resp.MarketData.CirculatingSupply,
		TotalSupply:       resp.MarketData.TotalSupply,
		MaxSupply:         resp.MarketData.MaxSupply,
	}, nil
}

func (c *Client) GetSimplePrice(ctx context.Context) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", c.cfg.CoinID)
	query.Set("vs_currencies", c.cfg.VsCurrency)

	opts := &client.HttpClientOptions{
		Path:         simplePriceEndpoint + "?" + query.Encode(),
		TemplatePath: simplePriceEndpoint,
		Headers:      c.headers(),
	}

	resp, err := client.SendRequest[empty, simplePriceResponse](ctx, c, http.MethodGet, opts, nil)
	if err != nil {
		return decimal.Zero, err
	}

	price, ok := (*resp)[c.cfg.CoinID][c.cfg.VsCurrency]
	if !ok || !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("simple price for %q missing: %w", c.cfg.CoinID, types.ErrMalformedData)
	}

	return price, nil
}

func (c *Client) headers() map[string]string {
	if c.cfg.APIKey == "" {
		return nil
	}
	return map[string]string{apiKeyHeader: c.cfg.APIKey}
}
