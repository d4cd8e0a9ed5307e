// Package oracle fetches the current reference price stamped on new predictions.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/fastprodman/battlearena/internal/config"
)

var ErrUnavailable = errors.New("price oracle unavailable")

// Prices are stored with 8 decimal places.
const priceScale = 8

// Client reads a spot price shaped like {"data":{"amount":"<decimal>"}}.
// Concurrent callers share one upstream request.
type Client struct {
	url        string
	httpClient *http.Client
	group      singleflight.Group
}

func New(cfg config.OracleConfig) *Client {
	return &Client{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type spotResponse struct {
	Data struct {
		Amount decimal.Decimal `json:"amount"`
	} `json:"data"`
}

func (c *Client) CurrentPrice(ctx context.Context) (decimal.Decimal, error) {
	v, err, _ := c.group.Do("spot", func() (any, error) {
		return c.fetch(ctx)
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	return v.(decimal.Decimal), nil
}

func (c *Client) fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("build oracle request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return decimal.Decimal{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body spotResponse

	err = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: decode: %w", ErrUnavailable, err)
	}

	price := body.Data.Amount.Round(priceScale)
	if !price.IsPositive() {
		return decimal.Decimal{}, fmt.Errorf("%w: non-positive price %s", ErrUnavailable, body.Data.Amount)
	}

	return price, nil
}
