package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"
)

// HTTPFeed reads price values from configured JSON endpoints, one per feed
// ID. Endpoints respond with {"value": "<1e18-scaled decimal>", "timestamp":
// <unix seconds>}.
type HTTPFeed struct {
	Endpoints map[string]string
	Client    *http.Client
}

// NewHTTPFeed builds a feed over the given feedID -> URL map.
func NewHTTPFeed(endpoints map[string]string) *HTTPFeed {
	return &HTTPFeed{
		Endpoints: endpoints,
		Client:    &http.Client{Timeout: 10 * time.Second},
	}
}

type feedResponse struct {
	Value     string `json:"value"`
	Timestamp int64  `json:"timestamp"`
}

// Reading implements PriceFeed.
func (f *HTTPFeed) Reading(ctx context.Context, feedID string) (Reading, error) {
	if !ValidFeedID(feedID) {
		return Reading{}, ErrInvalidFeedID
	}
	url, ok := f.Endpoints[feedID]
	if !ok {
		return Reading{}, ErrInvalidFeedID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("%w: feed %s returned %d", ErrUnavailable, feedID, resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	value, ok := new(big.Int).SetString(body.Value, 10)
	if !ok {
		return Reading{}, fmt.Errorf("%w: feed %s sent bad value %q", ErrUnavailable, feedID, body.Value)
	}
	return Reading{Value: value, AsOf: time.Unix(body.Timestamp, 0)}, nil
}

// HTTPPool reads the liquidity of one pre-configured pool over HTTP. The
// endpoint responds with {"liquidity": "<1e18-scaled decimal>"}.
type HTTPPool struct {
	Endpoint string
	TokenA   string
	TokenB   string
	Client   *http.Client
}

// NewHTTPPool builds a pool reader for a fixed pool reference.
func NewHTTPPool(endpoint, tokenA, tokenB string) *HTTPPool {
	return &HTTPPool{
		Endpoint: endpoint,
		TokenA:   tokenA,
		TokenB:   tokenB,
		Client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type poolResponse struct {
	Liquidity string `json:"liquidity"`
}

// Liquidity implements LiquidityPool.
func (p *HTTPPool) Liquidity(ctx context.Context) (*big.Int, error) {
	if p.Endpoint == "" {
		return nil, fmt.Errorf("%w: no pool endpoint configured", ErrUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: pool returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body poolResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	value, ok := new(big.Int).SetString(body.Liquidity, 10)
	if !ok {
		return nil, fmt.Errorf("%w: pool sent bad liquidity %q", ErrUnavailable, body.Liquidity)
	}
	return value, nil
}

// Tokens implements LiquidityPool.
func (p *HTTPPool) Tokens() (string, string) {
	return p.TokenA, p.TokenB
}
