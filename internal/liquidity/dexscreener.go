// Package liquidity screens contracts against pooled DEX liquidity
// using the public Dexscreener API.
package liquidity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"token-radar/internal/observability"
	"token-radar/internal/trending"
)

// Outcome classifies one oracle consultation.
type Outcome string

const (
	// OutcomePass means at least one pair cleared the liquidity floor,
	// or Dexscreener knows nothing about the contract.
	OutcomePass Outcome = "pass"
	// OutcomeFailOpen means the oracle could not be consulted and the
	// contract is kept.
	OutcomeFailOpen Outcome = "fail_open"
	// OutcomeReject means pairs exist and every one is below the floor.
	OutcomeReject Outcome = "reject"
)

const defaultBaseURL = "https://api.dexscreener.com/latest/dex/tokens"

// Config holds Dexscreener oracle configuration.
type Config struct {
	BaseURL         string
	MinLiquidityUSD float64
	Timeout         time.Duration
}

// DefaultConfig returns the default oracle configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:         defaultBaseURL,
		MinLiquidityUSD: 1000,
		Timeout:         8 * time.Second,
	}
}

// Oracle answers liquidity questions about contracts. Any failure to
// obtain a usable answer counts as no answer, never as a rejection.
type Oracle struct {
	config Config
	client *resty.Client
}

var _ trending.LiquidityChecker = (*Oracle)(nil)

// NewOracle creates an oracle. Zero config fields fall back to defaults.
func NewOracle(config Config) *Oracle {
	defaults := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	client := resty.New().
		SetTimeout(config.Timeout).
		SetHeader("User-Agent", "token-radar/1.0")

	return &Oracle{config: config, client: client}
}

// pairsResponse is the Dexscreener token endpoint payload. Pairs is
// null when the contract is unknown to the aggregator.
type pairsResponse struct {
	Pairs []dexPair `json:"pairs"`
}

// dexPair is the subset of a Dexscreener pair object we read.
type dexPair struct {
	BaseToken struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"baseToken"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
}

// Evaluate consults Dexscreener for one contract and classifies the
// answer. Transport errors, non-200 statuses and unparseable payloads
// all fail open.
func (o *Oracle) Evaluate(ctx context.Context, contract string) Outcome {
	resp, err := o.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/%s", o.config.BaseURL, contract))
	if err != nil {
		logrus.Warnf("Dexscreener request failed for %s, keeping contract: %v", contract, err)
		return OutcomeFailOpen
	}
	if resp.StatusCode() != http.StatusOK {
		logrus.Warnf("Dexscreener returned %d for %s, keeping contract", resp.StatusCode(), contract)
		return OutcomeFailOpen
	}

	var body pairsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		logrus.Warnf("Dexscreener payload for %s is not valid JSON, keeping contract: %v", contract, err)
		return OutcomeFailOpen
	}

	if len(body.Pairs) == 0 {
		logrus.Debugf("No Dexscreener pairs for %s", contract)
		return OutcomePass
	}

	maxLiquidity := 0.0
	for _, pair := range body.Pairs {
		if pair.Liquidity.USD >= o.config.MinLiquidityUSD {
			return OutcomePass
		}
		if pair.Liquidity.USD > maxLiquidity {
			maxLiquidity = pair.Liquidity.USD
		}
	}

	logrus.Infof("Rejecting %s: max liquidity $%.0f below $%.0f floor",
		contract, maxLiquidity, o.config.MinLiquidityUSD)
	return OutcomeReject
}

// CheckLiquidity reports whether the contract should be kept. Only a
// confirmed rejection drops it.
func (o *Oracle) CheckLiquidity(ctx context.Context, contract string) bool {
	outcome := o.Evaluate(ctx, contract)
	observability.RecordOracleOutcome(string(outcome))
	return outcome != OutcomeReject
}

// TokenName looks up a display name for the contract, preferring
// "Name (SYMBOL)". Best effort: returns "" when nothing usable comes
// back.
func (o *Oracle) TokenName(ctx context.Context, contract string) string {
	resp, err := o.client.R().
		SetContext(ctx).
		Get(fmt.Sprintf("%s/%s", o.config.BaseURL, contract))
	if err != nil || resp.StatusCode() != http.StatusOK {
		return ""
	}

	var body pairsResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil || len(body.Pairs) == 0 {
		return ""
	}

	base := body.Pairs[0].BaseToken
	switch {
	case base.Name != "" && base.Symbol != "":
		return fmt.Sprintf("%s (%s)", base.Name, base.Symbol)
	case base.Symbol != "":
		return base.Symbol
	default:
		return base.Name
	}
}
