package trending

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"token-radar/internal/domain"
	"token-radar/internal/storage"
)

// Config holds trending detection parameters.
type Config struct {
	Window               time.Duration // rolling window size
	MinMentions          int           // mention floor inside the window
	MinUniqueSources     int           // distinct-source floor inside the window
	CheckLiquidity       bool          // apply the liquidity veto
	MinLiquidityUSD      float64       // USD floor passed to the oracle
	LiquidityConcurrency int           // parallel liquidity lookups per cycle
}

// DefaultConfig returns the default detection parameters.
func DefaultConfig() Config {
	return Config{
		Window:               5 * time.Minute,
		MinMentions:          3,
		MinUniqueSources:     2,
		CheckLiquidity:       false,
		MinLiquidityUSD:      1000,
		LiquidityConcurrency: 4,
	}
}

// Validate checks the configuration for values that would make detection
// meaningless.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", c.Window)
	}
	if c.MinMentions < 1 {
		return fmt.Errorf("min mentions must be at least 1, got %d", c.MinMentions)
	}
	if c.MinUniqueSources < 1 {
		return fmt.Errorf("min unique sources must be at least 1, got %d", c.MinUniqueSources)
	}
	if c.CheckLiquidity && c.MinLiquidityUSD < 0 {
		return fmt.Errorf("min liquidity must not be negative, got %f", c.MinLiquidityUSD)
	}
	return nil
}

// LiquidityChecker reports whether a contract clears the liquidity floor.
// Implementations fail open: lookup errors and missing data report true, only
// a confirmed below-floor result reports false.
type LiquidityChecker interface {
	CheckLiquidity(ctx context.Context, contract string) bool
}

// Engine ranks contracts by mention activity over a rolling window.
// It only reads mention data; cooldown suppression and alert delivery are
// layered on top of it.
type Engine struct {
	config    Config
	store     storage.MentionStore
	liquidity LiquidityChecker
}

// New creates a trending engine. liquidity may be nil when the veto is
// disabled in config.
func New(config Config, store storage.MentionStore, liquidity LiquidityChecker) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("trending config: %w", err)
	}
	if config.CheckLiquidity && liquidity == nil {
		return nil, fmt.Errorf("trending config: liquidity check enabled without a checker")
	}
	if config.LiquidityConcurrency < 1 {
		config.LiquidityConcurrency = 1
	}

	return &Engine{
		config:    config,
		store:     store,
		liquidity: liquidity,
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Detect runs one detection pass over the current window, ending now.
// domain.ChainAll ranks every chain together.
func (e *Engine) Detect(ctx context.Context, chain domain.Chain) ([]*domain.TrendingToken, error) {
	return e.DetectAt(ctx, chain, time.Now().UTC())
}

// DetectAt evaluates the window ending at the given timestamp. Store errors
// abort the pass; no partial result is returned.
func (e *Engine) DetectAt(ctx context.Context, chain domain.Chain, now time.Time) ([]*domain.TrendingToken, error) {
	windowStart := now.Add(-e.config.Window)

	tokens, err := e.store.AggregateWindow(ctx, windowStart, chain, e.config.MinMentions, e.config.MinUniqueSources)
	if err != nil {
		return nil, fmt.Errorf("aggregate window: %w", err)
	}

	// Velocity compares against the adjacent prior window [start-w, start).
	priorStart := windowStart.Add(-e.config.Window)
	for _, t := range tokens {
		prior, err := e.store.CountInRange(ctx, t.Contract, priorStart, windowStart)
		if err != nil {
			return nil, fmt.Errorf("count prior window for %s: %w", t.Contract, err)
		}
		t.Velocity = ComputeVelocity(t.MentionCount, prior)
		t.Score = ComputeScore(t)
	}

	if e.config.CheckLiquidity && e.liquidity != nil {
		tokens = e.applyLiquidityVeto(ctx, tokens)
	}

	sortTokens(tokens)
	return tokens, nil
}

// DetectByChain runs an independent detection pass per registered chain.
// Chains with no qualifying tokens are left out of the map.
func (e *Engine) DetectByChain(ctx context.Context) (map[domain.Chain][]*domain.TrendingToken, error) {
	return e.DetectByChainAt(ctx, time.Now().UTC())
}

// DetectByChainAt is DetectByChain with an explicit evaluation time.
// The first failing chain aborts the whole pass.
func (e *Engine) DetectByChainAt(ctx context.Context, now time.Time) (map[domain.Chain][]*domain.TrendingToken, error) {
	results := make(map[domain.Chain][]*domain.TrendingToken)

	for _, chain := range domain.Chains() {
		tokens, err := e.DetectAt(ctx, chain, now)
		if err != nil {
			return nil, fmt.Errorf("detect %s: %w", chain, err)
		}
		if len(tokens) > 0 {
			results[chain] = tokens
		}
	}

	return results, nil
}

// applyLiquidityVeto drops tokens the oracle confirms below the floor.
// Lookups run concurrently; kept tokens stay in their original order.
func (e *Engine) applyLiquidityVeto(ctx context.Context, tokens []*domain.TrendingToken) []*domain.TrendingToken {
	if len(tokens) == 0 {
		return tokens
	}

	keep := make([]bool, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.LiquidityConcurrency)
	for i, t := range tokens {
		g.Go(func() error {
			keep[i] = e.liquidity.CheckLiquidity(gctx, t.Contract)
			return nil
		})
	}
	// Workers never return an error; the checker fails open instead.
	_ = g.Wait()

	kept := tokens[:0]
	for i, t := range tokens {
		if keep[i] {
			kept = append(kept, t)
		}
	}
	return kept
}

// sortTokens orders by score, then mention count, then contract address, so
// equal-score runs always come out in the same order.
func sortTokens(tokens []*domain.TrendingToken) {
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].Score != tokens[j].Score {
			return tokens[i].Score > tokens[j].Score
		}
		if tokens[i].MentionCount != tokens[j].MentionCount {
			return tokens[i].MentionCount > tokens[j].MentionCount
		}
		return tokens[i].Contract < tokens[j].Contract
	})
}
