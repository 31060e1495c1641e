// Package main runs a single trending detection pass against the
// mention store and prints the ranking. No alerts are sent and no
// cooldowns are recorded, so it is safe to run next to the daemon.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"token-radar/internal/domain"
	"token-radar/internal/liquidity"
	"token-radar/internal/storage"
	chstore "token-radar/internal/storage/clickhouse"
	"token-radar/internal/storage/postgres"
	"token-radar/internal/trending"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (used when --postgres-dsn is empty)")
	chain := flag.String("chain", "", "Restrict to one chain (solana, evm); default ranks every chain together")
	window := flag.Duration("window", 5*time.Minute, "Rolling window size")
	minMentions := flag.Int("min-mentions", 3, "Mention floor inside the window")
	minSources := flag.Int("min-sources", 2, "Distinct-source floor inside the window")
	checkLiquidity := flag.Bool("check-liquidity", false, "Apply the Dexscreener liquidity veto")
	minLiquidity := flag.Float64("min-liquidity", 1000, "USD liquidity floor for the veto")
	at := flag.String("at", "", "Evaluate the window ending at this RFC3339 time instead of now")
	flag.Parse()

	if *postgresDSN == "" && *clickhouseDSN == "" {
		fmt.Fprintln(os.Stderr, "Error: --postgres-dsn or --clickhouse-dsn is required")
		os.Exit(1)
	}

	target := domain.ChainAll
	if *chain != "" {
		target = domain.Chain(*chain)
		if !target.IsValid() {
			fmt.Fprintf(os.Stderr, "Error: unknown chain %q\n", *chain)
			os.Exit(1)
		}
	}

	now := time.Now().UTC()
	if *at != "" {
		parsed, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing --at: %v\n", err)
			os.Exit(1)
		}
		now = parsed.UTC()
	}

	ctx := context.Background()

	store, cleanup, err := openStore(ctx, *postgresDSN, *clickhouseDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error connecting to store: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	var checker trending.LiquidityChecker
	if *checkLiquidity {
		checker = liquidity.NewOracle(liquidity.Config{MinLiquidityUSD: *minLiquidity})
	}

	engine, err := trending.New(trending.Config{
		Window:               *window,
		MinMentions:          *minMentions,
		MinUniqueSources:     *minSources,
		CheckLiquidity:       *checkLiquidity,
		MinLiquidityUSD:      *minLiquidity,
		LiquidityConcurrency: 4,
	}, store, checker)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tokens, err := engine.DetectAt(ctx, target, now)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running detection: %v\n", err)
		os.Exit(1)
	}

	if len(tokens) == 0 {
		fmt.Printf("No trending contracts in the %v window ending %s\n", *window, now.Format(time.RFC3339))
		return
	}

	fmt.Printf("Trending contracts in the %v window ending %s:\n\n", *window, now.Format(time.RFC3339))
	fmt.Printf("%-4s %-46s %-8s %8s %8s %10s %8s\n", "#", "CONTRACT", "CHAIN", "MENTIONS", "SOURCES", "VELOCITY", "SCORE")
	for i, t := range tokens {
		fmt.Printf("%-4d %-46s %-8s %8d %8d %+10.2f %8.1f\n",
			i+1, t.Contract, t.Chain, t.MentionCount, t.UniqueSources, t.Velocity, t.Score)
	}
}

// openStore connects to PostgreSQL when a DSN is given, otherwise to
// ClickHouse. The daemon owns migrations; this command only reads.
func openStore(ctx context.Context, postgresDSN, clickhouseDSN string) (storage.MentionStore, func(), error) {
	if postgresDSN != "" {
		pool, err := postgres.NewPool(ctx, postgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		return postgres.NewMentionStore(pool), func() { pool.Close() }, nil
	}

	conn, err := chstore.NewConn(ctx, clickhouseDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	return chstore.NewMentionStore(conn), func() { conn.Close() }, nil
}
