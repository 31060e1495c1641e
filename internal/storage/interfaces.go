package storage

import (
	"context"
	"time"

	"token-radar/internal/domain"
)

// MentionStore provides access to contract_mentions storage.
type MentionStore interface {
	// RecordMention adds a mention observation. Returns false when the
	// (contract, source_id, message_id) key was already recorded.
	RecordMention(ctx context.Context, m *domain.Mention) (bool, error)

	// AggregateWindow returns per-contract counts over mentions observed at or
	// after since, keeping contracts with at least minMentions mentions and
	// minUniqueSources distinct sources. A non-empty chain narrows the result
	// to that chain; domain.ChainAll keeps every chain. Velocity and Score on
	// the returned entries are zero; ranking fills them in.
	AggregateWindow(ctx context.Context, since time.Time, chain domain.Chain, minMentions, minUniqueSources int) ([]*domain.TrendingToken, error)

	// CountInRange returns how many mentions of contract were observed within
	// [since, until).
	CountInRange(ctx context.Context, contract string, since, until time.Time) (int, error)

	// DeleteOlderThan removes mentions observed before the cutoff and returns
	// the number removed.
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)

	// Ping verifies the underlying store is reachable.
	Ping(ctx context.Context) error
}
