package postgres

import (
	"context"
	"fmt"
	"time"

	"token-radar/internal/domain"
	"token-radar/internal/storage"
)

// MentionStore implements storage.MentionStore using PostgreSQL.
type MentionStore struct {
	pool *Pool
}

// NewMentionStore creates a new MentionStore.
func NewMentionStore(pool *Pool) *MentionStore {
	return &MentionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MentionStore = (*MentionStore)(nil)

// RecordMention adds a mention observation. Returns false when the
// (contract, source_id, message_id) key was already recorded.
func (s *MentionStore) RecordMention(ctx context.Context, m *domain.Mention) (bool, error) {
	if m == nil || m.Contract == "" {
		return false, storage.ErrInvalidInput
	}

	query := `
		INSERT INTO contract_mentions (contract, chain, source_id, message_id, observed_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contract, source_id, message_id) DO NOTHING
		RETURNING id
	`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		m.Contract,
		string(m.Chain),
		m.SourceID,
		m.MessageID,
		m.ObservedAt.UTC(),
	).Scan(&id)
	if err != nil {
		// DO NOTHING suppresses the row, so a duplicate surfaces as no rows.
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("record mention: %w", err)
	}

	m.ID = id
	return true, nil
}

// AggregateWindow returns per-contract counts over mentions observed at or
// after since, applying the mention and unique-source floors in the query.
func (s *MentionStore) AggregateWindow(ctx context.Context, since time.Time, chain domain.Chain, minMentions, minUniqueSources int) ([]*domain.TrendingToken, error) {
	query := `
		SELECT contract, chain, COUNT(*) AS mention_count, COUNT(DISTINCT source_id) AS unique_sources
		FROM contract_mentions
		WHERE observed_at >= $1 AND ($2 = '' OR chain = $2)
		GROUP BY contract, chain
		HAVING COUNT(*) >= $3 AND COUNT(DISTINCT source_id) >= $4
		ORDER BY mention_count DESC, contract ASC
	`

	rows, err := s.pool.Query(ctx, query, since.UTC(), string(chain), minMentions, minUniqueSources)
	if err != nil {
		return nil, fmt.Errorf("aggregate mention window: %w", err)
	}
	defer rows.Close()

	var tokens []*domain.TrendingToken
	for rows.Next() {
		var t domain.TrendingToken
		var ch string
		if err := rows.Scan(&t.Contract, &ch, &t.MentionCount, &t.UniqueSources); err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}
		t.Chain = domain.Chain(ch)
		tokens = append(tokens, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending rows: %w", err)
	}

	return tokens, nil
}

// CountInRange returns how many mentions of contract were observed within [since, until).
func (s *MentionStore) CountInRange(ctx context.Context, contract string, since, until time.Time) (int, error) {
	if contract == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		SELECT COUNT(*)
		FROM contract_mentions
		WHERE contract = $1 AND observed_at >= $2 AND observed_at < $3
	`

	var count int
	err := s.pool.QueryRow(ctx, query, contract, since.UTC(), until.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mentions in range: %w", err)
	}

	return count, nil
}

// DeleteOlderThan removes mentions observed before the cutoff.
func (s *MentionStore) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM contract_mentions WHERE observed_at < $1
	`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old mentions: %w", err)
	}

	return tag.RowsAffected(), nil
}

// Ping verifies the database connection.
func (s *MentionStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
