package clickhouse

import (
	"context"
	"fmt"
	"time"

	"token-radar/internal/domain"
	"token-radar/internal/storage"
)

// MentionStore implements storage.MentionStore using ClickHouse.
//
// The contract_mentions table is a ReplacingMergeTree keyed on
// (contract, source_id, message_id). Inserts go through an exists check, and
// every read deduplicates on the key, so a duplicate that slips in between
// the check and the insert never changes a count.
type MentionStore struct {
	conn *Conn
}

// NewMentionStore creates a new MentionStore.
func NewMentionStore(conn *Conn) *MentionStore {
	return &MentionStore{conn: conn}
}

// Compile-time interface check.
var _ storage.MentionStore = (*MentionStore)(nil)

// RecordMention adds a mention observation. Returns false when the
// (contract, source_id, message_id) key was already recorded.
func (s *MentionStore) RecordMention(ctx context.Context, m *domain.Mention) (bool, error) {
	if m == nil || m.Contract == "" {
		return false, storage.ErrInvalidInput
	}

	exists, err := s.exists(ctx, m.Contract, m.SourceID, m.MessageID)
	if err != nil {
		return false, fmt.Errorf("check mention exists: %w", err)
	}
	if exists {
		return false, nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO contract_mentions (contract, chain, source_id, message_id, observed_at)
	`)
	if err != nil {
		return false, fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(m.Contract, string(m.Chain), m.SourceID, m.MessageID, m.ObservedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return false, fmt.Errorf("send batch: %w", err)
	}

	return true, nil
}

// AggregateWindow returns per-contract counts over mentions observed at or
// after since. The inner GROUP BY collapses replaced-but-unmerged rows before
// counting.
func (s *MentionStore) AggregateWindow(ctx context.Context, since time.Time, chain domain.Chain, minMentions, minUniqueSources int) ([]*domain.TrendingToken, error) {
	query := `
		SELECT contract, chain, count() AS mention_count, uniqExact(source_id) AS unique_sources
		FROM (
			SELECT contract, chain, source_id, message_id
			FROM contract_mentions
			WHERE observed_at >= ? AND (? = '' OR chain = ?)
			GROUP BY contract, chain, source_id, message_id
		)
		GROUP BY contract, chain
		HAVING mention_count >= ? AND unique_sources >= ?
		ORDER BY mention_count DESC, contract ASC
	`

	rows, err := s.conn.Query(ctx, query,
		since.UTC(), string(chain), string(chain), uint64(minMentions), uint64(minUniqueSources))
	if err != nil {
		return nil, fmt.Errorf("aggregate mention window: %w", err)
	}
	defer rows.Close()

	return scanTrendingTokens(rows)
}

// CountInRange returns how many mentions of contract were observed within [since, until).
func (s *MentionStore) CountInRange(ctx context.Context, contract string, since, until time.Time) (int, error) {
	if contract == "" {
		return 0, storage.ErrInvalidInput
	}

	query := `
		SELECT count() FROM (
			SELECT contract, source_id, message_id
			FROM contract_mentions
			WHERE contract = ? AND observed_at >= ? AND observed_at < ?
			GROUP BY contract, source_id, message_id
		)
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, contract, since.UTC(), until.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count mentions in range: %w", err)
	}

	return int(count), nil
}

// DeleteOlderThan removes mentions observed before the cutoff. ClickHouse does
// not report affected rows, so the count is taken before the delete.
func (s *MentionStore) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	var count uint64
	err := s.conn.QueryRow(ctx, `
		SELECT count() FROM contract_mentions WHERE observed_at < ?
	`, before.UTC()).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count old mentions: %w", err)
	}

	if count == 0 {
		return 0, nil
	}

	err = s.conn.Exec(ctx, `
		DELETE FROM contract_mentions WHERE observed_at < ?
	`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete old mentions: %w", err)
	}

	return int64(count), nil
}

// Ping verifies the ClickHouse connection.
func (s *MentionStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// exists checks if a mention with the given key exists.
func (s *MentionStore) exists(ctx context.Context, contract string, sourceID, messageID int64) (bool, error) {
	query := `
		SELECT count(*) FROM contract_mentions
		WHERE contract = ? AND source_id = ? AND message_id = ?
	`

	var count uint64
	err := s.conn.QueryRow(ctx, query, contract, sourceID, messageID).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanTrendingTokens scans aggregate rows into trending entries.
func scanTrendingTokens(rows chRows) ([]*domain.TrendingToken, error) {
	var tokens []*domain.TrendingToken

	for rows.Next() {
		var t domain.TrendingToken
		var chain string
		var mentionCount, uniqueSources uint64

		if err := rows.Scan(&t.Contract, &chain, &mentionCount, &uniqueSources); err != nil {
			return nil, fmt.Errorf("scan trending row: %w", err)
		}

		t.Chain = domain.Chain(chain)
		t.MentionCount = int(mentionCount)
		t.UniqueSources = int(uniqueSources)
		tokens = append(tokens, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trending rows: %w", err)
	}

	return tokens, nil
}
