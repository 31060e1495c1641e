package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"token-radar/internal/domain"
	"token-radar/internal/storage"
)

// MentionStore is an in-memory implementation of storage.MentionStore.
// Used by tests and the memory storage backend of the daemon.
type MentionStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.Mention // keyed by composite key
	nextID int64
}

// NewMentionStore creates a new in-memory mention store.
func NewMentionStore() *MentionStore {
	return &MentionStore{
		data: make(map[string]*domain.Mention),
	}
}

// mentionKey generates a unique key for a mention.
func mentionKey(contract string, sourceID, messageID int64) string {
	return fmt.Sprintf("%s|%d|%d", contract, sourceID, messageID)
}

// RecordMention adds a mention observation. Returns false if the
// (contract, source_id, message_id) key was already recorded.
func (s *MentionStore) RecordMention(_ context.Context, m *domain.Mention) (bool, error) {
	if m == nil || m.Contract == "" {
		return false, storage.ErrInvalidInput
	}

	key := mentionKey(m.Contract, m.SourceID, m.MessageID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return false, nil
	}

	s.nextID++
	stored := *m
	stored.ID = s.nextID
	stored.ObservedAt = m.ObservedAt.UTC()
	s.data[key] = &stored

	m.ID = stored.ID
	return true, nil
}

// AggregateWindow returns per-contract counts over mentions observed at or
// after since, applying the mention and unique-source floors.
func (s *MentionStore) AggregateWindow(_ context.Context, since time.Time, chain domain.Chain, minMentions, minUniqueSources int) ([]*domain.TrendingToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type group struct {
		chain   domain.Chain
		count   int
		sources map[int64]struct{}
	}
	groups := make(map[string]*group)

	since = since.UTC()
	for _, m := range s.data {
		if m.ObservedAt.Before(since) {
			continue
		}
		if chain != domain.ChainAll && m.Chain != chain {
			continue
		}
		g, ok := groups[m.Contract]
		if !ok {
			g = &group{chain: m.Chain, sources: make(map[int64]struct{})}
			groups[m.Contract] = g
		}
		g.count++
		g.sources[m.SourceID] = struct{}{}
	}

	var tokens []*domain.TrendingToken
	for contract, g := range groups {
		if g.count < minMentions || len(g.sources) < minUniqueSources {
			continue
		}
		tokens = append(tokens, &domain.TrendingToken{
			Contract:      contract,
			Chain:         g.chain,
			MentionCount:  g.count,
			UniqueSources: len(g.sources),
		})
	}

	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].MentionCount != tokens[j].MentionCount {
			return tokens[i].MentionCount > tokens[j].MentionCount
		}
		return tokens[i].Contract < tokens[j].Contract
	})

	return tokens, nil
}

// CountInRange returns how many mentions of contract were observed within [since, until).
func (s *MentionStore) CountInRange(_ context.Context, contract string, since, until time.Time) (int, error) {
	if contract == "" {
		return 0, storage.ErrInvalidInput
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	since = since.UTC()
	until = until.UTC()

	count := 0
	for _, m := range s.data {
		if m.Contract != contract {
			continue
		}
		if m.ObservedAt.Before(since) || !m.ObservedAt.Before(until) {
			continue
		}
		count++
	}

	return count, nil
}

// DeleteOlderThan removes mentions observed before the cutoff.
func (s *MentionStore) DeleteOlderThan(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before = before.UTC()

	var removed int64
	for key, m := range s.data {
		if m.ObservedAt.Before(before) {
			delete(s.data, key)
			removed++
		}
	}

	return removed, nil
}

// Ping always succeeds for the in-memory store.
func (s *MentionStore) Ping(_ context.Context) error {
	return nil
}

var _ storage.MentionStore = (*MentionStore)(nil)
