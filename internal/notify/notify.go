// Package notify delivers trending-token alerts to operators.
package notify

import (
	"context"

	"token-radar/internal/domain"
)

// Notifier delivers one alert. A nil error means the alert reached the
// operator (or was intentionally logged in dry-run mode) and its
// cooldown may start.
type Notifier interface {
	Notify(ctx context.Context, token *domain.TrendingToken) error
}

// NameLookup resolves a display name for a contract. Implementations
// must be best effort; "" means unknown.
type NameLookup interface {
	TokenName(ctx context.Context, contract string) string
}
