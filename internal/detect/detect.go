// Package detect extracts contract addresses from raw chat text.
//
// Each supported chain has its own detector. Adding a chain means
// adding a detector here and registering it in the ingest runner.
package detect

import (
	"time"

	"token-radar/internal/domain"
)

// Detector extracts contract mentions for one chain from a message.
// Implementations must dedup within a single message: the same address
// pasted twice in one message is one mention.
type Detector interface {
	// Chain returns the canonical chain identifier the detector covers.
	Chain() domain.Chain

	// Detect returns every distinct contract address found in text,
	// stamped with the message coordinates and observation time.
	Detect(text string, sourceID, messageID int64, now time.Time) []*domain.Mention
}
