package detect

import (
	"regexp"
	"strings"
	"time"

	"token-radar/internal/domain"
)

// evmPattern matches a standard EVM address: 0x plus exactly 40 hex
// characters, on word boundaries.
var evmPattern = regexp.MustCompile(`\b(0x[0-9a-fA-F]{40})\b`)

// evmBlacklist holds burn and zero addresses that show up in chat
// constantly but never identify a token.
var evmBlacklist = map[string]struct{}{
	"0x0000000000000000000000000000000000000000": {},
	"0xffffffffffffffffffffffffffffffffffffffff": {},
	"0x000000000000000000000000000000000000dead": {},
	"0xdead000000000000000000000000000000000000": {},
}

// EVMDetector finds EVM-compatible contract addresses (Ethereum, BSC,
// Base, Arbitrum and the rest). Addresses are case-insensitive on
// chain, so matches are normalized to lowercase before dedup.
type EVMDetector struct{}

var _ Detector = (*EVMDetector)(nil)

// NewEVMDetector creates an EVM address detector.
func NewEVMDetector() *EVMDetector {
	return &EVMDetector{}
}

// Chain returns the chain this detector covers.
func (d *EVMDetector) Chain() domain.Chain {
	return domain.ChainEVM
}

// Detect returns every distinct EVM address in text.
func (d *EVMDetector) Detect(text string, sourceID, messageID int64, now time.Time) []*domain.Mention {
	var mentions []*domain.Mention
	seen := make(map[string]struct{})

	for _, raw := range evmPattern.FindAllString(text, -1) {
		contract := strings.ToLower(raw)

		if _, ok := seen[contract]; ok {
			continue
		}
		if _, ok := evmBlacklist[contract]; ok {
			continue
		}

		seen[contract] = struct{}{}
		mentions = append(mentions, &domain.Mention{
			Contract:   contract,
			Chain:      domain.ChainEVM,
			SourceID:   sourceID,
			MessageID:  messageID,
			ObservedAt: now,
		})
	}

	return mentions
}
