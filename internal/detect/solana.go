package detect

import (
	"regexp"
	"time"

	"github.com/mr-tron/base58"

	"token-radar/internal/domain"
)

// solanaPattern matches a base58 run of plausible address length. The
// alphabet excludes 0, O, I and l.
var solanaPattern = regexp.MustCompile(`\b([1-9A-HJ-NP-Za-km-z]{32,44})\b`)

// solanaFalsePositives holds base58-legal words that show up in chat
// spam and crypto marketing copy.
var solanaFalsePositives = map[string]struct{}{
	"Bitcoin": {}, "bitcoin": {},
	"Ethereum": {}, "ethereum": {},
	"Solana": {}, "solana": {},
	"Polygon": {}, "polygon": {},
	"Avalanche": {}, "avalanche": {},
	"Cardano": {}, "cardano": {},
	"Polkadot": {}, "polkadot": {},
	"Chainlink": {}, "chainlink": {},
	"Uniswap": {}, "uniswap": {},
	"Airdrop": {}, "airdrop": {},
	"Binance": {}, "binance": {},
	"Coinbase": {}, "coinbase": {},
	"Bullish": {}, "bullish": {},
	"Bearish": {}, "bearish": {},
	"Moonshot": {}, "moonshot": {},
	"Diamond": {}, "diamond": {},
	"Phantom": {}, "phantom": {},
	"Jupiter": {}, "jupiter": {},
	"Raydium": {}, "raydium": {},
	"Meteora": {}, "meteora": {},
	"Telegram": {}, "telegram": {},
	"Channel": {}, "channel": {},
	"Private": {}, "private": {},
	"Welcome": {}, "welcome": {},
	"Trading": {}, "trading": {},
	"Profits": {}, "profits": {},
	"Million": {}, "million": {},
	"Billion": {}, "billion": {},
}

// solanaSystemAddresses holds program and sysvar addresses that appear
// in pasted transaction dumps but never identify a token mint.
var solanaSystemAddresses = map[string]struct{}{
	"11111111111111111111111111111111":             {},
	"TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA":  {},
	"So11111111111111111111111111111111111111112":  {},
	"SysvarC1ock11111111111111111111111111111111":  {},
	"SysvarRent111111111111111111111111111111111":  {},
	"ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL": {},
	"metaqbxxUerdq28cj1RbAWkYQm3ybzjb6a8bt518x1s":  {},
}

// SolanaDetector finds Solana mint addresses: base58 runs of 32 to 44
// characters that decode to exactly 32 bytes.
type SolanaDetector struct{}

var _ Detector = (*SolanaDetector)(nil)

// NewSolanaDetector creates a Solana address detector.
func NewSolanaDetector() *SolanaDetector {
	return &SolanaDetector{}
}

// Chain returns the chain this detector covers.
func (d *SolanaDetector) Chain() domain.Chain {
	return domain.ChainSolana
}

// Detect returns every distinct Solana address in text.
func (d *SolanaDetector) Detect(text string, sourceID, messageID int64, now time.Time) []*domain.Mention {
	var mentions []*domain.Mention
	seen := make(map[string]struct{})

	for _, candidate := range solanaPattern.FindAllString(text, -1) {
		if _, ok := seen[candidate]; ok {
			continue
		}
		if _, ok := solanaFalsePositives[candidate]; ok {
			continue
		}
		if _, ok := solanaSystemAddresses[candidate]; ok {
			continue
		}
		if !looksLikeSolanaAddress(candidate) {
			continue
		}

		decoded, err := base58.Decode(candidate)
		if err != nil || len(decoded) != 32 {
			continue
		}

		seen[candidate] = struct{}{}
		mentions = append(mentions, &domain.Mention{
			Contract:   candidate,
			Chain:      domain.ChainSolana,
			SourceID:   sourceID,
			MessageID:  messageID,
			ObservedAt: now,
		})
	}

	return mentions
}

// looksLikeSolanaAddress rejects candidates without a mix of upper,
// lower and digit characters. English words and repeated-character
// vanity strings rarely have all three.
func looksLikeSolanaAddress(candidate string) bool {
	var hasUpper, hasLower, hasDigit bool
	for _, r := range candidate {
		switch {
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= '1' && r <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
