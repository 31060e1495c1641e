package detect

import (
	"testing"
	"time"

	"token-radar/internal/domain"
)

var detectTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// bonkMint is a real 44-character Solana mint address.
const bonkMint = "DezXAZ8z7PnrnRJjz3wXBoRgixCa6xjnB7YaB1pPB263"

// usdtContract is a real EVM contract address with mixed-case checksum.
const usdtContract = "0xdAC17F958D2ee523a2206206994597C13D831ec7"

func TestSolanaDetectsValidAddress(t *testing.T) {
	detector := NewSolanaDetector()

	mentions := detector.Detect("Check out this token: "+bonkMint, 7, 99, detectTime)

	if len(mentions) != 1 {
		t.Fatalf("Expected 1 mention, got %d", len(mentions))
	}
	m := mentions[0]
	if m.Contract != bonkMint {
		t.Errorf("Expected contract %s, got %s", bonkMint, m.Contract)
	}
	if m.Chain != domain.ChainSolana {
		t.Errorf("Expected chain solana, got %s", m.Chain)
	}
	if m.SourceID != 7 || m.MessageID != 99 {
		t.Errorf("Expected source 7 message 99, got %d/%d", m.SourceID, m.MessageID)
	}
	if !m.ObservedAt.Equal(detectTime) {
		t.Errorf("Expected observed at %v, got %v", detectTime, m.ObservedAt)
	}
}

func TestSolanaIgnoresCommonWords(t *testing.T) {
	detector := NewSolanaDetector()

	msg := "Bitcoin and Ethereum are going up today! Solana is great."
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 0 {
		t.Errorf("Expected no mentions, got %d", len(mentions))
	}
}

func TestSolanaIgnoresSystemAddresses(t *testing.T) {
	detector := NewSolanaDetector()

	msg := "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 0 {
		t.Errorf("Expected no mentions for the token program, got %d", len(mentions))
	}
}

func TestSolanaDeduplicatesWithinMessage(t *testing.T) {
	detector := NewSolanaDetector()

	msg := "Buy " + bonkMint + " now! I said " + bonkMint + "!"
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 1 {
		t.Errorf("Expected 1 mention, got %d", len(mentions))
	}
}

func TestSolanaMultipleAddresses(t *testing.T) {
	detector := NewSolanaDetector()

	msg := bonkMint + " 7GCihgDB8fe6KNjn2MYtkzZcRjQy3t9GHdC8uHYmW2hr"
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 2 {
		t.Errorf("Expected 2 mentions, got %d", len(mentions))
	}
}

func TestSolanaRequiresMixedCaseAndDigits(t *testing.T) {
	detector := NewSolanaDetector()

	// All lowercase, no digits.
	msg := "aaaaaaaabbbbbbbbccccccccddddddddeeee"
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 0 {
		t.Errorf("Expected no mentions, got %d", len(mentions))
	}
}

func TestSolanaTooShort(t *testing.T) {
	detector := NewSolanaDetector()

	if mentions := detector.Detect("Short1Address2Here3", 1, 1, detectTime); len(mentions) != 0 {
		t.Errorf("Expected no mentions, got %d", len(mentions))
	}
}

func TestSolanaRejectsWrongByteLength(t *testing.T) {
	detector := NewSolanaDetector()

	// Base58-legal, mixed case and digits, but 35 characters decode to
	// well under 32 bytes.
	msg := "Aa1Aa1Aa1Aa1Aa1Aa1Aa1Aa1Aa1Aa1Aa1Aa"
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 0 {
		t.Errorf("Expected no mentions for short decode, got %d", len(mentions))
	}
}

func TestSolanaChain(t *testing.T) {
	if chain := NewSolanaDetector().Chain(); chain != domain.ChainSolana {
		t.Errorf("Expected solana, got %s", chain)
	}
}

func TestEVMDetectsValidAddress(t *testing.T) {
	detector := NewEVMDetector()

	mentions := detector.Detect("New token: "+usdtContract, 7, 99, detectTime)

	if len(mentions) != 1 {
		t.Fatalf("Expected 1 mention, got %d", len(mentions))
	}
	m := mentions[0]
	if m.Contract != "0xdac17f958d2ee523a2206206994597c13d831ec7" {
		t.Errorf("Expected lowercased contract, got %s", m.Contract)
	}
	if m.Chain != domain.ChainEVM {
		t.Errorf("Expected chain evm, got %s", m.Chain)
	}
	if m.SourceID != 7 || m.MessageID != 99 {
		t.Errorf("Expected source 7 message 99, got %d/%d", m.SourceID, m.MessageID)
	}
}

func TestEVMNormalizesToLowercase(t *testing.T) {
	detector := NewEVMDetector()

	mentions := detector.Detect("0xDAC17F958D2EE523A2206206994597C13D831EC7", 1, 1, detectTime)

	if len(mentions) != 1 {
		t.Fatalf("Expected 1 mention, got %d", len(mentions))
	}
	if mentions[0].Contract != "0xdac17f958d2ee523a2206206994597c13d831ec7" {
		t.Errorf("Expected lowercased contract, got %s", mentions[0].Contract)
	}
}

func TestEVMIgnoresBurnAddresses(t *testing.T) {
	detector := NewEVMDetector()

	burns := []string{
		"0x0000000000000000000000000000000000000000",
		"0x000000000000000000000000000000000000dead",
		"0xffffffffffffffffffffffffffffffffffffffff",
	}
	for _, addr := range burns {
		if mentions := detector.Detect(addr, 1, 1, detectTime); len(mentions) != 0 {
			t.Errorf("Expected %s to be ignored, got %d mentions", addr, len(mentions))
		}
	}
}

func TestEVMDeduplicatesCaseInsensitive(t *testing.T) {
	detector := NewEVMDetector()

	msg := "0xDAC17F958D2EE523A2206206994597C13D831EC7 0xdac17f958d2ee523a2206206994597c13d831ec7"
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 1 {
		t.Errorf("Expected 1 mention, got %d", len(mentions))
	}
}

func TestEVMMultipleAddresses(t *testing.T) {
	detector := NewEVMDetector()

	msg := usdtContract + " and 0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	if mentions := detector.Detect(msg, 1, 1, detectTime); len(mentions) != 2 {
		t.Errorf("Expected 2 mentions, got %d", len(mentions))
	}
}

func TestEVMRejectsShortHex(t *testing.T) {
	detector := NewEVMDetector()

	if mentions := detector.Detect("0x1234567890abcdef", 1, 1, detectTime); len(mentions) != 0 {
		t.Errorf("Expected no mentions for short hex, got %d", len(mentions))
	}
}

func TestEVMEmptyMessage(t *testing.T) {
	detector := NewEVMDetector()

	if mentions := detector.Detect("", 1, 1, detectTime); len(mentions) != 0 {
		t.Errorf("Expected no mentions, got %d", len(mentions))
	}
}

func TestEVMChain(t *testing.T) {
	if chain := NewEVMDetector().Chain(); chain != domain.ChainEVM {
		t.Errorf("Expected evm, got %s", chain)
	}
}

func TestBothChainsInOneMessage(t *testing.T) {
	msg := "SOL: " + bonkMint + " ETH: " + usdtContract

	solMentions := NewSolanaDetector().Detect(msg, 1, 1, detectTime)
	evmMentions := NewEVMDetector().Detect(msg, 1, 1, detectTime)

	if len(solMentions) != 1 {
		t.Errorf("Expected 1 solana mention, got %d", len(solMentions))
	}
	if len(evmMentions) != 1 {
		t.Errorf("Expected 1 evm mention, got %d", len(evmMentions))
	}
}
