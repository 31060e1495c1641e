package domain

import "time"

// Mention represents one observation of a contract address in a chat message.
// Corresponds to contract_mentions table in PostgreSQL.
type Mention struct {
	ID         int64     // BIGSERIAL primary key
	Contract   string    // canonical contract address
	Chain      Chain     // "solana" | "evm"
	SourceID   int64     // chat/channel the message came from
	MessageID  int64     // message id within the source
	ObservedAt time.Time // when the mention was seen (UTC)
}
