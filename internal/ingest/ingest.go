// Package ingest pulls chat messages from external feeds and turns
// detector matches into stored mentions.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"token-radar/internal/domain"
)

// Source streams chat messages from one upstream feed. The returned
// channel is closed when the context is cancelled or the feed ends.
type Source interface {
	// Name identifies the source in logs.
	Name() string

	// Messages opens the feed and returns the message stream. An error
	// means the feed could not be opened at all; transient failures
	// after that are handled inside the source.
	Messages(ctx context.Context) (<-chan domain.ChatMessage, error)
}

// chatFrame is the wire shape both sources carry: one chat message as
// a JSON object. observed_at is RFC3339 and optional.
type chatFrame struct {
	SourceID   int64     `json:"source_id"`
	MessageID  int64     `json:"message_id"`
	Text       string    `json:"text"`
	ObservedAt time.Time `json:"observed_at,omitempty"`
}

// decodeFrame parses one wire frame into a ChatMessage.
func decodeFrame(data []byte) (domain.ChatMessage, error) {
	var frame chatFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return domain.ChatMessage{}, fmt.Errorf("unmarshal frame: %w", err)
	}
	if frame.Text == "" {
		return domain.ChatMessage{}, fmt.Errorf("frame has no text")
	}
	return domain.ChatMessage{
		SourceID:   frame.SourceID,
		MessageID:  frame.MessageID,
		Text:       frame.Text,
		ObservedAt: frame.ObservedAt,
	}, nil
}
