package domain

import "time"

// ChatMessage is one raw message handed to the address detectors.
// Sources (WebSocket, Kafka) normalize their payloads into this shape.
type ChatMessage struct {
	SourceID   int64     // chat/channel the message came from
	MessageID  int64     // message id within the source
	Text       string    // message body
	ObservedAt time.Time // receive time (UTC); zero means "use time of processing"
}
