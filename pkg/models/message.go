package models

import "time"

// InboundMessage is a single chat message delivered by the messaging
// provider's webhook. It is never persisted beyond the request.
type InboundMessage struct {
	Sender     string // stable sender identifier (phone number)
	Text       string // raw message text, possibly empty
	MediaURL   string // provider-hosted media reference, empty if none
	ReceivedAt time.Time
}

// HasMedia reports whether the message carries a media attachment
func (m InboundMessage) HasMedia() bool {
	return m.MediaURL != ""
}
