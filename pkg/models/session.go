package models

import "time"

// Intent constants for the conversational state
const (
	IntentNone     = "NONE"
	IntentCreating = "CREATING"
	IntentDeleting = "DELETING"
)

// Session is the per-sender conversational state. There is exactly one
// session per sender, overwritten in place on every inbound message.
type Session struct {
	Sender        string            `dynamodbav:"sender"`
	Intent        string            `dynamodbav:"intent"` // NONE, CREATING, DELETING
	Step          int               `dynamodbav:"step"`
	Fields        map[string]string `dynamodbav:"fields,omitempty"`
	CreatedAt     time.Time         `dynamodbav:"created_at"`
	LastUpdatedAt time.Time         `dynamodbav:"last_updated_at"`
	TTL           int64             `dynamodbav:"ttl"` // Unix timestamp, DynamoDB TTL attribute
}

// NewSession creates an idle session for a sender
func NewSession(sender string, expiry time.Duration) *Session {
	now := time.Now()
	return &Session{
		Sender:        sender,
		Intent:        IntentNone,
		Step:          0,
		Fields:        map[string]string{},
		CreatedAt:     now,
		LastUpdatedAt: now,
		TTL:           now.Add(expiry).Unix(),
	}
}

// Idle reports whether no multi-step flow is in progress
func (s *Session) Idle() bool {
	return s.Intent == IntentNone || s.Intent == ""
}

// Expired reports whether the session is older than the expiry window.
// Expired sessions are treated as idle before the new message is evaluated.
func (s *Session) Expired(window time.Duration) bool {
	return time.Since(s.LastUpdatedAt) > window
}

// Reset clears the session back to idle with no collected fields
func (s *Session) Reset() {
	s.Intent = IntentNone
	s.Step = 0
	s.Fields = map[string]string{}
}

// Touch updates the activity timestamp and pushes out the TTL
func (s *Session) Touch(expiry time.Duration) {
	now := time.Now()
	s.LastUpdatedAt = now
	s.TTL = now.Add(expiry).Unix()
}

// Clone returns a deep copy of the session. The router snapshots the session
// before stepping it so a failed storage write can leave the sender on the
// same step for a retry.
func (s *Session) Clone() *Session {
	c := *s
	c.Fields = make(map[string]string, len(s.Fields))
	for k, v := range s.Fields {
		c.Fields[k] = v
	}
	return &c
}
