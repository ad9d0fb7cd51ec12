package models

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// DateLayout is the canonical calendar-date format stored on events
const DateLayout = "2006-01-02"

// Event represents an event created by a WhatsApp user
type Event struct {
	EventID     string    `dynamodbav:"event_id"`
	Owner       string    `dynamodbav:"owner"` // sender phone, e.g. "whatsapp:+15551234567"
	Name        string    `dynamodbav:"name"`
	Date        string    `dynamodbav:"date"` // YYYY-MM-DD
	Address     string    `dynamodbav:"address"`
	Description string    `dynamodbav:"description"`
	PosterURL   string    `dynamodbav:"poster_url,omitempty"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
}

// NewEvent creates a new event with a generated ID. The ID and owner are
// immutable after creation; everything else is set from the collected fields.
func NewEvent(owner, name, date, address, description string) *Event {
	return &Event{
		EventID:     generateEventID(),
		Owner:       owner,
		Name:        name,
		Date:        date,
		Address:     address,
		Description: description,
		CreatedAt:   time.Now(),
	}
}

// generateEventID creates a unique event identifier
func generateEventID() string {
	return "evt-" + generateULID()
}

// generateULID generates a ULID string for unique identifiers
func generateULID() string {
	id, _ := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	return id.String()
}
