// Package conversation advances a sender's multi-step flow one message at a
// time. Field validation happens here, before a step is advanced, so a flow
// can never complete with a missing or malformed field and the operation
// handlers receive fully validated arguments.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/savaki/events-bot/pkg/intent"
	"github.com/savaki/events-bot/pkg/models"
)

// Field names collected during flows
const (
	FieldName        = "name"
	FieldDate        = "date"
	FieldAddress     = "address"
	FieldPoster      = "poster"
	FieldDescription = "description"
	FieldEventID     = "event_id"
)

// creatingFields is the strictly ordered field sequence for the create flow
var creatingFields = []string{FieldName, FieldDate, FieldAddress, FieldPoster, FieldDescription}

// deletingFields is the single-field sequence for the delete flow
var deletingFields = []string{FieldEventID}

// RequiredFields returns the ordered required fields for an intent
func RequiredFields(sessionIntent string) []string {
	switch sessionIntent {
	case models.IntentCreating:
		return creatingFields
	case models.IntentDeleting:
		return deletingFields
	default:
		return nil
	}
}

// Operation identifies which handler a completed flow resolves to
type Operation string

const (
	OpCreate Operation = "create"
	OpList   Operation = "list"
	OpDelete Operation = "delete"
)

// OutcomeKind classifies the result of stepping the state machine
type OutcomeKind int

const (
	// OutcomePrompt asks the sender for the next required field
	OutcomePrompt OutcomeKind = iota
	// OutcomeReprompt repeats the current field after a validation failure
	OutcomeReprompt
	// OutcomeComplete means all fields are collected and a handler should run
	OutcomeComplete
	// OutcomeCancelled means the sender abandoned the flow
	OutcomeCancelled
	// OutcomeHelp means the message was not understood
	OutcomeHelp
)

// Outcome is the result of a single transition
type Outcome struct {
	Kind   OutcomeKind
	Op     Operation         // set when Kind is OutcomeComplete
	Field  string            // field being prompted or re-prompted for
	Reason string            // validation failure reason on OutcomeReprompt
	Fields map[string]string // finalized arguments on OutcomeComplete
}

// Step advances the session for one inbound message, mutating it in place,
// and returns what the router should do next. Command keywords always win
// over an in-progress flow: a "new event" sent mid-flow restarts from the
// beginning.
func Step(sess *models.Session, res intent.Result, msg models.InboundMessage) Outcome {
	switch res.Type {
	case intent.Cancel:
		sess.Reset()
		return Outcome{Kind: OutcomeCancelled}

	case intent.Unknown:
		// No transition; the router replies with help and leaves state alone.
		return Outcome{Kind: OutcomeHelp}

	case intent.Create:
		sess.Reset()
		sess.Intent = models.IntentCreating
		return Outcome{Kind: OutcomePrompt, Field: creatingFields[0]}

	case intent.List:
		// Stateless operation, no fields required.
		sess.Reset()
		return Outcome{Kind: OutcomeComplete, Op: OpList, Fields: map[string]string{}}

	case intent.Delete:
		if res.EventID != "" {
			// Single-field flow short-circuits when the id rides along.
			sess.Reset()
			return Outcome{
				Kind:   OutcomeComplete,
				Op:     OpDelete,
				Fields: map[string]string{FieldEventID: res.EventID},
			}
		}
		sess.Reset()
		sess.Intent = models.IntentDeleting
		return Outcome{Kind: OutcomePrompt, Field: deletingFields[0]}

	case intent.Continue:
		return stepField(sess, msg)
	}

	// Classifier and state machine disagree; the router resets defensively.
	return Outcome{Kind: OutcomeHelp}
}

// stepField validates the message against the field expected at the current
// step and advances on success.
func stepField(sess *models.Session, msg models.InboundMessage) Outcome {
	fields := RequiredFields(sess.Intent)
	if fields == nil || sess.Step >= len(fields) {
		// Inconsistent state, treated as not understood.
		return Outcome{Kind: OutcomeHelp}
	}

	field := fields[sess.Step]
	value, reason := validateField(field, msg)
	if reason != "" {
		return Outcome{Kind: OutcomeReprompt, Field: field, Reason: reason}
	}

	sess.Fields[field] = value
	sess.Step++

	if sess.Step < len(fields) {
		return Outcome{Kind: OutcomePrompt, Field: fields[sess.Step]}
	}

	collected := sess.Fields
	op := OpCreate
	if sess.Intent == models.IntentDeleting {
		op = OpDelete
	}
	sess.Reset()
	return Outcome{Kind: OutcomeComplete, Op: op, Fields: collected}
}

// validateField checks a message against the expected field type and returns
// the normalized value, or a failure reason for the re-prompt.
func validateField(field string, msg models.InboundMessage) (value string, reason string) {
	text := strings.TrimSpace(msg.Text)

	switch field {
	case FieldDate:
		date, err := parseDate(text)
		if err != nil {
			return "", fmt.Sprintf("%q doesn't look like a date.", text)
		}
		return date, ""

	case FieldPoster:
		if !msg.HasMedia() {
			return "", "That wasn't an image."
		}
		return msg.MediaURL, ""

	default:
		if text == "" {
			return "", "I need some text for that."
		}
		return text, ""
	}
}

// dateLayouts are the accepted inbound date formats, normalized to
// models.DateLayout for storage and sorting.
var dateLayouts = []string{models.DateLayout, "02/01/2006", "2 January 2006"}

func parseDate(text string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, text); err == nil {
			return t.Format(models.DateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date: %s", text)
}
