// Package intent maps raw inbound text to a symbolic intent.
package intent

import "strings"

// Type is the symbolic action a message maps to
type Type string

const (
	Create   Type = "CREATE"
	List     Type = "LIST"
	Delete   Type = "DELETE"
	Cancel   Type = "CANCEL"
	Continue Type = "CONTINUE"
	Unknown  Type = "UNKNOWN"
)

// Result is the classifier output. Malformed or missing command arguments
// are carried here rather than raised as errors; the router decides how to
// react (e.g. a DELETE with no id starts a one-field flow).
type Result struct {
	Type    Type
	EventID string // extracted from "delete <id>", may be empty
}

// Classify maps a raw message to an intent. Command keywords are matched
// case-insensitively at the start of the message. Anything else is CONTINUE
// when the sender has a flow in progress, otherwise UNKNOWN.
func Classify(text string, hasActiveFlow bool) Result {
	normalized := strings.ToLower(strings.TrimSpace(text))

	switch {
	case normalized == "cancel":
		return Result{Type: Cancel}
	case strings.HasPrefix(normalized, "new event") || normalized == "create":
		return Result{Type: Create}
	case strings.HasPrefix(normalized, "my events") || normalized == "list":
		return Result{Type: List}
	case strings.HasPrefix(normalized, "delete"):
		return Result{Type: Delete, EventID: extractEventID(text)}
	}

	if hasActiveFlow {
		return Result{Type: Continue}
	}
	return Result{Type: Unknown}
}

// extractEventID pulls the trailing id token from a delete command.
// Accepts "delete evt-123" and "delete: evt-123".
func extractEventID(text string) string {
	rest := strings.TrimSpace(text)
	rest = rest[len("delete"):]
	rest = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rest), ":"))
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
