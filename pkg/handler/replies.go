package handler

import (
	"fmt"
	"strings"

	"github.com/savaki/events-bot/pkg/conversation"
	"github.com/savaki/events-bot/pkg/models"
)

// Fixed replies. WhatsApp renders *text* as bold.
const (
	ReplyCancelled     = "Okay, cancelled. Nothing was saved."
	ReplyDeleted       = "Event deleted successfully."
	ReplyDeleteDenied  = "No event with that id was found among your events."
	ReplyRetryLater    = "Something went wrong on our side. Please resend your last message in a moment."
	ReplyTryAgain      = "Something went wrong, please try again."
	ReplyNoEvents      = "You have no events yet. Send 'new event' to create one."
	ReplyDuplicateName = "You already have an event with that name. Send 'new event' to start again with a different name."
)

// Help enumerates the commands the bot understands
func Help() string {
	return "Sorry, I didn't understand that.\n\n" +
		"➕ *new event* — create an event step by step\n" +
		"📋 *my events* — list your events\n" +
		"➖ *delete <id>* — delete one of your events\n" +
		"✋ *cancel* — abandon whatever we were doing"
}

// prompts maps each required field to the question asked for it
var prompts = map[string]string{
	conversation.FieldName:        "Let's create your event! What's it called?",
	conversation.FieldDate:        "When is it? Send the date as YYYY-MM-DD.",
	conversation.FieldAddress:     "Where is it happening? Send the address.",
	conversation.FieldPoster:      "Send a poster image for your event.",
	conversation.FieldDescription: "Almost done. Send a short description.",
	conversation.FieldEventID:     "Which event? Send its id (you can find it in 'my events').",
}

// PromptFor asks for the next required field
func PromptFor(field string) string {
	if p, ok := prompts[field]; ok {
		return p
	}
	return ReplyTryAgain
}

// RepromptFor repeats the question for the current field, leading with the
// validation failure reason
func RepromptFor(field, reason string) string {
	return reason + " " + PromptFor(field)
}

// FormatCreated renders the create confirmation with the public event link
func FormatCreated(event *models.Event, frontendURL string) string {
	return fmt.Sprintf("*%s*\n🕒 %s\n📍 %s\n\n%s\n\nYour event id is %s.\nFor more information, visit: %s",
		event.Name, event.Date, event.Address, event.Description, event.EventID, eventLink(frontendURL, event.EventID))
}

// FormatEventList renders the sender's events, oldest date first
func FormatEventList(events []*models.Event, frontendURL string) string {
	if len(events) == 0 {
		return ReplyNoEvents
	}

	var b strings.Builder
	b.WriteString("Here are your events:\n")
	for _, event := range events {
		fmt.Fprintf(&b, "\n*%s*\n🕒 %s\n📍 %s\nid: %s\nlink: %s\n",
			event.Name, event.Date, event.Address, event.EventID, eventLink(frontendURL, event.EventID))
	}
	return strings.TrimSpace(b.String())
}

func eventLink(frontendURL, eventID string) string {
	return fmt.Sprintf("https://%s/event/%s", frontendURL, eventID)
}
