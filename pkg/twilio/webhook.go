// Package twilio handles the WhatsApp messaging boundary: webhook parsing,
// request signature validation, TwiML replies, and media downloads.
package twilio

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/savaki/events-bot/pkg/models"
)

// ParseWebhook extracts the inbound message from a Twilio webhook body
// (application/x-www-form-urlencoded). The sender phone arrives as
// "whatsapp:+1234567890" in the From parameter.
func ParseWebhook(body string, receivedAt time.Time) (models.InboundMessage, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return models.InboundMessage{}, fmt.Errorf("parse webhook body: %w", err)
	}

	sender := values.Get("From")
	if sender == "" {
		return models.InboundMessage{}, fmt.Errorf("webhook body has no From parameter")
	}

	return models.InboundMessage{
		Sender:     sender,
		Text:       values.Get("Body"),
		MediaURL:   values.Get("MediaUrl0"),
		ReceivedAt: receivedAt,
	}, nil
}

// ValidateRequest validates the X-Twilio-Signature header. Twilio signs the
// full request URL concatenated with the form parameters sorted by name,
// HMAC-SHA1 keyed with the auth token, base64 encoded.
// See: https://www.twilio.com/docs/usage/security#validating-requests
func ValidateRequest(authToken, requestURL, body, signature string) bool {
	values, err := url.ParseQuery(body)
	if err != nil {
		return false
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	base := requestURL
	for _, k := range keys {
		base += k + values.Get(k)
	}

	mac := hmac.New(sha1.New, []byte(authToken))
	mac.Write([]byte(base))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature))
}
