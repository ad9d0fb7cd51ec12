package twilio

import "encoding/xml"

// messagingResponse is the TwiML document Twilio expects back from a
// messaging webhook: one <Message> per inbound message.
type messagingResponse struct {
	XMLName xml.Name `xml:"Response"`
	Message string   `xml:"Message"`
}

// MessagingResponse renders a single-reply TwiML payload
func MessagingResponse(text string) string {
	body, _ := xml.Marshal(messagingResponse{Message: text})
	return xml.Header + string(body)
}
