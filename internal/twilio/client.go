package twilio

import (
	"context"
	"fmt"
	"log"
	"strings"

	twilio "github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"github.com/twilio/twilio-go/twiml"
)

// Client wraps the Twilio messaging and voice operations required by the bot.
type Client struct {
	client       *twilio.RestClient
	fromWhatsApp string
	fromVoice    string
	logger       *log.Logger
}

// New creates a Twilio client bound to the configured WhatsApp and voice sender numbers.
func New(accountSID, authToken, fromWhatsApp, fromVoice string, logger *log.Logger) *Client {
	return &Client{
		client:       twilio.NewRestClientWithParams(twilio.ClientParams{Username: accountSID, Password: authToken}),
		fromWhatsApp: fromWhatsApp,
		fromVoice:    fromVoice,
		logger:       logger,
	}
}

// SendText sends a WhatsApp message via Twilio's API.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	if c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sender := NormalizeWhatsAppAddress(c.fromWhatsApp)
	if sender == "" {
		return fmt.Errorf("twilio sender WhatsApp number is not configured")
	}
	recipient := NormalizeWhatsAppAddress(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(recipient)
	params.SetFrom(sender)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("twilio send message error: %w", err)
	}
	c.logger.Printf("twilio: message to %s sent, SID %s", recipient, deref(resp.Sid))
	return nil
}

// PlaceCall dials to and reads script aloud.
func (c *Client) PlaceCall(ctx context.Context, to, script string) error {
	if c.client == nil {
		return fmt.Errorf("twilio client not initialised")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.VoiceEnabled() {
		return fmt.Errorf("twilio caller number is not configured")
	}

	recipient := PhoneNumber(to)
	if recipient == "" {
		return fmt.Errorf("recipient number missing or invalid")
	}

	doc, err := SayTwiML(script)
	if err != nil {
		return fmt.Errorf("twilio build twiml: %w", err)
	}

	params := &openapi.CreateCallParams{}
	params.SetTo(recipient)
	params.SetFrom(c.fromVoice)
	params.SetTwiml(doc)

	resp, err := c.client.Api.CreateCall(params)
	if err != nil {
		return fmt.Errorf("twilio create call error: %w", err)
	}
	c.logger.Printf("twilio: call to %s placed, SID %s", recipient, deref(resp.Sid))
	return nil
}

// SayTwiML renders a voice TwiML document that speaks script.
func SayTwiML(script string) (string, error) {
	return twiml.Voice([]twiml.Element{
		twiml.VoiceSay{Voice: "alice", Message: script},
	})
}

// MessageTwiML renders a messaging TwiML document replying with body.
func MessageTwiML(body string) (string, error) {
	return twiml.Messages([]twiml.Element{
		twiml.MessagingMessage{Body: body},
	})
}

// VoiceEnabled reports whether a caller number is configured for PlaceCall.
func (c *Client) VoiceEnabled() bool {
	return strings.TrimSpace(c.fromVoice) != ""
}

// NormalizeWhatsAppAddress returns number in Twilio's whatsapp:+E164 form.
func NormalizeWhatsAppAddress(number string) string {
	trimmed := strings.TrimSpace(number)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "whatsapp:") {
		return trimmed
	}
	if strings.HasPrefix(trimmed, "+") {
		return "whatsapp:" + trimmed
	}
	return "whatsapp:+" + trimmed
}

// PhoneNumber strips the channel prefix from a WhatsApp address.
func PhoneNumber(address string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(address), "whatsapp:"))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
