package whatsapp

import (
	"encoding/xml"
	"strings"
)

// HelpText is the synchronous reply to a recognized help command.
const HelpText = `*Fake News Analyzer Bot* 🔍

Send me a news article, claim, or image to analyze if it's real or fake.

*Commands:*
/help - Show this help message`

// AckText is the synchronous "processing" placeholder for a text claim.
const AckText = "🔍 Analyzing your content... Please wait for the results."

// AckMediaText is the placeholder when the inbound message carries media.
const AckMediaText = "📸 Processing your image... I'll analyze this for fake news content and send you the results shortly."

// IsHelpCommand reports whether an inbound body is one of the recognized
// help tokens. Help short-circuits analysis entirely.
func IsHelpCommand(body string) bool {
	switch strings.ToLower(strings.TrimSpace(body)) {
	case "help", "/help":
		return true
	}
	return false
}

// TwiML wraps a message body into the markup-reply document Twilio expects
// back from a webhook.
func TwiML(message string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?><Response><Message>`)
	_ = xml.EscapeText(&b, []byte(message))
	b.WriteString(`</Message></Response>`)
	return b.String()
}
