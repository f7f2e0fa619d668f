// Package whatsapp is the outbound WhatsApp transport (Twilio REST) plus
// the TwiML acknowledgment and message formatting for that channel.
package whatsapp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender pushes one message to a WhatsApp user and returns the provider's
// message id. Satisfied by *Client; stubbed in tests.
type Sender interface {
	Send(ctx context.Context, to, body string) (string, error)
}

type Client struct {
	AccountSID string
	AuthToken  string
	From       string // e.g. "whatsapp:+14155238886"
	httpc      *http.Client
}

func NewClient(accountSID, authToken, from string) *Client {
	return &Client{
		AccountSID: strings.TrimSpace(accountSID),
		AuthToken:  strings.TrimSpace(authToken),
		From:       strings.TrimSpace(from),
		httpc:      &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts one message through the Twilio Messages API and returns its
// SID. The recipient is a bare phone number; the whatsapp: prefix is added
// here.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if c.AccountSID == "" || c.AuthToken == "" {
		return "", fmt.Errorf("twilio credentials are empty")
	}
	form := url.Values{}
	form.Set("From", c.From)
	form.Set("To", "whatsapp:"+strings.TrimPrefix(to, "whatsapp:"))
	form.Set("Body", body)

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", c.AccountSID)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.AccountSID, c.AuthToken)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		x, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("twilio %d: %s", resp.StatusCode, string(x))
	}
	var out struct {
		SID string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.SID, nil
}
