package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client sends outbound SMS / WhatsApp messages through the Twilio REST API.
// Kept deliberately small: one endpoint, form-encoded, basic auth.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string

	baseURL    string
	httpClient *http.Client
}

const defaultBaseURL = "https://api.twilio.com"

const whatsappPrefix = "whatsapp:"

// NewClient builds a Twilio client. Returns an error when credentials are
// missing so callers can decide whether outbound messaging is available.
func NewClient(accountSID, authToken, fromNumber string) (*Client, error) {
	if accountSID == "" || authToken == "" {
		return nil, fmt.Errorf("twilio account SID and auth token are required")
	}
	if fromNumber == "" {
		return nil, fmt.Errorf("twilio sender phone number is required")
	}

	return &Client{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// SendSMS delivers body to the given phone number.
func (c *Client) SendSMS(ctx context.Context, to, body string) error {
	return c.send(ctx, c.fromNumber, to, body)
}

// SendWhatsApp delivers body over WhatsApp; numbers get the whatsapp: prefix
// the API expects.
func (c *Client) SendWhatsApp(ctx context.Context, to, body string) error {
	return c.send(ctx, whatsappPrefix+c.fromNumber, whatsappPrefix+to, body)
}

func (c *Client) send(ctx context.Context, from, to, body string) error {
	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio send: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("twilio send: status %d: %s", res.StatusCode, strings.TrimSpace(string(detail)))
	}

	return nil
}
