package channel

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

const twilioAPIBase = "https://api.twilio.com"

// WhatsAppSender delivers messages through the Twilio WhatsApp API.
type WhatsAppSender struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	client     *http.Client
}

func NewWhatsAppSender(accountSID, authToken, fromNumber string) *WhatsAppSender {
	return &WhatsAppSender{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    twilioAPIBase,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *WhatsAppSender) Platform() string {
	return domain.PlatformWhatsApp
}

func (s *WhatsAppSender) SendText(ctx context.Context, address, text string) error {
	form := url.Values{}
	form.Set("From", "whatsapp:"+s.fromNumber)
	form.Set("To", "whatsapp:"+address)
	form.Set("Body", text)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.accountSID, s.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("twilio message create failed: %s", resp.Status)
	}

	return nil
}
