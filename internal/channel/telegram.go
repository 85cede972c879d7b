package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/yudhapr/bpjs-reminder-engine/internal/domain"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSender delivers messages through the Telegram Bot API.
type TelegramSender struct {
	botToken string
	baseURL  string
	client   *http.Client
}

func NewTelegramSender(botToken string) *TelegramSender {
	return &TelegramSender{
		botToken: botToken,
		baseURL:  telegramAPIBase,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *TelegramSender) Platform() string {
	return domain.PlatformTelegram
}

func (s *TelegramSender) SendText(ctx context.Context, address, text string) error {
	body := map[string]any{
		"chat_id": address,
		"text":    text,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram sendMessage failed: %s", resp.Status)
	}

	var out struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if !out.OK {
		return fmt.Errorf("telegram sendMessage rejected: %s", out.Description)
	}

	return nil
}
