package notifier

import (
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const telegramAPIBase = "https://api.telegram.org"

type TelegramNotifier struct {
	Token   string
	ChatID  string
	BaseURL string
	Client  *http.Client
}

func NewTelegramNotifier(token, chatID string) *TelegramNotifier {
	return &TelegramNotifier{
		Token:   token,
		ChatID:  chatID,
		BaseURL: telegramAPIBase,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (t *TelegramNotifier) Send(message string) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.Token)
	resp, err := t.Client.PostForm(apiURL, url.Values{
		"chat_id": {t.ChatID},
		"text":    {message},
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send failed: %s", resp.Status)
	}
	return nil
}
