package verifier

import (
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// NewTelegramAPI builds the bot API client used for membership lookups. The
// HTTP client timeout doubles as the per-lookup timeout: a lookup that
// exceeds it fails like any other transport error and classifies the
// channel as missing.
func NewTelegramAPI(token string, timeout time.Duration) (*tgbotapi.BotAPI, error) {
	client := &http.Client{Timeout: timeout}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram api client: %w", err)
	}

	return api, nil
}
