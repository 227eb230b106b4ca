package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// TelegramAPI is the slice of the Telegram client the handlers use.
// *tgbotapi.BotAPI satisfies it; tests supply fakes.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// PhotoFetcher downloads a Telegram file to a local path.
type PhotoFetcher interface {
	Download(ctx context.Context, fileID, destPath string) error
}

type telegramFetcher struct {
	bot    *tgbotapi.BotAPI
	client *http.Client
}

func NewTelegramFetcher(bot *tgbotapi.BotAPI) PhotoFetcher {
	return &telegramFetcher{
		bot:    bot,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (f *telegramFetcher) Download(ctx context.Context, fileID, destPath string) error {
	file, err := f.bot.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return fmt.Errorf("error resolving file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(f.bot.Token), nil)
	if err != nil {
		return err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("error downloading file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("error downloading file: unexpected status %s", resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return fmt.Errorf("error writing file: %w", err)
	}
	return out.Close()
}
