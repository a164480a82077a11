package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/errgroup"

	"campaign-forge/internal/report"
)

const (
	maxConcurrentUploads = 3
	maxPhotosPerCampaign = 10

	messageLimit = 4096
	captionLimit = 1024
)

type Options struct {
	Token      string
	ChatID     int64
	HTTPClient *http.Client
	Logger     *slog.Logger
	Debug      bool
}

// Notifier pushes run progress to a Telegram chat. It is an optional
// sidecar: without a token and chat id every method is a no-op, and a
// bot that fails to connect downgrades to the same.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *slog.Logger
}

func New(opts Options) *Notifier {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	token := strings.TrimSpace(opts.Token)
	if token == "" || opts.ChatID == 0 {
		logger.Info("telegram notifications disabled")
		return &Notifier{logger: logger}
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		logger.Warn("telegram bot unavailable, notifications disabled", "err", err)
		return &Notifier{logger: logger}
	}
	bot.Debug = opts.Debug

	logger.Info("telegram notifications enabled", "bot", bot.Self.UserName)
	return &Notifier{
		bot:    bot,
		chatID: opts.ChatID,
		logger: logger,
	}
}

func (n *Notifier) Enabled() bool {
	return n != nil && n.bot != nil
}

// CampaignDone announces a finished campaign and uploads a sample of
// its renders, a few at a time.
func (n *Notifier) CampaignDone(ctx context.Context, campaign string, products int, photos []string) error {
	if !n.Enabled() {
		return nil
	}

	text := fmt.Sprintf("Campaign %q finished: %d product(s), %d image(s) attached.", campaign, products, len(capPhotos(photos)))
	if err := n.sendText(text); err != nil {
		return fmt.Errorf("send campaign notification: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentUploads)
	for _, path := range capPhotos(photos) {
		path := path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return n.sendPhoto(path)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("upload campaign photos: %w", err)
	}
	return nil
}

// RunSummary sends the end-of-run digest.
func (n *Notifier) RunSummary(sum report.Summary, outcomes []report.Outcome) error {
	if !n.Enabled() {
		return nil
	}
	return n.sendText(buildRunSummary(sum, outcomes))
}

func (n *Notifier) sendText(text string) error {
	for _, part := range splitByBytes(text, messageLimit) {
		if _, err := n.bot.Send(tgbotapi.NewMessage(n.chatID, part)); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) sendPhoto(path string) error {
	photo := tgbotapi.NewPhoto(n.chatID, tgbotapi.FilePath(path))
	photo.Caption = truncateByBytes(filepath.Base(path), captionLimit)

	if _, err := n.bot.Send(photo); err != nil {
		return fmt.Errorf("photo %s: %w", filepath.Base(path), err)
	}
	n.logger.Debug("uploaded photo", "path", path)
	return nil
}

func buildRunSummary(sum report.Summary, outcomes []report.Outcome) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Campaign run finished in %s: %d campaign(s), %d done, %d failed.",
		sum.Elapsed.Round(time.Second), sum.Campaigns, sum.Done, sum.Failed)

	for _, out := range outcomes {
		sb.WriteByte('\n')
		switch out.Status {
		case report.StatusFailed:
			fmt.Fprintf(&sb, "failed %s: %s", out.Campaign, out.Err)
		default:
			fmt.Fprintf(&sb, "done %s: %d product(s) in %s", out.Campaign, out.Products, out.Duration.Round(time.Second))
		}
	}
	return sb.String()
}

func capPhotos(photos []string) []string {
	if len(photos) > maxPhotosPerCampaign {
		return photos[:maxPhotosPerCampaign]
	}
	return photos
}

func splitByBytes(text string, maxBytes int) []string {
	if len([]byte(text)) <= maxBytes || maxBytes <= 0 {
		return []string{text}
	}

	var out []string
	var buf strings.Builder
	buf.Grow(maxBytes)

	for _, r := range text {
		runeBytes := utf8.RuneLen(r)
		if runeBytes < 0 {
			runeBytes = len([]byte(string(r)))
		}

		if buf.Len() > 0 && buf.Len()+runeBytes > maxBytes {
			out = append(out, buf.String())
			buf.Reset()
		}
		buf.WriteRune(r)
	}

	if buf.Len() > 0 {
		out = append(out, buf.String())
	}

	return out
}

func truncateByBytes(text string, maxBytes int) string {
	if len([]byte(text)) <= maxBytes || maxBytes <= 0 {
		return text
	}

	var buf strings.Builder
	buf.Grow(maxBytes)
	for _, r := range text {
		runeBytes := utf8.RuneLen(r)
		if runeBytes < 0 {
			runeBytes = len([]byte(string(r)))
		}

		if buf.Len()+runeBytes > maxBytes {
			break
		}
		buf.WriteRune(r)
	}
	return buf.String()
}
