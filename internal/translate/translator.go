package translate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Options struct {
	Completer Completer
	CacheTTL  time.Duration
	Logger    *slog.Logger
}

// Translator renders a campaign message into a target language and
// memoizes the result so repeated products in the same campaign do not
// re-pay the completion call.
type Translator struct {
	completer Completer
	cache     *cache.Cache
	logger    *slog.Logger
}

func New(opts Options) *Translator {
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Translator{
		completer: opts.Completer,
		cache:     cache.New(ttl, ttl),
		logger:    logger,
	}
}

// Translate returns message in the given language. English and blank
// input pass through untouched. Translation failure is never fatal: the
// original message comes back and failures are not cached, so the next
// call retries.
func (t *Translator) Translate(ctx context.Context, message, language string) string {
	if strings.TrimSpace(message) == "" {
		return message
	}

	language = strings.TrimSpace(language)
	if language == "" || strings.EqualFold(language, "english") {
		return message
	}

	key := strings.ToLower(language) + "\x00" + message
	if cached, ok := t.cache.Get(key); ok {
		return cached.(string)
	}

	out, err := t.completer.Complete(ctx, buildPrompt(message, language))
	if err != nil {
		t.logger.Warn("translation failed, keeping original text", "language", language, "err", err)
		return message
	}

	out = cleanReply(out)
	if out == "" {
		t.logger.Warn("translation came back empty, keeping original text", "language", language)
		return message
	}

	t.cache.Set(key, out, cache.DefaultExpiration)
	return out
}

func buildPrompt(message, language string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Translate this marketing message to %s.\n", language)
	sb.WriteString("Keep the tone, intent and marketing impact. Return ONLY the translation, no explanations, no quotes.\n\n")
	fmt.Fprintf(&sb, "Message: %s", message)
	return sb.String()
}

// cleanReply trims whitespace and the quote characters models like to
// wrap translations in.
func cleanReply(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, `'`)
	return strings.TrimSpace(s)
}
