package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func countingCompleter(calls *int, reply string, err error) completerFunc {
	return func(context.Context, string) (string, error) {
		*calls++
		return reply, err
	}
}

func TestTranslateEnglishPassthrough(t *testing.T) {
	var calls int
	tr := New(Options{Completer: countingCompleter(&calls, "should not be used", nil)})

	for _, lang := range []string{"English", "english", " ENGLISH ", ""} {
		require.Equal(t, "Fresh every morning", tr.Translate(context.Background(), "Fresh every morning", lang))
	}
	require.Zero(t, calls)
}

func TestTranslateBlankMessagePassthrough(t *testing.T) {
	var calls int
	tr := New(Options{Completer: countingCompleter(&calls, "nope", nil)})

	require.Equal(t, "", tr.Translate(context.Background(), "", "German"))
	require.Equal(t, "  ", tr.Translate(context.Background(), "  ", "German"))
	require.Zero(t, calls)
}

func TestTranslateStripsWrappingQuotes(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"double quotes", `"Frisch jeden Morgen"`, "Frisch jeden Morgen"},
		{"single quotes", `'Frisch jeden Morgen'`, "Frisch jeden Morgen"},
		{"whitespace and quotes", "  \"Frisch jeden Morgen\"\n", "Frisch jeden Morgen"},
		{"inner quotes survive", `Das "Beste" Brot`, `Das "Beste" Brot`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New(Options{
				Completer: completerFunc(func(context.Context, string) (string, error) {
					return tt.reply, nil
				}),
			})
			require.Equal(t, tt.want, tr.Translate(context.Background(), "Fresh every morning", "German"))
		})
	}
}

func TestTranslatePromptNamesLanguage(t *testing.T) {
	var seen string
	tr := New(Options{
		Completer: completerFunc(func(_ context.Context, prompt string) (string, error) {
			seen = prompt
			return "Frais chaque matin", nil
		}),
	})

	tr.Translate(context.Background(), "Fresh every morning", "French")
	require.Contains(t, seen, "to French")
	require.Contains(t, seen, "Message: Fresh every morning")
}

func TestTranslateCachesPerLanguage(t *testing.T) {
	var calls int
	tr := New(Options{Completer: countingCompleter(&calls, "Frisch", nil), CacheTTL: time.Minute})

	require.Equal(t, "Frisch", tr.Translate(context.Background(), "Fresh", "German"))
	require.Equal(t, "Frisch", tr.Translate(context.Background(), "Fresh", "german"))
	require.Equal(t, 1, calls)

	tr.Translate(context.Background(), "Fresh", "French")
	require.Equal(t, 2, calls)

	tr.Translate(context.Background(), "Crisp", "German")
	require.Equal(t, 3, calls)
}

func TestTranslateFallsBackOnError(t *testing.T) {
	var calls int
	tr := New(Options{Completer: countingCompleter(&calls, "", errors.New("quota"))})

	require.Equal(t, "Fresh", tr.Translate(context.Background(), "Fresh", "German"))

	// Failures must not poison the cache.
	tr.Translate(context.Background(), "Fresh", "German")
	require.Equal(t, 2, calls)
}

func TestTranslateFallsBackOnBlankReply(t *testing.T) {
	tr := New(Options{
		Completer: completerFunc(func(context.Context, string) (string, error) {
			return `""`, nil
		}),
	})

	require.Equal(t, "Fresh", tr.Translate(context.Background(), "Fresh", "German"))
}
