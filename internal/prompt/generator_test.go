package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"campaign-forge/internal/brief"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func TestScenePromptIncludesBriefFields(t *testing.T) {
	var seen string
	gen := New(Options{
		Completer: completerFunc(func(_ context.Context, prompt string) (string, error) {
			seen = prompt
			return "  A misty alpine tea ceremony at dawn.  ", nil
		}),
	})

	b := brief.Brief{
		Region:  "Nordics",
		Market:  "premium tea",
		Message: "calm mornings",
	}

	out := gen.ScenePrompt(context.Background(), b, "Ceramic Teapot", "teapot.png")
	require.Equal(t, "A misty alpine tea ceremony at dawn.", out)

	require.Contains(t, seen, "Region: Nordics")
	require.Contains(t, seen, "Market: premium tea")
	require.Contains(t, seen, "Audience: Not specified")
	require.Contains(t, seen, "Message: calm mornings")
	require.Contains(t, seen, "Product: Ceramic Teapot")
	require.Contains(t, seen, "Asset: teapot.png")
	require.Contains(t, seen, "not more than 80000 characters")
	require.Contains(t, seen, "exactly as-is")
}

func TestScenePromptFallbackOnError(t *testing.T) {
	gen := New(Options{
		Completer: completerFunc(func(context.Context, string) (string, error) {
			return "", errors.New("rate limited")
		}),
	})

	out := gen.ScenePrompt(context.Background(), brief.Brief{}, "Teapot", "")
	require.Equal(t, fallbackScenePrompt, out)
}

func TestScenePromptFallbackOnBlankReply(t *testing.T) {
	gen := New(Options{
		Completer: completerFunc(func(context.Context, string) (string, error) {
			return "  \n\t ", nil
		}),
	})

	out := gen.ScenePrompt(context.Background(), brief.Brief{}, "Teapot", "")
	require.Equal(t, fallbackScenePrompt, out)
}

func TestConcisePromptUsesReply(t *testing.T) {
	var seen string
	gen := New(Options{
		Completer: completerFunc(func(_ context.Context, prompt string) (string, error) {
			seen = prompt
			return " teapot on marble, soft window light ", nil
		}),
	})

	out := gen.ConcisePrompt(context.Background(), "a very long scene description")
	require.Equal(t, "teapot on marble, soft window light", out)
	require.Contains(t, seen, "a very long scene description")
	require.Contains(t, seen, "(max 800 characters)")
	require.Contains(t, seen, "Keep it under 800 characters")
}

func TestConcisePromptTruncatesOnError(t *testing.T) {
	scene := strings.Repeat("x", 900)
	gen := New(Options{
		Completer: completerFunc(func(context.Context, string) (string, error) {
			return "", errors.New("boom")
		}),
	})

	out := gen.ConcisePrompt(context.Background(), scene)
	require.Len(t, out, 803)
	require.Equal(t, strings.Repeat("x", 800)+"...", out)
}

func TestConcisePromptTruncatesOnBlankReply(t *testing.T) {
	gen := New(Options{
		Completer: completerFunc(func(context.Context, string) (string, error) {
			return "", nil
		}),
		MaxEditPromptLength: 10,
	})

	out := gen.ConcisePrompt(context.Background(), "short scene")
	require.Equal(t, "short scen...", out)
}

func TestSubject(t *testing.T) {
	var seen string
	gen := New(Options{
		Completer: completerFunc(func(_ context.Context, prompt string) (string, error) {
			seen = prompt
			return " a porcelain tea service ", nil
		}),
	})

	out, err := gen.Subject(context.Background(), "ceramic_teapot")
	require.NoError(t, err)
	require.Equal(t, "a porcelain tea service", out)
	require.Contains(t, seen, `"ceramic_teapot"`)
}

func TestSubjectError(t *testing.T) {
	gen := New(Options{
		Completer: completerFunc(func(context.Context, string) (string, error) {
			return "", errors.New("over quota")
		}),
	})

	_, err := gen.Subject(context.Background(), "teapot")
	require.ErrorContains(t, err, "over quota")
}

func TestSubjectEmptyReply(t *testing.T) {
	gen := New(Options{
		Completer: completerFunc(func(context.Context, string) (string, error) {
			return "   ", nil
		}),
	})

	_, err := gen.Subject(context.Background(), "teapot")
	require.ErrorContains(t, err, "empty reply")
}

func TestTruncateWithEllipsis(t *testing.T) {
	tests := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"under budget", "short", 10, "short"},
		{"exactly at budget", "12345", 5, "12345"},
		{"over budget", "1234567890", 5, "12345..."},
		{"multibyte runes", "héllö wörld", 5, "héllö..."},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, TruncateWithEllipsis(tt.text, tt.max))
		})
	}
}
