package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "sk-test", cfg.OpenAIAPIKey)
	require.Equal(t, "https://api.openai.com", cfg.OpenAIBaseURL)
	require.Equal(t, "gpt-image-1", cfg.ImageModel)
	require.Equal(t, "gpt-5-nano", cfg.TextModel)
	require.Equal(t, "campaigns", cfg.CampaignsDir)
	require.Equal(t, "results", cfg.ResultsDirName)
	require.Equal(t, "assets", cfg.AssetsDirName)
	require.Equal(t, "brief.yaml", cfg.BriefFilename)
	require.Equal(t, "meta.yaml", cfg.MarkerFilename)
	require.Equal(t, 1024, cfg.CanvasSize)
	require.InDelta(t, 0.56, cfg.ScaleFactor, 1e-9)
	require.Equal(t, 48, cfg.FontSize)
	require.Equal(t, 200, cfg.TextOpacity)
	require.InDelta(t, 0.05, cfg.MarginPercentage, 1e-9)
	require.Equal(t, 800, cfg.MaxEditPromptLength)
	require.Equal(t, 80000, cfg.MaxScenePromptLength)
	require.True(t, cfg.SaveMask)
	require.Equal(t, 300*time.Second, cfg.RequestTimeout)
	require.Len(t, cfg.FontPaths, 2)
}

func TestLoadMissingAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	require.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestLoadClampsInvalidValues(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CANVAS_SIZE", "-5")
	t.Setenv("SCALE_FACTOR", "1.8")
	t.Setenv("TEXT_OPACITY", "900")
	t.Setenv("MARGIN_PERCENTAGE", "0.9")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "0")
	t.Setenv("REQUESTS_PER_MINUTE", "-1")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 1024, cfg.CanvasSize)
	require.InDelta(t, 0.56, cfg.ScaleFactor, 1e-9)
	require.Equal(t, 200, cfg.TextOpacity)
	require.InDelta(t, 0.05, cfg.MarginPercentage, 1e-9)
	require.Equal(t, 300*time.Second, cfg.RequestTimeout)
	require.Equal(t, 0, cfg.RequestsPerMinute)
}

func TestLoadFontPathsSplit(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("FONT_PATHS", " /a/one.ttf , ,/b/two.ttf ")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []string{"/a/one.ttf", "/b/two.ttf"}, cfg.FontPaths)
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CANVAS_SIZE", "huge")
	t.Setenv("TEXT_TEMPERATURE", "warm")
	t.Setenv("TELEGRAM_CHAT_ID", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 1024, cfg.CanvasSize)
	require.InDelta(t, 0.7, cfg.TextTemperature, 1e-9)
	require.Equal(t, int64(0), cfg.TelegramChatID)
}
