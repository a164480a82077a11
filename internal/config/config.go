package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenAIAPIVersion string

	ImageModel      string
	TextModel       string
	TextTemperature float64

	LogLevel string
	Debug    bool

	PreferIPv4 bool

	CampaignsDir   string
	ResultsDirName string
	AssetsDirName  string
	BriefFilename  string
	MarkerFilename string

	CanvasSize  int
	ScaleFactor float64

	FontPaths        []string
	FontSize         int
	TextOpacity      int
	MarginPercentage float64

	MaxEditPromptLength  int
	MaxScenePromptLength int

	SaveMask bool

	RequestsPerMinute int
	RequestTimeout    time.Duration
	HTTPTimeout       time.Duration

	TelegramToken  string
	TelegramChatID int64

	TranslationCacheTTL time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		OpenAIBaseURL:    strings.TrimSpace(getEnv("OPENAI_BASE_URL", "https://api.openai.com")),
		OpenAIAPIVersion: strings.TrimSpace(getEnv("OPENAI_API_VERSION", "v1")),

		ImageModel:      strings.TrimSpace(getEnv("IMAGE_MODEL", "gpt-image-1")),
		TextModel:       strings.TrimSpace(getEnv("TEXT_MODEL", "gpt-5-nano")),
		TextTemperature: getEnvFloat("TEXT_TEMPERATURE", 0.7),

		LogLevel: strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info"))),
		Debug:    getEnvBool("DEBUG", false),

		PreferIPv4: getEnvBool("PREFER_IPV4", true),

		CampaignsDir:   strings.TrimSpace(getEnv("CAMPAIGNS_DIR", "campaigns")),
		ResultsDirName: strings.TrimSpace(getEnv("RESULTS_DIR_NAME", "results")),
		AssetsDirName:  strings.TrimSpace(getEnv("ASSETS_DIR_NAME", "assets")),
		BriefFilename:  strings.TrimSpace(getEnv("BRIEF_FILENAME", "brief.yaml")),
		MarkerFilename: strings.TrimSpace(getEnv("MARKER_FILENAME", "meta.yaml")),

		CanvasSize:  getEnvInt("CANVAS_SIZE", 1024),
		ScaleFactor: getEnvFloat("SCALE_FACTOR", 0.56),

		FontPaths:        splitPaths(getEnv("FONT_PATHS", "/System/Library/Fonts/Helvetica.ttc,/System/Library/Fonts/Arial.ttf")),
		FontSize:         getEnvInt("FONT_SIZE", 48),
		TextOpacity:      getEnvInt("TEXT_OPACITY", 200),
		MarginPercentage: getEnvFloat("MARGIN_PERCENTAGE", 0.05),

		MaxEditPromptLength:  getEnvInt("MAX_EDIT_PROMPT_LENGTH", 800),
		MaxScenePromptLength: getEnvInt("MAX_SCENE_PROMPT_LENGTH", 80000),

		SaveMask: getEnvBool("SAVE_MASK", true),

		RequestsPerMinute: getEnvInt("REQUESTS_PER_MINUTE", 20),
		RequestTimeout:    time.Duration(getEnvInt("REQUEST_TIMEOUT_SECONDS", 300)) * time.Second,
		HTTPTimeout:       time.Duration(getEnvInt("HTTP_TIMEOUT_SECONDS", 180)) * time.Second,

		TranslationCacheTTL: time.Duration(getEnvInt("TRANSLATION_CACHE_TTL_MINUTES", 720)) * time.Minute,
	}

	cfg.OpenAIAPIKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	cfg.TelegramToken = strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN"))
	cfg.TelegramChatID = getEnvInt64("TELEGRAM_CHAT_ID", 0)

	if cfg.OpenAIAPIKey == "" {
		return Config{}, errors.New("OPENAI_API_KEY is required")
	}

	if cfg.CanvasSize < 1 {
		cfg.CanvasSize = 1024
	}
	if cfg.ScaleFactor <= 0 || cfg.ScaleFactor > 1 {
		cfg.ScaleFactor = 0.56
	}
	if cfg.FontSize < 1 {
		cfg.FontSize = 48
	}
	if cfg.TextOpacity < 0 || cfg.TextOpacity > 255 {
		cfg.TextOpacity = 200
	}
	if cfg.MarginPercentage < 0 || cfg.MarginPercentage >= 0.5 {
		cfg.MarginPercentage = 0.05
	}
	if cfg.MaxEditPromptLength < 1 {
		cfg.MaxEditPromptLength = 800
	}
	if cfg.MaxScenePromptLength < 1 {
		cfg.MaxScenePromptLength = 80000
	}
	if cfg.RequestsPerMinute < 0 {
		cfg.RequestsPerMinute = 0
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 300 * time.Second
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = 180 * time.Second
	}
	if cfg.TranslationCacheTTL <= 0 {
		cfg.TranslationCacheTTL = 720 * time.Minute
	}

	return cfg, nil
}

func splitPaths(value string) []string {
	var out []string
	for _, p := range strings.Split(value, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
