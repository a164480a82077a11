package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"campaign-forge/internal/brief"
	"campaign-forge/internal/config"
	"campaign-forge/internal/generate"
	"campaign-forge/internal/httpclient"
	"campaign-forge/internal/notify"
	"campaign-forge/internal/openai"
	"campaign-forge/internal/pipeline"
	"campaign-forge/internal/prompt"
	"campaign-forge/internal/raster"
	"campaign-forge/internal/report"
	"campaign-forge/internal/translate"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg)

	httpClient := httpclient.New(httpclient.Options{
		PreferIPv4: cfg.PreferIPv4,
		Timeout:    cfg.HTTPTimeout,
	})

	api := openai.New(openai.Options{
		APIKey:            cfg.OpenAIAPIKey,
		BaseURL:           cfg.OpenAIBaseURL,
		APIVersion:        cfg.OpenAIAPIVersion,
		TextModel:         cfg.TextModel,
		ImageModel:        cfg.ImageModel,
		Temperature:       cfg.TextTemperature,
		RequestsPerMinute: cfg.RequestsPerMinute,
		RequestTimeout:    cfg.RequestTimeout,
		HTTPClient:        httpClient,
		Logger:            logger,
	})

	prompts := prompt.New(prompt.Options{
		Completer:            api,
		MaxScenePromptLength: cfg.MaxScenePromptLength,
		MaxEditPromptLength:  cfg.MaxEditPromptLength,
		Logger:               logger,
	})

	images := generate.New(generate.Options{
		API:        api,
		Subjects:   prompts,
		CanvasSize: cfg.CanvasSize,
		SaveMask:   cfg.SaveMask,
		Logger:     logger,
	})

	rasterProc := raster.New(raster.Options{
		CanvasSize:       cfg.CanvasSize,
		ScaleFactor:      cfg.ScaleFactor,
		FontPaths:        cfg.FontPaths,
		FontSize:         cfg.FontSize,
		TextOpacity:      cfg.TextOpacity,
		MarginPercentage: cfg.MarginPercentage,
		Logger:           logger,
	})

	translator := translate.New(translate.Options{
		Completer: api,
		CacheTTL:  cfg.TranslationCacheTTL,
		Logger:    logger,
	})

	loader := brief.NewLoader(brief.LoaderOptions{
		CampaignsDir:   cfg.CampaignsDir,
		BriefFilename:  cfg.BriefFilename,
		MarkerFilename: cfg.MarkerFilename,
		Logger:         logger,
	})

	notifier := notify.New(notify.Options{
		Token:      cfg.TelegramToken,
		ChatID:     cfg.TelegramChatID,
		HTTPClient: httpClient,
		Logger:     logger,
		Debug:      cfg.Debug,
	})

	proc := pipeline.New(pipeline.Options{
		Loader:         loader,
		Prompts:        prompts,
		Images:         images,
		Raster:         rasterProc,
		Translator:     translator,
		Notifier:       notifier,
		Report:         report.New(),
		ResultsDirName: cfg.ResultsDirName,
		AssetsDirName:  cfg.AssetsDirName,
		MarkerFilename: cfg.MarkerFilename,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("campaign run started", "campaigns_dir", cfg.CampaignsDir)

	runErr := proc.Run(ctx)

	sum := proc.Report().Summary()
	logger.Info("campaign run finished",
		"campaigns", sum.Campaigns, "done", sum.Done, "failed", sum.Failed, "dur_ms", sum.Elapsed.Milliseconds())

	if err := notifier.RunSummary(sum, proc.Report().Snapshot()); err != nil {
		logger.Warn("run summary notification failed", "err", err)
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			logger.Info("shutting down")
			return
		}
		logger.Error("campaign run failed", "err", runErr)
		os.Exit(1)
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
}
