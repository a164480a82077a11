package pipeline

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"campaign-forge/internal/brief"
	"campaign-forge/internal/notify"
	"campaign-forge/internal/raster"
	"campaign-forge/internal/report"
)

var ratioDirs = []string{"1x1", "16x9", "9x16"}

// cropRatios are derived from the outpainted square; the 1x1 render is
// the base image itself.
var cropRatios = []string{"16x9", "9x16"}

// Prompts and ImageOps are the two remote-backed capabilities the
// pipeline drives; both are narrow so tests can swap in doubles.
type Prompts interface {
	ScenePrompt(ctx context.Context, b brief.Brief, product, assetName string) string
	ConcisePrompt(ctx context.Context, scenePrompt string) string
}

type ImageOps interface {
	GenerateAsset(ctx context.Context, description, destPath string) error
	GenerateBase(ctx context.Context, assetPath, prompt, destPath string) error
	Outpaint(ctx context.Context, canvas image.Image, innerBox image.Rectangle, prompt string) (image.Image, error)
}

type Translator interface {
	Translate(ctx context.Context, message, language string) string
}

type Options struct {
	Loader     *brief.Loader
	Prompts    Prompts
	Images     ImageOps
	Raster     *raster.Processor
	Translator Translator
	Notifier   *notify.Notifier
	Report     *report.Report

	ResultsDirName string
	AssetsDirName  string
	MarkerFilename string
	Logger         *slog.Logger
}

// Processor walks every eligible campaign and produces its output tree:
// campaign -> product -> language -> ratio. Campaigns fail
// independently; products within a campaign do not.
type Processor struct {
	loader     *brief.Loader
	prompts    Prompts
	images     ImageOps
	raster     *raster.Processor
	translator Translator
	notifier   *notify.Notifier
	report     *report.Report

	resultsDir string
	assetsDir  string
	markerFile string
	logger     *slog.Logger
}

func New(opts Options) *Processor {
	resultsDir := opts.ResultsDirName
	if resultsDir == "" {
		resultsDir = "results"
	}

	assetsDir := opts.AssetsDirName
	if assetsDir == "" {
		assetsDir = "assets"
	}

	markerFile := opts.MarkerFilename
	if markerFile == "" {
		markerFile = "meta.yaml"
	}

	rep := opts.Report
	if rep == nil {
		rep = report.New()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Processor{
		loader:     opts.Loader,
		prompts:    opts.Prompts,
		images:     opts.Images,
		raster:     opts.Raster,
		translator: opts.Translator,
		notifier:   opts.Notifier,
		report:     rep,
		resultsDir: resultsDir,
		assetsDir:  assetsDir,
		markerFile: markerFile,
		logger:     logger,
	}
}

func (p *Processor) Report() *report.Report {
	return p.report
}

// Run processes every eligible campaign in order. A campaign that fails
// is logged and recorded; the run moves on to the next one. Only a
// failed campaign scan or a cancelled context stops the run.
func (p *Processor) Run(ctx context.Context) error {
	briefs, err := p.loader.LoadAll()
	if err != nil {
		return err
	}

	if len(briefs) == 0 {
		p.logger.Info("no campaign briefs found")
		return nil
	}
	p.logger.Info("campaigns loaded", "count", len(briefs))

	for i := range briefs {
		if err := ctx.Err(); err != nil {
			return err
		}

		b := briefs[i]
		start := time.Now()

		photos, err := p.processCampaign(ctx, b)
		if err != nil {
			p.logger.Error("campaign failed", "campaign", b.CampaignName, "err", err)
			p.report.Failed(b.CampaignName, err, time.Since(start))
			continue
		}
		p.report.Done(b.CampaignName, len(b.Products), time.Since(start))

		if err := p.notifier.CampaignDone(ctx, b.CampaignName, len(b.Products), photos); err != nil {
			p.logger.Warn("campaign notification failed", "campaign", b.CampaignName, "err", err)
		}
	}
	return nil
}

// processCampaign renders every product, then stamps the completion
// marker. The first product failure aborts the campaign; whatever was
// already written stays on disk and the marker is not written, so the
// next run redoes the campaign from scratch.
func (p *Processor) processCampaign(ctx context.Context, b brief.Brief) ([]string, error) {
	p.logger.Info("processing campaign", "campaign", b.CampaignName)

	resultsPath := filepath.Join(b.CampaignPath, p.resultsDir)
	if err := os.MkdirAll(resultsPath, 0o755); err != nil {
		return nil, fmt.Errorf("create results dir: %w", err)
	}

	var photos []string
	for i, product := range b.Products {
		p.logger.Info("processing product", "campaign", b.CampaignName, "product", product, "index", i+1, "total", len(b.Products))

		basePath, err := p.processProduct(ctx, b, product, b.AssetFor(i), resultsPath)
		if err != nil {
			return photos, fmt.Errorf("product %q: %w", product, err)
		}
		photos = append(photos, basePath)
	}

	p.writeMarker(b.CampaignPath)
	p.logger.Info("campaign completed", "campaign", b.CampaignName, "results", resultsPath)
	return photos, nil
}

// processProduct runs the per-product sequence: resolve the asset,
// build the scene prompt, render the 1x1 base, outpaint, derive the
// wide and tall crops, then write one localized set per language.
// Returns the base 1x1 path for notifications.
func (p *Processor) processProduct(ctx context.Context, b brief.Brief, product, assetFile, resultsPath string) (string, error) {
	productName := brief.SanitizeName(product)

	assetPath, assetName, err := p.resolveAsset(ctx, b.CampaignPath, product, productName, assetFile)
	if err != nil {
		return "", err
	}

	scenePrompt := p.prompts.ScenePrompt(ctx, b, product, assetFile)

	productDir := filepath.Join(resultsPath, productName)
	baseDir := filepath.Join(productDir, "base")
	if err := makeRatioDirs(baseDir); err != nil {
		return "", err
	}

	basePath := filepath.Join(baseDir, "1x1", assetName+"_1x1.png")
	if err := p.images.GenerateBase(ctx, assetPath, scenePrompt, basePath); err != nil {
		return "", err
	}

	baseImg, err := imaging.Open(basePath)
	if err != nil {
		return "", fmt.Errorf("open base image: %w", err)
	}

	canvas, innerBox := p.raster.PrepareCanvas(baseImg)
	concise := p.prompts.ConcisePrompt(ctx, scenePrompt)

	outpainted, err := p.images.Outpaint(ctx, canvas, innerBox, concise)
	if err != nil {
		return "", err
	}

	renders := map[string]image.Image{"1x1": baseImg}
	for _, ratio := range cropRatios {
		cropped, err := p.raster.CropRatio(outpainted, ratio)
		if err != nil {
			return "", err
		}

		cropPath := filepath.Join(baseDir, ratio, renderFilename(assetName, ratio))
		if err := imaging.Save(cropped, cropPath); err != nil {
			return "", fmt.Errorf("save %s crop: %w", ratio, err)
		}
		renders[ratio] = cropped
	}

	for _, language := range b.Languages {
		if err := p.localizeProduct(ctx, b, language, productDir, assetName, renders); err != nil {
			return "", err
		}
	}
	return basePath, nil
}

// localizeProduct writes the three renders into the language folder.
// With a campaign message present each render carries the translated
// overlay; otherwise the plain renders are copied as-is. Languages that
// collapse to the same code overwrite each other.
func (p *Processor) localizeProduct(ctx context.Context, b brief.Brief, language, productDir, assetName string, renders map[string]image.Image) error {
	code := brief.LanguageCode(language)
	langDir := filepath.Join(productDir, code)
	if err := makeRatioDirs(langDir); err != nil {
		return err
	}

	p.logger.Info("creating language versions", "language", language, "code", code)

	translated := ""
	if strings.TrimSpace(b.Message) != "" {
		translated = p.translator.Translate(ctx, b.Message, language)
	}

	for _, ratio := range ratioDirs {
		out := renders[ratio]
		if translated != "" {
			out = p.raster.Overlay(out, translated)
			p.logger.Debug("applied message overlay", "language", language, "ratio", ratio)
		}

		dest := filepath.Join(langDir, ratio, renderFilename(assetName, ratio))
		if err := imaging.Save(out, dest); err != nil {
			return fmt.Errorf("save %s %s render: %w", code, ratio, err)
		}
	}
	return nil
}

// resolveAsset prefers an existing file under the campaign's assets
// folder; missing or unnamed assets are generated there under the
// sanitized product name.
func (p *Processor) resolveAsset(ctx context.Context, campaignPath, product, productName, assetFile string) (string, string, error) {
	if assetFile != "" {
		candidate := filepath.Join(campaignPath, p.assetsDir, assetFile)
		if _, err := os.Stat(candidate); err == nil {
			p.logger.Info("using existing asset", "path", candidate)
			return candidate, stemOf(assetFile), nil
		}
	}

	p.logger.Info("no asset on disk, generating one", "product", product)

	assetsDir := filepath.Join(campaignPath, p.assetsDir)
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create assets dir: %w", err)
	}

	generated := filepath.Join(assetsDir, productName+".png")
	if err := p.images.GenerateAsset(ctx, productName, generated); err != nil {
		return "", "", err
	}
	return generated, productName, nil
}

// writeMarker records completion. A marker that cannot be written only
// costs a redundant re-run, so it is logged rather than failing the
// campaign.
func (p *Processor) writeMarker(campaignPath string) {
	markerPath := filepath.Join(campaignPath, p.markerFile)
	if err := brief.WriteMarker(markerPath, brief.CompletedMarker()); err != nil {
		p.logger.Error("could not write completion marker", "path", markerPath, "err", err)
		return
	}
	p.logger.Info("campaign marked done", "path", markerPath)
}

func makeRatioDirs(root string) error {
	for _, ratio := range ratioDirs {
		if err := os.MkdirAll(filepath.Join(root, ratio), 0o755); err != nil {
			return fmt.Errorf("create ratio dir: %w", err)
		}
	}
	return nil
}

func renderFilename(assetName, ratio string) string {
	return fmt.Sprintf("%s_%s.png", assetName, ratio)
}

func stemOf(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
