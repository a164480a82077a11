package generate

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"

	"campaign-forge/internal/openai"
	"campaign-forge/internal/raster"
)

// editPromptCeiling is the edit endpoint's hard character limit.
const editPromptCeiling = 1000

const assetPromptSuffix = ", transparent background, PNG format with alpha channel, isolated object only, no background, no shadows, no reflections, clean transparent cutout, professional product photography, high detail, studio lighting"

// ImageAPI is the remote image capability, narrow enough to swap for a
// test double.
type ImageAPI interface {
	GenerateImage(ctx context.Context, in openai.GenerateImageInput) ([]byte, error)
	EditImage(ctx context.Context, in openai.EditImageInput) ([]byte, error)
}

// Subjecter turns a free-text product description into the short object
// description an isolated cutout is generated from.
type Subjecter interface {
	Subject(ctx context.Context, description string) (string, error)
}

type Options struct {
	API        ImageAPI
	Subjects   Subjecter
	CanvasSize int
	SaveMask   bool
	Logger     *slog.Logger
}

// Generator wraps the remote image endpoints with the local byte and
// file handling each campaign operation needs. No call is retried;
// errors go straight back to the caller.
type Generator struct {
	api      ImageAPI
	subjects Subjecter
	size     int
	saveMask bool
	logger   *slog.Logger
}

func New(opts Options) *Generator {
	size := opts.CanvasSize
	if size < 1 {
		size = 1024
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Generator{
		api:      opts.API,
		subjects: opts.Subjects,
		size:     size,
		saveMask: opts.SaveMask,
		logger:   logger,
	}
}

// GenerateAsset synthesizes a transparent product cutout for a product
// that has no asset on disk: one completion call to distill the subject,
// one generation call, result written as a PNG at destPath.
func (g *Generator) GenerateAsset(ctx context.Context, description, destPath string) error {
	subject, err := g.subjects.Subject(ctx, description)
	if err != nil {
		return err
	}

	assetPrompt := subject + assetPromptSuffix
	g.logger.Info("generating asset", "subject", subject, "path", destPath)

	raw, err := g.api.GenerateImage(ctx, openai.GenerateImageInput{
		Prompt:     assetPrompt,
		Size:       g.sizeString(),
		Background: openai.BackgroundTransparent,
	})
	if err != nil {
		return fmt.Errorf("generate asset: %w", err)
	}

	return writePNG(destPath, raw)
}

// GenerateBase composites the asset into a fresh scene: the edit
// endpoint gets the untouched asset file plus a lock mask built from
// its alpha channel, so the silhouette survives pixel-for-pixel while
// everything around it is painted in.
func (g *Generator) GenerateBase(ctx context.Context, assetPath, prompt, destPath string) error {
	g.logger.Info("generating base image", "asset", assetPath, "path", destPath)

	assetBytes, err := os.ReadFile(assetPath)
	if err != nil {
		return fmt.Errorf("read asset: %w", err)
	}

	assetImg, err := imaging.Decode(bytes.NewReader(assetBytes))
	if err != nil {
		return fmt.Errorf("decode asset: %w", err)
	}

	mask := raster.LockMask(assetImg)
	maskBytes, err := encodePNG(mask)
	if err != nil {
		return fmt.Errorf("encode lock mask: %w", err)
	}

	if g.saveMask {
		maskPath := maskSiblingPath(assetPath)
		if err := os.WriteFile(maskPath, maskBytes, 0o644); err != nil {
			g.logger.Warn("could not save lock mask", "path", maskPath, "err", err)
		} else {
			g.logger.Debug("saved lock mask", "path", maskPath)
		}
	}

	raw, err := g.api.EditImage(ctx, openai.EditImageInput{
		Prompt: prompt,
		Image:  assetBytes,
		Mask:   maskBytes,
		Size:   g.sizeString(),
	})
	if err != nil {
		return fmt.Errorf("generate base image: %w", err)
	}

	return writePNG(destPath, raw)
}

// Outpaint extends a padded canvas outward while preserving the inner
// box. Canvas and mask round-trip through a scratch directory that is
// removed on every exit path, including failed calls.
func (g *Generator) Outpaint(ctx context.Context, canvas image.Image, innerBox image.Rectangle, prompt string) (image.Image, error) {
	bounds := canvas.Bounds()
	mask := raster.PreserveMask(bounds.Dx(), bounds.Dy(), innerBox)

	scratch, err := os.MkdirTemp("", "outpaint-")
	if err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(scratch)

	canvasPath := filepath.Join(scratch, "canvas.png")
	maskPath := filepath.Join(scratch, "mask.png")
	if err := imaging.Save(canvas, canvasPath); err != nil {
		return nil, fmt.Errorf("save canvas: %w", err)
	}
	if err := imaging.Save(mask, maskPath); err != nil {
		return nil, fmt.Errorf("save outpaint mask: %w", err)
	}

	canvasBytes, err := os.ReadFile(canvasPath)
	if err != nil {
		return nil, fmt.Errorf("read canvas: %w", err)
	}
	maskBytes, err := os.ReadFile(maskPath)
	if err != nil {
		return nil, fmt.Errorf("read outpaint mask: %w", err)
	}

	g.logger.Debug("outpainting", "size", g.sizeString(), "inner_box", innerBox.String())

	raw, err := g.api.EditImage(ctx, openai.EditImageInput{
		Prompt: truncateRunes(prompt, editPromptCeiling),
		Image:  canvasBytes,
		Mask:   maskBytes,
		Size:   g.sizeString(),
	})
	if err != nil {
		return nil, fmt.Errorf("outpaint: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode outpainted image: %w", err)
	}
	return img, nil
}

func (g *Generator) sizeString() string {
	return fmt.Sprintf("%dx%d", g.size, g.size)
}

func maskSiblingPath(assetPath string) string {
	ext := filepath.Ext(assetPath)
	stem := strings.TrimSuffix(filepath.Base(assetPath), ext)
	return filepath.Join(filepath.Dir(assetPath), stem+"_mask.png")
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writePNG(path string, raw []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	return nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
