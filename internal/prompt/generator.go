package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"campaign-forge/internal/brief"
)

// Completer is the one remote capability this package needs: a single
// free-text prompt in, free text out.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const fallbackScenePrompt = "A professional product photography scene, clean studio lighting, high quality, commercial photography style"

var sceneRequirements = []string{
	"Focus on the main product as hero element",
	"Reflect target audience lifestyle",
	"Include brand message and values",
	"Consider regional/market context",
	"Use professional photography terms",
	"Optimize for AI image generation",
	"No text or typography",
	"Commercial quality scene",
}

var conciseRequirements = []string{
	"Keep only essential visual elements",
	"Focus on composition, lighting, and key objects",
	"Remove technical photography details",
	"Remove post-production notes",
	"Make it optimized for AI image generation",
}

type Options struct {
	Completer            Completer
	MaxScenePromptLength int
	MaxEditPromptLength  int
	Logger               *slog.Logger
}

type Generator struct {
	completer   Completer
	maxSceneLen int
	maxEditLen  int
	logger      *slog.Logger
}

func New(opts Options) *Generator {
	maxSceneLen := opts.MaxScenePromptLength
	if maxSceneLen < 1 {
		maxSceneLen = 80000
	}

	maxEditLen := opts.MaxEditPromptLength
	if maxEditLen < 1 {
		maxEditLen = 800
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Generator{
		completer:   opts.Completer,
		maxSceneLen: maxSceneLen,
		maxEditLen:  maxEditLen,
		logger:      logger,
	}
}

// ScenePrompt asks the text model for a rich product photography scene
// built from the brief. It never fails: a remote error or blank reply
// falls back to a generic studio scene.
func (g *Generator) ScenePrompt(ctx context.Context, b brief.Brief, product, assetName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a professional product photography scene prompt for this campaign, not more than %d characters.\n\n", g.maxSceneLen)

	sb.WriteString("Campaign brief:\n")
	writeField(&sb, "Region", b.Region)
	writeField(&sb, "Market", b.Market)
	writeField(&sb, "Audience", b.Audience)
	writeField(&sb, "Message", b.Message)
	writeField(&sb, "Product", product)
	writeField(&sb, "Asset", assetName)

	sb.WriteString("\nRequirements:\n")
	for _, req := range sceneRequirements {
		sb.WriteString("- ")
		sb.WriteString(req)
		sb.WriteByte('\n')
	}

	sb.WriteString("\nReturn a detailed scene description with lighting, composition, setting, mood, and visual style. Return ONLY the prompt, no additional text.\n")
	sb.WriteString("Use the provided asset exactly as-is, unchanged, pixel-perfect. Do not move, open, modify, or alter the product in any way.\n")
	sb.WriteString("Only extend or generate the background scene around it. No text, no logos, no subtitles, no labels.")

	out, err := g.completer.Complete(ctx, sb.String())
	if err != nil {
		g.logger.Warn("scene prompt generation failed, using fallback", "product", product, "err", err)
		return fallbackScenePrompt
	}

	out = strings.TrimSpace(out)
	if out == "" {
		g.logger.Warn("scene prompt came back empty, using fallback", "product", product)
		return fallbackScenePrompt
	}
	return out
}

// ConcisePrompt compresses a scene prompt under the edit endpoint's
// character budget. On failure the original text is truncated instead.
// The model's reply is not validated against the budget; callers that
// need a hard bound truncate again.
func (g *Generator) ConcisePrompt(ctx context.Context, scenePrompt string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Convert this detailed scene description into a concise image generation prompt (max %d characters):\n\n", g.maxEditLen)
	sb.WriteString(scenePrompt)

	sb.WriteString("\n\nRequirements:\n")
	for _, req := range conciseRequirements {
		sb.WriteString("- ")
		sb.WriteString(req)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "- Keep it under %d characters\n", g.maxEditLen)

	sb.WriteString("\nReturn ONLY the concise prompt, no additional text.")

	out, err := g.completer.Complete(ctx, sb.String())
	if err != nil {
		g.logger.Warn("concise prompt generation failed, truncating scene prompt", "err", err)
		return TruncateWithEllipsis(scenePrompt, g.maxEditLen)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return TruncateWithEllipsis(scenePrompt, g.maxEditLen)
	}
	return out
}

// Subject extracts the main object from a product description so an
// isolated cutout can be generated for it. Unlike the prompt helpers
// this propagates failure: without a subject there is nothing to draw.
func (g *Generator) Subject(ctx context.Context, description string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Analyze this scene description and extract the main object/asset that should be the focal point:\n\n")
	fmt.Fprintf(&sb, "%q\n\n", description)
	sb.WriteString("Return ONLY a concise description of the main object/asset that should be isolated and used as a product shot. ")
	sb.WriteString("Focus on the primary subject, not the background or environment. ")
	sb.WriteString(`Examples: "a porcelain tea service", "a luxury watch", "a modern chair", "a vintage camera".`)

	out, err := g.completer.Complete(ctx, sb.String())
	if err != nil {
		return "", fmt.Errorf("extract subject: %w", err)
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return "", errors.New("extract subject: empty reply")
	}

	g.logger.Debug("extracted subject", "subject", out)
	return out, nil
}

// TruncateWithEllipsis cuts text to at most max characters, appending
// "..." only when something was actually cut.
func TruncateWithEllipsis(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}

func writeField(sb *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		value = "Not specified"
	}
	fmt.Fprintf(sb, "  - %s: %s\n", label, value)
}
