package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

type Options struct {
	APIKey            string
	BaseURL           string
	APIVersion        string
	TextModel         string
	ImageModel        string
	Temperature       float64
	RequestsPerMinute int
	RequestTimeout    time.Duration
	HTTPClient        *http.Client
	Logger            *slog.Logger
}

type Client struct {
	apiKey      string
	baseURL     string
	apiVersion  string
	textModel   string
	imageModel  string
	temperature float64
	limiter     *rate.Limiter
	reqTimeout  time.Duration
	httpClient  *http.Client
	logger      *slog.Logger
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	apiVersion := strings.TrimSpace(opts.APIVersion)
	if apiVersion == "" {
		apiVersion = "v1"
	}

	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = "gpt-5-nano"
	}

	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = "gpt-image-1"
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &Client{
		apiKey:      opts.APIKey,
		baseURL:     baseURL,
		apiVersion:  apiVersion,
		textModel:   textModel,
		imageModel:  imageModel,
		temperature: opts.Temperature,
		limiter:     limiter,
		reqTimeout:  opts.RequestTimeout,
		httpClient:  opts.HTTPClient,
		logger:      logger,
	}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt is empty")
	}

	req := chatCompletionRequest{
		Model:       c.textModel,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	}

	var resp chatCompletionResponse
	if err := c.post(ctx, "chat/completions", req, &resp); err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (c *Client) GenerateImage(ctx context.Context, in GenerateImageInput) ([]byte, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, errors.New("prompt is empty")
	}

	req := imageGenerationRequest{
		Model:      c.imageModel,
		Prompt:     in.Prompt,
		N:          1,
		Size:       in.Size,
		Background: in.Background,
	}

	var resp imageResponse
	if err := c.post(ctx, "images/generations", req, &resp); err != nil {
		return nil, err
	}
	return decodeImageData(resp)
}

func (c *Client) EditImage(ctx context.Context, in EditImageInput) ([]byte, error) {
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, errors.New("prompt is empty")
	}
	if len(in.Image) == 0 {
		return nil, errors.New("image is empty")
	}

	req := imageEditRequest{
		Model:  c.imageModel,
		Prompt: in.Prompt,
		Image:  base64.StdEncoding.EncodeToString(in.Image),
		Size:   in.Size,
	}
	if len(in.Mask) > 0 {
		req.Mask = base64.StdEncoding.EncodeToString(in.Mask)
	}

	var resp imageResponse
	if err := c.post(ctx, "images/edits", req, &resp); err != nil {
		return nil, err
	}
	return decodeImageData(resp)
}

func (c *Client) post(ctx context.Context, endpoint string, payload any, out any) error {
	if c.httpClient == nil {
		return errors.New("http client is nil")
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if c.reqTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.reqTimeout)
		defer cancel()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.apiVersion, endpoint)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("content-type", "application/json")
	httpReq.Header.Set("authorization", "Bearer "+c.apiKey)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer httpResp.Body.Close()

	rawBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("openai call", "endpoint", endpoint, "status", httpResp.StatusCode, "dur_ms", time.Since(start).Milliseconds())

	if httpResp.StatusCode >= 400 {
		return fmt.Errorf("openai API %s: %s", httpResp.Status, strings.TrimSpace(string(rawBody)))
	}

	if err := json.Unmarshal(rawBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeImageData(resp imageResponse) ([]byte, error) {
	if len(resp.Data) == 0 || strings.TrimSpace(resp.Data[0].B64JSON) == "" {
		return nil, errors.New("image response contains no data")
	}

	raw, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("decode image data: %w", err)
	}
	return raw, nil
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []chatChoice `json:"choices"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type imageGenerationRequest struct {
	Model      string `json:"model"`
	Prompt     string `json:"prompt"`
	N          int    `json:"n,omitempty"`
	Size       string `json:"size,omitempty"`
	Background string `json:"background,omitempty"`
}

type imageEditRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Image  string `json:"image"`
	Mask   string `json:"mask,omitempty"`
	Size   string `json:"size,omitempty"`
}

type imageResponse struct {
	Data []imageDatum `json:"data"`
}

type imageDatum struct {
	B64JSON string `json:"b64_json"`
}
