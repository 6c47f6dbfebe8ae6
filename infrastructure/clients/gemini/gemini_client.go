package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	domainerrors "propgen/domain/errors"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Config represents Gemini API configuration
type Config struct {
	APIKey     string
	Endpoint   string
	TextModel  string
	ImageModel string
	Timeout    time.Duration
}

// InlineImage is an image sent to or received from the model
type InlineImage struct {
	MimeType string
	Data     []byte
}

// Client talks to the Generative Language API for captions and composed images
type Client struct {
	service    *generativelanguage.Service
	textModel  string
	imageModel string
}

var _ repository.ITextGenerator = (*Client)(nil)

// apiKeyTransport adds the API key header; option.WithAPIKey is ignored when a custom HTTP client is supplied
type apiKeyTransport struct {
	key  string
	base http.RoundTripper
}

func (t *apiKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("x-goog-api-key", t.key)
	return t.base.RoundTrip(r)
}

// NewClient creates a new Gemini API client
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini api key not configured")
	}
	httpClient := &http.Client{
		Timeout:   config.Timeout,
		Transport: &apiKeyTransport{key: config.APIKey, base: http.DefaultTransport},
	}
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if config.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(config.Endpoint))
	}
	service, err := generativelanguage.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create generative language service: %w", err)
	}
	return &Client{service: service, textModel: modelName(config.TextModel), imageModel: modelName(config.ImageModel)}, nil
}

func modelName(m string) string {
	if strings.HasPrefix(m, "models/") {
		return m
	}
	return "models/" + m
}

// GenerateText returns the concatenated text of the first candidate
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
	}
	resp, err := c.service.Models.GenerateContent(c.textModel, req).Context(ctx).Do()
	if err != nil {
		return "", mapError(err)
	}
	var b strings.Builder
	for _, part := range firstParts(resp) {
		b.WriteString(part.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", domainerrors.ErrGenerate.WithDetails("empty model response")
	}
	return text, nil
}

// GenerateImage sends the prompt with reference images and expects exactly one image back
func (c *Client) GenerateImage(ctx context.Context, prompt string, images []InlineImage) (*InlineImage, error) {
	parts := []*generativelanguage.Part{{Text: prompt}}
	for _, img := range images {
		parts = append(parts, &generativelanguage.Part{InlineData: &generativelanguage.Blob{
			MimeType: img.MimeType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}
	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{Role: "user", Parts: parts}},
	}
	resp, err := c.service.Models.GenerateContent(c.imageModel, req).Context(ctx).Do()
	if err != nil {
		return nil, mapError(err)
	}
	var found []*generativelanguage.Blob
	for _, part := range firstParts(resp) {
		if part.InlineData != nil && part.InlineData.Data != "" {
			found = append(found, part.InlineData)
		}
	}
	if len(found) != 1 {
		logger.GetLogger().WithField("images", len(found)).Warn("unexpected image count from model")
		return nil, domainerrors.ErrCompose.WithDetails(fmt.Sprintf("expected one image, got %d", len(found)))
	}
	data, err := base64.StdEncoding.DecodeString(found[0].Data)
	if err != nil {
		return nil, errors.Wrap(err, "decode model image")
	}
	return &InlineImage{MimeType: found[0].MimeType, Data: data}, nil
}

func firstParts(resp *generativelanguage.GenerateContentResponse) []*generativelanguage.Part {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	return resp.Candidates[0].Content.Parts
}

// mapError turns quota and billing responses into their user-facing errors
func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return domainerrors.ErrRateLimited
		case http.StatusPaymentRequired:
			return domainerrors.ErrCreditsExhaust
		}
		logger.GetLogger().WithField("status", apiErr.Code).WithField("error", apiErr.Message).Error("generative language request failed")
	} else {
		logger.GetLogger().WithField("error", err).Error("generative language request failed")
	}
	return errors.Wrap(domainerrors.ErrGenerate, err.Error())
}
