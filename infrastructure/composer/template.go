package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

const (
	placidFinished = "finished"
	placidError    = "error"
)

// PlacidConfig configures the hosted templating service
type PlacidConfig struct {
	APIKey       string
	BaseURL      string
	Templates    map[string]string // format -> template uuid
	Timeout      time.Duration
	PollInterval time.Duration
	MaxPolls     int
}

// TemplateComposer fills a hosted Placid template through its REST API and downloads the render
type TemplateComposer struct {
	client *http.Client
	cfg    PlacidConfig
	fetch  *Fetcher
}

func NewTemplateComposer(cfg PlacidConfig, fetch *Fetcher) *TemplateComposer {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.MaxPolls == 0 {
		cfg.MaxPolls = 30
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &TemplateComposer{client: &http.Client{Timeout: cfg.Timeout}, cfg: cfg, fetch: fetch}
}

var _ repository.IImageComposer = (*TemplateComposer)(nil)

func (c *TemplateComposer) Kind() model.ComposerKind { return model.ComposerTemplate }

type layer struct {
	Text  string `json:"text,omitempty"`
	Image string `json:"image,omitempty"`
}

type placidRequest struct {
	TemplateUUID string           `json:"template_uuid"`
	CreateNow    bool             `json:"create_now"`
	Layers       map[string]layer `json:"layers"`
}

type placidImage struct {
	ID       int64  `json:"id"`
	Status   string `json:"status"`
	ImageURL string `json:"image_url"`
}

type pollParams struct {
	Format string `url:"format,omitempty"`
}

func (c *TemplateComposer) Compose(ctx context.Context, req model.ComposeRequest) ([]byte, error) {
	templateID := req.Template.ID
	if templateID == "" {
		templateID = c.cfg.Templates[string(req.Format)]
	}
	if templateID == "" {
		return nil, domainerrors.ErrCompose.WithDetails(fmt.Sprintf("no template configured for %s", req.Format))
	}
	body, err := json.Marshal(placidRequest{TemplateUUID: templateID, CreateNow: true, Layers: layers(req)})
	if err != nil {
		return nil, err
	}
	img := &placidImage{}
	if err := c.call(ctx, http.MethodPost, c.cfg.BaseURL+"/images", bytes.NewReader(body), img); err != nil {
		return nil, err
	}

	params, _ := query.Values(pollParams{Format: "json"})
	for i := 0; img.Status != placidFinished; i++ {
		if img.Status == placidError || i >= c.cfg.MaxPolls {
			logger.GetLogger().WithField("placid_id", img.ID).WithField("status", img.Status).Error("template render did not finish")
			return nil, domainerrors.ErrCompose.WithDetails("template render did not finish")
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}
		url := fmt.Sprintf("%s/images/%d?%s", c.cfg.BaseURL, img.ID, params.Encode())
		if err := c.call(ctx, http.MethodGet, url, nil, img); err != nil {
			return nil, err
		}
	}
	data, _, err := c.fetch.Bytes(ctx, img.ImageURL)
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrCompose, err.Error())
	}
	return data, nil
}

// layers maps the overlay fields onto the layer names used by the templates
func layers(req model.ComposeRequest) map[string]layer {
	f := req.Fields
	out := map[string]layer{
		"title":       {Text: f.Title},
		"price":       {Text: f.Price},
		"address":     {Text: f.Address},
		"agent_name":  {Text: f.AgentName},
		"agent_phone": {Text: f.AgentPhone},
	}
	for i, u := range req.PhotoURLs {
		if i == maxPhotos {
			break
		}
		out[fmt.Sprintf("photo_%d", i+1)] = layer{Image: u}
	}
	if f.AgentPhotoURL != "" {
		out["agent_photo"] = layer{Image: f.AgentPhotoURL}
	}
	if f.LogoURL != "" {
		out["logo"] = layer{Image: f.LogoURL}
	}
	return out
}

func (c *TemplateComposer) call(ctx context.Context, method, url string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(domainerrors.ErrCompose, err.Error())
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read placid response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logger.GetLogger().WithField("status", resp.StatusCode).WithField("error", string(raw)).Error("placid request failed")
		return domainerrors.ErrCompose.WithDetails(fmt.Sprintf("template service returned %d", resp.StatusCode))
	}
	return errors.Wrap(json.Unmarshal(raw, out), "decode placid response")
}
