package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"
	"propgen/infrastructure/metrics"

	"golang.org/x/sync/errgroup"
)

var baseHashtags = []string{"realestate", "justlisted", "newlisting", "dreamhome", "househunting"}

var nonTagChars = regexp.MustCompile(`[^\p{L}\p{N}]+`)

type GeneratedContent struct {
	Captions map[string]string
	Hashtags []string
	Fallback bool
}

type IContentUsecase interface {
	GenerateSocialContent(ctx context.Context, platform string, data model.ListingFields) (string, error)
	GenerateAll(ctx context.Context, userID, propertyID string) (*GeneratedContent, error)
	UpdateCaptions(ctx context.Context, userID, propertyID string, captions map[string]string, hashtags []string) (*model.Property, error)
}

type contentUsecase struct {
	generator  repository.ITextGenerator
	properties repository.IProperty
	metrics    *metrics.Metrics
}

func NewContentUsecase(generator repository.ITextGenerator, properties repository.IProperty, m *metrics.Metrics) IContentUsecase {
	return &contentUsecase{generator: generator, properties: properties, metrics: m}
}

// GenerateSocialContent makes one generation call for one platform. It doubles as the manual retry.
func (u *contentUsecase) GenerateSocialContent(ctx context.Context, platform string, data model.ListingFields) (string, error) {
	if !isPlatform(platform) {
		return "", domainerrors.ErrUnsupported.WithDetails(platform)
	}
	text, err := u.generator.GenerateText(ctx, contentPrompt(platform, data))
	u.metrics.IncContent(platform, metrics.Outcome(err))
	if err != nil {
		return "", err
	}
	return text, nil
}

// GenerateAll generates every platform caption in parallel. If any call
// fails the whole batch is replaced by captions taken from the listing itself.
func (u *contentUsecase) GenerateAll(ctx context.Context, userID, propertyID string) (*GeneratedContent, error) {
	p, err := u.properties.GetByID(ctx, propertyID, userID)
	if err != nil {
		return nil, err
	}
	data := model.FieldsOf(p)

	var mu sync.Mutex
	captions := make(map[string]string, len(model.Platforms))
	g, gctx := errgroup.WithContext(ctx)
	for _, platform := range model.Platforms {
		g.Go(func() error {
			text, err := u.GenerateSocialContent(gctx, platform, data)
			if err != nil {
				return err
			}
			mu.Lock()
			captions[platform] = text
			mu.Unlock()
			return nil
		})
	}
	out := &GeneratedContent{Captions: captions, Hashtags: hashtagsFor(p)}
	if err := g.Wait(); err != nil {
		logger.GetLogger().WithField("property_id", propertyID).WithField("error", err).Warn("caption generation failed, using listing text")
		out.Captions = fallbackCaptions(p)
		out.Fallback = true
		for _, platform := range model.Platforms {
			u.metrics.IncContent(platform, metrics.StatusFallback)
		}
	}
	if err := u.properties.UpdateContent(ctx, propertyID, userID, out.Captions, out.Hashtags); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *contentUsecase) UpdateCaptions(ctx context.Context, userID, propertyID string, captions map[string]string, hashtags []string) (*model.Property, error) {
	p, err := u.properties.GetByID(ctx, propertyID, userID)
	if err != nil {
		return nil, err
	}
	merged := make(map[string]string, len(p.Captions)+len(captions))
	for k, v := range p.Captions {
		merged[k] = v
	}
	for k, v := range captions {
		if !isPlatform(k) {
			return nil, domainerrors.ErrUnsupported.WithDetails(k)
		}
		merged[k] = strings.TrimSpace(v)
	}
	if hashtags == nil {
		hashtags = p.Hashtags
	}
	tags := normalizeTags(hashtags)
	if err := u.properties.UpdateContent(ctx, propertyID, userID, merged, tags); err != nil {
		return nil, err
	}
	p.Captions, p.Hashtags = merged, tags
	return p, nil
}

func fallbackCaptions(p *model.Property) map[string]string {
	return map[string]string{
		model.PlatformFacebook:  p.Description,
		model.PlatformInstagram: p.Description,
		model.PlatformTikTok:    p.Title,
	}
}

func contentPrompt(platform string, d model.ListingFields) string {
	var style string
	switch platform {
	case model.PlatformFacebook:
		style = "Write an engaging Facebook post of two or three short paragraphs. Use a few fitting emojis and end with a call to action to contact the agent."
	case model.PlatformInstagram:
		style = "Write a punchy Instagram caption under 150 words with line breaks between ideas and a few fitting emojis."
	case model.PlatformTikTok:
		style = "Write a TikTok video caption under 150 characters that opens with a hook."
	}
	return fmt.Sprintf(`You are a real estate marketing copywriter.
%s
Do not include hashtags. Do not invent facts that are not listed below.

Title: %s
Description: %s
Price: %s
Address: %s`, style, d.Title, d.Description, d.Price, d.Address)
}

// hashtagsFor returns the base tags plus one for the city, taken from the second address segment
func hashtagsFor(p *model.Property) []string {
	tags := append([]string{}, baseHashtags...)
	parts := strings.Split(p.Address, ",")
	if len(parts) > 1 {
		if city := nonTagChars.ReplaceAllString(strings.TrimSpace(parts[1]), ""); city != "" {
			tags = append(tags, strings.ToLower(city)+"realestate")
		}
	}
	return normalizeTags(tags)
}

func normalizeTags(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, t := range in {
		t = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(t), "#"))
		key := strings.ToLower(t)
		if t == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

func isPlatform(p string) bool {
	for _, known := range model.Platforms {
		if p == known {
			return true
		}
	}
	return false
}
