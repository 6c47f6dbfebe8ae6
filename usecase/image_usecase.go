package usecase

import (
	"context"
	"fmt"
	"sync"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/extractor"
	"propgen/infrastructure/logger"
	"propgen/infrastructure/metrics"

	"golang.org/x/sync/errgroup"
)

type ImageOptions struct {
	Composer         model.ComposerKind
	TemplateID       string
	TemplateImageURL string
}

// GeneratedImages holds the uploaded URL per format and the formats that failed
type GeneratedImages struct {
	Images map[string]string
	Failed []string
}

type IImageUsecase interface {
	// GenerateImages renders every format, uploads each image and records the
	// URLs that succeeded. It errors only when no format succeeded.
	GenerateImages(ctx context.Context, userID, propertyID string, opts ImageOptions) (*GeneratedImages, error)
}

type imageUsecase struct {
	composers   map[model.ComposerKind]repository.IImageComposer
	defaultKind model.ComposerKind
	storage     repository.IObjectStorage
	properties  repository.IProperty
	profiles    repository.IProfile
	metrics     *metrics.Metrics
}

func NewImageUsecase(composers []repository.IImageComposer, defaultKind model.ComposerKind, storage repository.IObjectStorage,
	properties repository.IProperty, profiles repository.IProfile, m *metrics.Metrics) IImageUsecase {
	byKind := make(map[model.ComposerKind]repository.IImageComposer, len(composers))
	for _, c := range composers {
		byKind[c.Kind()] = c
	}
	return &imageUsecase{composers: byKind, defaultKind: defaultKind, storage: storage, properties: properties, profiles: profiles, metrics: m}
}

func (u *imageUsecase) GenerateImages(ctx context.Context, userID, propertyID string, opts ImageOptions) (*GeneratedImages, error) {
	kind := opts.Composer
	if kind == "" {
		kind = u.defaultKind
	}
	composer, ok := u.composers[kind]
	if !ok {
		return nil, domainerrors.ErrValidation.WithDetails(fmt.Sprintf("composer %q is not available", kind))
	}
	p, err := u.properties.GetByID(ctx, propertyID, userID)
	if err != nil {
		return nil, err
	}
	fields := textFields(p)
	if profile, err := u.profiles.GetByUserID(ctx, userID); err == nil {
		fields.AgentPhotoURL = profile.AvatarURL
		fields.LogoURL = profile.LogoURL
	}

	var mu sync.Mutex
	urls := make(map[string]string, len(model.ImageFormats))
	errs := make(map[string]error)
	// formats are independent: a failing one must not cancel its siblings
	var g errgroup.Group
	if kind == model.ComposerAI {
		g.SetLimit(1)
	}
	for _, format := range model.ImageFormats {
		g.Go(func() error {
			publicURL, err := u.renderFormat(ctx, composer, userID, p, format, opts, fields)
			u.metrics.IncImage(string(kind), string(format), metrics.Outcome(err))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs[string(format)] = err
				return nil
			}
			urls[string(format)] = publicURL
			return nil
		})
	}
	_ = g.Wait()

	out := &GeneratedImages{Images: urls, Failed: make([]string, 0, len(errs))}
	for _, format := range model.ImageFormats {
		if err, failed := errs[string(format)]; failed {
			out.Failed = append(out.Failed, string(format))
			logger.GetLogger().WithField("property_id", propertyID).WithField("composer", kind).
				WithField("format", format).WithField("error", err).Warn("image format failed")
		}
	}
	if len(urls) == 0 {
		firstErr := errs[out.Failed[0]]
		if _, ok := domainerrors.As(firstErr); ok {
			return nil, firstErr
		}
		return nil, domainerrors.ErrCompose
	}
	if err := u.properties.MergeGeneratedImages(ctx, propertyID, userID, urls); err != nil {
		return nil, err
	}
	return out, nil
}

func (u *imageUsecase) renderFormat(ctx context.Context, composer repository.IImageComposer, userID string, p *model.Property,
	format model.ImageFormat, opts ImageOptions, fields model.TextFields) (string, error) {
	data, err := composer.Compose(ctx, model.ComposeRequest{
		Format:    format,
		Template:  model.Template{ID: opts.TemplateID, ImageURL: opts.TemplateImageURL},
		PhotoURLs: p.Images,
		Fields:    fields,
	})
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s/%s.png", userID, p.ID, format)
	return u.storage.Upload(ctx, key, data, "image/png")
}

// textFields builds the overlay text, leaving out extractor placeholders
func textFields(p *model.Property) model.TextFields {
	f := model.TextFields{
		Title:   orEmpty(p.Title, extractor.FallbackTitle),
		Price:   orEmpty(p.Price, extractor.FallbackPrice),
		Address: orEmpty(p.Address, extractor.FallbackAddress),
	}
	if p.Agent != nil {
		f.AgentName = orEmpty(p.Agent.Name, extractor.FallbackAgent)
		f.AgentPhone = orEmpty(p.Agent.Phone, extractor.FallbackAgent)
	}
	return f
}

func orEmpty(v, placeholder string) string {
	if v == placeholder {
		return ""
	}
	return v
}
