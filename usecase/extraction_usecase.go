package usecase

import (
	"context"
	"fmt"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/extractor"
	"propgen/infrastructure/logger"
	"propgen/infrastructure/metrics"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type IExtractionUsecase interface {
	Extract(ctx context.Context, userID, url string) (*model.Property, error)
}

type extractionUsecase struct {
	extractor    repository.IListingExtractor
	properties   repository.IProperty
	profiles     repository.IProfile
	events       repository.IEventPublisher
	metrics      *metrics.Metrics
	defaultLimit int
}

func NewExtractionUsecase(ext repository.IListingExtractor, properties repository.IProperty, profiles repository.IProfile,
	events repository.IEventPublisher, m *metrics.Metrics, defaultLimit int) IExtractionUsecase {
	if events == nil {
		events = EventFanout(nil)
	}
	return &extractionUsecase{extractor: ext, properties: properties, profiles: profiles, events: events, metrics: m, defaultLimit: defaultLimit}
}

// Extract checks the monthly quota, scrapes the listing, stores it as a
// processed property and counts one use. The quota check and the increment
// are separate statements, so concurrent requests can overshoot the limit.
func (u *extractionUsecase) Extract(ctx context.Context, userID, url string) (*model.Property, error) {
	lg := logger.GetLogger().WithField("user_id", userID)
	profile, err := ensureProfile(ctx, u.profiles, userID, u.defaultLimit)
	if err != nil {
		return nil, err
	}
	if !profile.HasQuota() {
		u.metrics.IncExtraction("limited")
		return nil, domainerrors.ErrUsageLimit
	}

	listing, err := u.extractor.Extract(ctx, url)
	if err != nil {
		u.metrics.IncExtraction(metrics.StatusFailed)
		lg.WithField("url", url).WithField("error", err).Error("listing extraction failed")
		var status *extractor.ErrStatus
		if errors.As(err, &status) {
			return nil, domainerrors.ErrFetchListing.WithDetails(fmt.Sprintf("listing page returned status %d", status.Code))
		}
		return nil, domainerrors.ErrFetchListing
	}

	p := &model.Property{
		ID:          uuid.NewString(),
		UserID:      userID,
		SourceURL:   url,
		Title:       listing.Title,
		Description: listing.Description,
		Price:       listing.Price,
		Address:     listing.Address,
		Images:      listing.Images,
		Agent:       listing.Agent,
		Status:      model.PropertyStatusProcessed,
	}
	if err := u.properties.Create(ctx, p); err != nil {
		u.metrics.IncExtraction(metrics.StatusFailed)
		return nil, err
	}
	if err := u.profiles.IncrementUsage(ctx, userID); err != nil {
		lg.WithField("error", err).Error("usage increment failed")
	}
	u.metrics.IncExtraction(metrics.StatusSuccess)
	_ = u.events.Publish(ctx, model.DomainEvent{
		Type:       model.EventListingExtracted,
		UserID:     userID,
		PropertyID: p.ID,
		Attributes: map[string]string{"source_url": url},
	})
	lg.WithField("property_id", p.ID).Info("listing extracted")
	return p, nil
}
