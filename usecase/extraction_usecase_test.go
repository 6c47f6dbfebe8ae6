package usecase_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/infrastructure/extractor"
	"propgen/usecase"
)

const listingURL = "https://listings.example.com/homes/12-ocean-ave"

func sampleListing() *model.Listing {
	return &model.Listing{
		Title:       "Ocean View Villa",
		Description: "Bright three bedroom home steps from the beach.",
		Price:       "$750,000",
		Address:     "12 Ocean Ave, Santa Monica, CA 90401",
		Images:      []string{"https://cdn.example.com/1.jpg"},
		Agent:       &model.Agent{Name: "Jane Doe", Phone: "(310) 555-0147", Email: "jane@example.com"},
	}
}

func TestExtractionUsecase_Extract(t *testing.T) {
	ctx := context.Background()
	profiles := new(MockProfileRepo)
	properties := new(MockPropertyRepo)
	ext := new(MockExtractor)
	events := new(MockEvents)

	profiles.On("GetByUserID", mock.Anything, "u1").Return(&model.Profile{UserID: "u1", UsageCount: 3, MonthlyLimit: 10}, nil)
	ext.On("Extract", mock.Anything, listingURL).Return(sampleListing(), nil)
	properties.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Property) bool {
		return p.UserID == "u1" && p.SourceURL == listingURL && p.Status == model.PropertyStatusProcessed &&
			p.Price == "$750,000" && len(p.ID) == 36
	})).Return(nil)
	profiles.On("IncrementUsage", mock.Anything, "u1").Return(nil)
	events.On("Publish", mock.Anything, mock.MatchedBy(func(e model.DomainEvent) bool {
		return e.Type == model.EventListingExtracted && e.UserID == "u1"
	})).Return(nil)

	uc := usecase.NewExtractionUsecase(ext, properties, profiles, usecase.EventFanout{events}, nil, 10)
	p, err := uc.Extract(ctx, "u1", listingURL)
	require.NoError(t, err)
	assert.Equal(t, "Ocean View Villa", p.Title)
	assert.Equal(t, "Jane Doe", p.Agent.Name)

	profiles.AssertNumberOfCalls(t, "IncrementUsage", 1)
	properties.AssertNumberOfCalls(t, "Create", 1)
	events.AssertExpectations(t)
}

func TestExtractionUsecase_UsageLimit(t *testing.T) {
	profiles := new(MockProfileRepo)
	properties := new(MockPropertyRepo)
	ext := new(MockExtractor)
	profiles.On("GetByUserID", mock.Anything, "u1").Return(&model.Profile{UserID: "u1", UsageCount: 10, MonthlyLimit: 10}, nil)

	uc := usecase.NewExtractionUsecase(ext, properties, profiles, nil, nil, 10)
	_, err := uc.Extract(context.Background(), "u1", listingURL)
	assert.ErrorIs(t, err, domainerrors.ErrUsageLimit)
	ext.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
	profiles.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
}

func TestExtractionUsecase_FetchFailure(t *testing.T) {
	profiles := new(MockProfileRepo)
	properties := new(MockPropertyRepo)
	ext := new(MockExtractor)
	profiles.On("GetByUserID", mock.Anything, "u1").Return(&model.Profile{UserID: "u1", MonthlyLimit: 10}, nil)
	ext.On("Extract", mock.Anything, listingURL).Return(nil, errors.Wrap(&extractor.ErrStatus{Code: 403}, "fetch listing"))

	uc := usecase.NewExtractionUsecase(ext, properties, profiles, nil, nil, 10)
	_, err := uc.Extract(context.Background(), "u1", listingURL)
	require.ErrorIs(t, err, domainerrors.ErrFetchListing)
	appErr, ok := domainerrors.As(err)
	require.True(t, ok)
	assert.Contains(t, appErr.Details(), "403")
	properties.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	profiles.AssertNotCalled(t, "IncrementUsage", mock.Anything, mock.Anything)
}

func TestExtractionUsecase_CreatesMissingProfile(t *testing.T) {
	profiles := new(MockProfileRepo)
	properties := new(MockPropertyRepo)
	ext := new(MockExtractor)
	profiles.On("GetByUserID", mock.Anything, "new-user").Return(nil, domainerrors.ErrProfileNotFound).Once()
	profiles.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		return p.UserID == "new-user" && p.Plan == "free" && p.MonthlyLimit == 5 && p.Language == "en"
	})).Return(nil)
	profiles.On("GetByUserID", mock.Anything, "new-user").Return(&model.Profile{UserID: "new-user", MonthlyLimit: 5}, nil).Once()
	ext.On("Extract", mock.Anything, listingURL).Return(sampleListing(), nil)
	properties.On("Create", mock.Anything, mock.Anything).Return(nil)
	profiles.On("IncrementUsage", mock.Anything, "new-user").Return(nil)

	uc := usecase.NewExtractionUsecase(ext, properties, profiles, nil, nil, 5)
	_, err := uc.Extract(context.Background(), "new-user", listingURL)
	require.NoError(t, err)
	profiles.AssertExpectations(t)
}
