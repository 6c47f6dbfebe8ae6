package usecase

import (
	"context"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"

	"github.com/pkg/errors"
)

const (
	defaultPlan     = "free"
	defaultLanguage = "en"
)

type IProfileUsecase interface {
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error)
}

type profileUsecase struct {
	profiles     repository.IProfile
	defaultLimit int
}

func NewProfileUsecase(profiles repository.IProfile, defaultLimit int) IProfileUsecase {
	return &profileUsecase{profiles: profiles, defaultLimit: defaultLimit}
}

func (u *profileUsecase) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	return ensureProfile(ctx, u.profiles, userID, u.defaultLimit)
}

func (u *profileUsecase) UpdateProfile(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error) {
	if _, err := ensureProfile(ctx, u.profiles, userID, u.defaultLimit); err != nil {
		return nil, err
	}
	return u.profiles.Update(ctx, userID, upd)
}

// ensureProfile returns the user's profile, creating the free-plan default on first use
func ensureProfile(ctx context.Context, profiles repository.IProfile, userID string, limit int) (*model.Profile, error) {
	p, err := profiles.GetByUserID(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domainerrors.ErrProfileNotFound) {
		return nil, err
	}
	if err := profiles.Create(ctx, &model.Profile{
		UserID:       userID,
		Plan:         defaultPlan,
		MonthlyLimit: limit,
		Language:     defaultLanguage,
	}); err != nil {
		return nil, err
	}
	return profiles.GetByUserID(ctx, userID)
}
