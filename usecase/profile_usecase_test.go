package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/usecase"
)

func TestProfileUsecase_GetCreatesDefault(t *testing.T) {
	profiles := new(MockProfileRepo)
	profiles.On("GetByUserID", mock.Anything, "u1").Return(nil, domainerrors.ErrProfileNotFound).Once()
	profiles.On("Create", mock.Anything, mock.MatchedBy(func(p *model.Profile) bool {
		return p.Plan == "free" && p.MonthlyLimit == 10
	})).Return(nil)
	profiles.On("GetByUserID", mock.Anything, "u1").Return(&model.Profile{UserID: "u1", Plan: "free", MonthlyLimit: 10}, nil).Once()

	p, err := usecase.NewProfileUsecase(profiles, 10).GetProfile(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "free", p.Plan)
	profiles.AssertExpectations(t)
}

func TestProfileUsecase_Update(t *testing.T) {
	profiles := new(MockProfileRepo)
	name := "Sunset Realty"
	upd := model.ProfileUpdate{Company: &name}
	profiles.On("GetByUserID", mock.Anything, "u1").Return(&model.Profile{UserID: "u1"}, nil)
	profiles.On("Update", mock.Anything, "u1", upd).Return(&model.Profile{UserID: "u1", Company: name}, nil)

	p, err := usecase.NewProfileUsecase(profiles, 10).UpdateProfile(context.Background(), "u1", upd)
	require.NoError(t, err)
	assert.Equal(t, name, p.Company)
}

func TestPropertyUsecase_ListDefaults(t *testing.T) {
	properties := new(MockPropertyRepo)
	properties.On("ListByUser", mock.Anything, "u1", 20, 0).Return([]*model.Property{{ID: "p1"}}, nil)
	list, err := usecase.NewPropertyUsecase(properties).List(context.Background(), "u1", 0, -5)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
