package usecase

import (
	"context"

	"propgen/domain/model"
	"propgen/domain/repository"
)

const defaultPageSize = 20

type IPropertyUsecase interface {
	List(ctx context.Context, userID string, limit, offset int) ([]*model.Property, error)
	Get(ctx context.Context, userID, id string) (*model.Property, error)
}

type propertyUsecase struct {
	properties repository.IProperty
}

func NewPropertyUsecase(properties repository.IProperty) IPropertyUsecase {
	return &propertyUsecase{properties: properties}
}

func (u *propertyUsecase) List(ctx context.Context, userID string, limit, offset int) ([]*model.Property, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return u.properties.ListByUser(ctx, userID, limit, offset)
}

func (u *propertyUsecase) Get(ctx context.Context, userID, id string) (*model.Property, error) {
	return u.properties.GetByID(ctx, id, userID)
}
