package repository

import (
	"context"

	"propgen/domain/model"
)

// ITextGenerator produces free-text content from a prompt
type ITextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// IListingExtractor fetches and parses a listing page
type IListingExtractor interface {
	Extract(ctx context.Context, url string) (*model.Listing, error)
}
