package repository

import (
	"context"

	"propgen/domain/model"
)

// IImageComposer renders one marketing image. Implementations are interchangeable.
type IImageComposer interface {
	Kind() model.ComposerKind
	Compose(ctx context.Context, req model.ComposeRequest) ([]byte, error)
}

// IObjectStorage stores generated files and returns a stable public URL
type IObjectStorage interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
