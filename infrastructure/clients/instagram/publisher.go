package instagram

import (
	"context"

	domainerrors "propgen/domain/errors"
	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/clients/facebook"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
)

// Publisher posts a single image to the Instagram business account linked to the page.
// Only the first image is used.
type Publisher struct {
	graph *facebook.GraphClient
}

func NewPublisher(graph *facebook.GraphClient) *Publisher { return &Publisher{graph: graph} }

var _ repository.ISocialPublisher = (*Publisher)(nil)

func (p *Publisher) Platform() string { return model.PlatformInstagram }

func (p *Publisher) Publish(ctx context.Context, token *model.OAuthToken, in model.PublishInput) (*model.PublishResult, error) {
	if len(in.ImageURLs) == 0 {
		return nil, domainerrors.ErrValidation.WithMessage("instagram posts need at least one image")
	}
	igID := token.AccountID
	creationID, err := p.graph.CreateMediaContainer(ctx, igID, token.AccessToken, in.ImageURLs[0], in.Message())
	if err != nil {
		return nil, errors.Wrap(err, "create media container")
	}
	mediaID, err := p.graph.PublishMedia(ctx, igID, token.AccessToken, creationID)
	if err != nil {
		return nil, errors.Wrap(err, "publish media")
	}
	link, err := p.graph.Permalink(ctx, mediaID, token.AccessToken)
	if err != nil {
		logger.GetLogger().WithField("media_id", mediaID).WithField("error", err).Warn("instagram permalink lookup failed")
		link = "https://www.instagram.com/"
	}
	return &model.PublishResult{PostID: mediaID, URL: link}, nil
}
