package facebook

import (
	"context"

	"propgen/domain/model"
	"propgen/domain/repository"

	"github.com/pkg/errors"
)

// Publisher posts to the connected Facebook page
type Publisher struct {
	graph *GraphClient
}

func NewPublisher(graph *GraphClient) *Publisher { return &Publisher{graph: graph} }

var _ repository.ISocialPublisher = (*Publisher)(nil)

func (p *Publisher) Platform() string { return model.PlatformFacebook }

// Publish picks the post shape from the image count: several images are
// uploaded unpublished and attached to one feed post, a single image is a
// photo post, no image is a text post.
func (p *Publisher) Publish(ctx context.Context, token *model.OAuthToken, in model.PublishInput) (*model.PublishResult, error) {
	pageID := token.AccountID
	message := in.Message()
	var postID string
	switch len(in.ImageURLs) {
	case 0:
		id, err := p.graph.CreateFeedPost(ctx, pageID, token.AccessToken, message, nil)
		if err != nil {
			return nil, errors.Wrap(err, "create feed post")
		}
		postID = id
	case 1:
		id, pid, err := p.graph.UploadPhoto(ctx, pageID, token.AccessToken, in.ImageURLs[0], message, true)
		if err != nil {
			return nil, errors.Wrap(err, "create photo post")
		}
		postID = pid
		if postID == "" {
			postID = id
		}
	default:
		mediaIDs := make([]string, 0, len(in.ImageURLs))
		for _, u := range in.ImageURLs {
			id, _, err := p.graph.UploadPhoto(ctx, pageID, token.AccessToken, u, "", false)
			if err != nil {
				return nil, errors.Wrap(err, "upload unpublished photo")
			}
			mediaIDs = append(mediaIDs, id)
		}
		id, err := p.graph.CreateFeedPost(ctx, pageID, token.AccessToken, message, mediaIDs)
		if err != nil {
			return nil, errors.Wrap(err, "create multi-photo post")
		}
		postID = id
	}
	return &model.PublishResult{PostID: postID, URL: "https://www.facebook.com/" + postID}, nil
}
