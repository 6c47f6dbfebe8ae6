package tiktok

import (
	"context"

	"propgen/domain/model"
	"propgen/domain/repository"

	"github.com/pkg/errors"
)

const maxTitleRunes = 2200

// Publisher opens a TikTok direct post. The video itself is uploaded out of
// band to the returned upload URL.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher { return &Publisher{client: client} }

var _ repository.ISocialPublisher = (*Publisher)(nil)

func (p *Publisher) Platform() string { return model.PlatformTikTok }

func (p *Publisher) Publish(ctx context.Context, token *model.OAuthToken, in model.PublishInput) (*model.PublishResult, error) {
	slot, err := p.client.InitVideoPublish(ctx, token.AccessToken, postTitle(in))
	if err != nil {
		return nil, errors.Wrap(err, "init tiktok video post")
	}
	profile := "https://www.tiktok.com/"
	if token.AccountName != "" {
		profile += "@" + token.AccountName
	}
	return &model.PublishResult{PostID: slot.PublishID, URL: profile, UploadURL: slot.UploadURL}, nil
}

func postTitle(in model.PublishInput) string {
	title := in.Title
	if in.Description != "" {
		if title != "" {
			title += "\n\n"
		}
		title += in.Description
	}
	if title == "" {
		title = in.Message()
	}
	r := []rune(title)
	if len(r) > maxTitleRunes {
		return string(r[:maxTitleRunes])
	}
	return title
}
