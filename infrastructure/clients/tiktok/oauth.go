package tiktok

import (
	"context"
	"strings"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// OAuthProvider runs the TikTok Login Kit code flow. TikTok names the client id client_key.
type OAuthProvider struct {
	config *oauth2.Config
	client *Client
}

var _ repository.IOAuthProvider = (*OAuthProvider)(nil)

func NewOAuthProvider(clientKey, clientSecret, redirectURI, authURL, tokenURL string, scopes []string, client *Client) *OAuthProvider {
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     clientKey,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{strings.Join(scopes, ",")},
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		client: client,
	}
}

func (p *OAuthProvider) Name() string { return model.PlatformTikTok }

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("client_key", p.config.ClientID))
}

// Connect exchanges the code and resolves the username shown on the profile.
// A failed user info lookup still connects the account under its open id.
func (p *OAuthProvider) Connect(ctx context.Context, code string) ([]*model.OAuthToken, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client.HTTPClient())
	tok, err := p.config.Exchange(ctx, code, oauth2.SetAuthURLParam("client_key", p.config.ClientID))
	if err != nil {
		return nil, errors.Wrap(err, "exchange tiktok code")
	}
	openID, _ := tok.Extra("open_id").(string)
	scopes, _ := tok.Extra("scope").(string)
	if scopes == "" {
		scopes = p.config.Scopes[0]
	}
	t := &model.OAuthToken{
		Platform:     model.PlatformTikTok,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Scopes:       scopes,
		AccountID:    openID,
		TokenType:    "user",
	}
	if !tok.Expiry.IsZero() {
		exp := tok.Expiry.UTC()
		t.ExpiresAt = &exp
	}

	info, err := p.client.UserInfo(ctx, tok.AccessToken)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("tiktok user info lookup failed")
	} else {
		if info.OpenID != "" {
			t.AccountID = info.OpenID
		}
		t.AccountName = info.Username
		if t.AccountName == "" {
			t.AccountName = info.DisplayName
		}
	}
	return []*model.OAuthToken{t}, nil
}
