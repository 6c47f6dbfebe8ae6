package facebook

import (
	"context"
	"strings"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	fbendpoint "golang.org/x/oauth2/facebook"
)

var ErrNoPages = errors.New("facebook account manages no pages")

// OAuthProvider connects a Facebook page, and the Instagram business account linked to it
type OAuthProvider struct {
	config *oauth2.Config
	graph  *GraphClient
}

var _ repository.IOAuthProvider = (*OAuthProvider)(nil)

// NewOAuthProvider builds the code-flow config. The dialog URL keeps the
// Facebook default host; the token URL follows the configured Graph base.
func NewOAuthProvider(clientID, clientSecret, redirectURI string, scopes []string, graph *GraphClient) *OAuthProvider {
	endpoint := fbendpoint.Endpoint
	endpoint.AuthURL = "https://www.facebook.com/" + graph.version + "/dialog/oauth"
	endpoint.TokenURL = graph.Endpoint("oauth/access_token")
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return &OAuthProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{strings.Join(scopes, ",")},
			Endpoint:     endpoint,
		},
		graph: graph,
	}
}

func (p *OAuthProvider) Name() string { return model.PlatformFacebook }

func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// Connect exchanges the code, upgrades to a long-lived token and selects the first managed page
func (p *OAuthProvider) Connect(ctx context.Context, code string) ([]*model.OAuthToken, error) {
	lg := logger.GetLogger()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.graph.HTTPClient())
	short, err := p.config.Exchange(ctx, code)
	if err != nil {
		return nil, errors.Wrap(err, "exchange facebook code")
	}
	long, err := p.graph.ExchangeLongLived(ctx, p.config.ClientID, p.config.ClientSecret, short.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "exchange long-lived token")
	}
	pages, err := p.graph.Pages(ctx, long.AccessToken)
	if err != nil {
		return nil, errors.Wrap(err, "list facebook pages")
	}
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	var expiresAt *time.Time
	if long.ExpiresIn > 0 {
		t := time.Now().UTC().Add(time.Duration(long.ExpiresIn) * time.Second)
		expiresAt = &t
	}
	scopes := p.config.Scopes[0]
	selected := pages[0]
	tokens := []*model.OAuthToken{{
		Platform:    model.PlatformFacebook,
		AccessToken: selected.AccessToken,
		ExpiresAt:   expiresAt,
		Scopes:      scopes,
		AccountID:   selected.ID,
		AccountName: selected.Name,
		TokenType:   "page",
	}}

	for _, page := range pages {
		igID, err := p.graph.InstagramAccount(ctx, page.ID, page.AccessToken)
		if err != nil {
			lg.WithField("page_id", page.ID).WithField("error", err).Warn("instagram lookup failed")
			continue
		}
		if igID == "" {
			continue
		}
		tokens = append(tokens, &model.OAuthToken{
			Platform:    model.PlatformInstagram,
			AccessToken: page.AccessToken,
			ExpiresAt:   expiresAt,
			Scopes:      scopes,
			AccountID:   igID,
			AccountName: page.Name,
			TokenType:   "page",
		})
		break
	}
	lg.WithField("page_id", selected.ID).WithField("instagram", len(tokens) > 1).Info("facebook account connected")
	return tokens, nil
}
