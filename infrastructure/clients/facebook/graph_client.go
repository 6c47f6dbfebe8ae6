package facebook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

// GraphError is the error envelope returned by the Graph API
type GraphError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

func (e *GraphError) Error() string {
	return fmt.Sprintf("graph api %d: %s (%s/%d)", e.Status, e.Message, e.Type, e.Code)
}

// GraphClient is a thin Graph API client shared by the Facebook and Instagram publishers
type GraphClient struct {
	httpClient *http.Client
	baseURL    string
	version    string
}

func NewGraphClient(baseURL, version string, timeout time.Duration) *GraphClient {
	return &GraphClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		version:    version,
	}
}

// HTTPClient exposes the configured client for the OAuth exchange
func (g *GraphClient) HTTPClient() *http.Client { return g.httpClient }

// Endpoint returns the versioned Graph URL for path
func (g *GraphClient) Endpoint(path string) string {
	return fmt.Sprintf("%s/%s/%s", g.baseURL, g.version, strings.TrimLeft(path, "/"))
}

type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"access_token"`
}

type LongLivedToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type exchangeParams struct {
	GrantType       string `url:"grant_type"`
	ClientID        string `url:"client_id"`
	ClientSecret    string `url:"client_secret"`
	FBExchangeToken string `url:"fb_exchange_token"`
}

type photoForm struct {
	URL         string `url:"url"`
	Caption     string `url:"caption,omitempty"`
	Published   bool   `url:"published"`
	AccessToken string `url:"access_token"`
}

type feedForm struct {
	Message     string `url:"message"`
	AccessToken string `url:"access_token"`
}

type mediaForm struct {
	ImageURL    string `url:"image_url"`
	Caption     string `url:"caption,omitempty"`
	AccessToken string `url:"access_token"`
}

type mediaPublishForm struct {
	CreationID  string `url:"creation_id"`
	AccessToken string `url:"access_token"`
}

// ExchangeLongLived swaps a short-lived user token for a long-lived one
func (g *GraphClient) ExchangeLongLived(ctx context.Context, clientID, clientSecret, shortToken string) (*LongLivedToken, error) {
	params, err := query.Values(exchangeParams{
		GrantType: "fb_exchange_token", ClientID: clientID, ClientSecret: clientSecret, FBExchangeToken: shortToken,
	})
	if err != nil {
		return nil, err
	}
	out := &LongLivedToken{}
	if err := g.get(ctx, "oauth/access_token", params, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pages lists the pages the user manages with their page tokens
func (g *GraphClient) Pages(ctx context.Context, userToken string) ([]Page, error) {
	var out struct {
		Data []Page `json:"data"`
	}
	params := url.Values{"fields": {"id,name,access_token"}, "access_token": {userToken}}
	if err := g.get(ctx, "me/accounts", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// InstagramAccount returns the business account linked to a page, or "" when none is linked
func (g *GraphClient) InstagramAccount(ctx context.Context, pageID, pageToken string) (string, error) {
	var out struct {
		Account *struct {
			ID string `json:"id"`
		} `json:"instagram_business_account"`
	}
	params := url.Values{"fields": {"instagram_business_account"}, "access_token": {pageToken}}
	if err := g.get(ctx, url.PathEscape(pageID), params, &out); err != nil {
		return "", err
	}
	if out.Account == nil {
		return "", nil
	}
	return out.Account.ID, nil
}

// UploadPhoto posts a photo to the page. Unpublished photos return an id usable in attached_media.
func (g *GraphClient) UploadPhoto(ctx context.Context, pageID, token, imageURL, caption string, published bool) (id, postID string, err error) {
	var out struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	form := photoForm{URL: imageURL, Caption: caption, Published: published, AccessToken: token}
	if err := g.postForm(ctx, url.PathEscape(pageID)+"/photos", form, nil, &out); err != nil {
		return "", "", err
	}
	return out.ID, out.PostID, nil
}

// CreateFeedPost creates a page post, attaching previously uploaded photos when mediaIDs is set
func (g *GraphClient) CreateFeedPost(ctx context.Context, pageID, token, message string, mediaIDs []string) (string, error) {
	extra := url.Values{}
	for i, id := range mediaIDs {
		raw, _ := json.Marshal(map[string]string{"media_fbid": id})
		extra.Set(fmt.Sprintf("attached_media[%d]", i), string(raw))
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := g.postForm(ctx, url.PathEscape(pageID)+"/feed", feedForm{Message: message, AccessToken: token}, extra, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// CreateMediaContainer stages an Instagram image post
func (g *GraphClient) CreateMediaContainer(ctx context.Context, igID, token, imageURL, caption string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := g.postForm(ctx, url.PathEscape(igID)+"/media", mediaForm{ImageURL: imageURL, Caption: caption, AccessToken: token}, nil, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// PublishMedia publishes a staged Instagram container
func (g *GraphClient) PublishMedia(ctx context.Context, igID, token, creationID string) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := g.postForm(ctx, url.PathEscape(igID)+"/media_publish", mediaPublishForm{CreationID: creationID, AccessToken: token}, nil, &out); err != nil {
		return "", err
	}
	return out.ID, nil
}

// Permalink looks up the public URL of an Instagram media object
func (g *GraphClient) Permalink(ctx context.Context, mediaID, token string) (string, error) {
	var out struct {
		Permalink string `json:"permalink"`
	}
	params := url.Values{"fields": {"permalink"}, "access_token": {token}}
	if err := g.get(ctx, url.PathEscape(mediaID), params, &out); err != nil {
		return "", err
	}
	return out.Permalink, nil
}

func (g *GraphClient) get(ctx context.Context, path string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.Endpoint(path)+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return g.do(req, out)
}

func (g *GraphClient) postForm(ctx context.Context, path string, form any, extra url.Values, out any) error {
	values, err := query.Values(form)
	if err != nil {
		return errors.Wrap(err, "encode graph form")
	}
	for k, v := range extra {
		values[k] = v
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint(path), strings.NewReader(values.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return g.do(req, out)
}

func (g *GraphClient) do(req *http.Request, out any) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "graph request")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read graph response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error *GraphError `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
			envelope.Error.Status = resp.StatusCode
			return envelope.Error
		}
		return &GraphError{Status: resp.StatusCode, Message: string(body)}
	}
	if out == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal(body, out), "decode graph response")
}
