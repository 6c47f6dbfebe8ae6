package facebook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"propgen/domain/model"
)

type graphCall struct {
	Method string
	Path   string
	Form   url.Values
}

// fakeGraph records every call and answers from a path -> body table
type fakeGraph struct {
	mu    sync.Mutex
	calls []graphCall
}

func (f *fakeGraph) handler(t *testing.T, answers map[string]func(form url.Values) (int, any)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		f.mu.Lock()
		f.calls = append(f.calls, graphCall{Method: r.Method, Path: r.URL.Path, Form: r.Form})
		f.mu.Unlock()
		answer, ok := answers[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"unknown path","type":"GraphMethodException","code":100}}`))
			return
		}
		status, body := answer(r.Form)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}

func newGraph(t *testing.T, f *fakeGraph, answers map[string]func(url.Values) (int, any)) *GraphClient {
	srv := httptest.NewServer(f.handler(t, answers))
	t.Cleanup(srv.Close)
	return NewGraphClient(srv.URL, "v19.0", 5*time.Second)
}

func TestPublisher_MultiImageSequence(t *testing.T) {
	f := &fakeGraph{}
	photo := 0
	graph := newGraph(t, f, map[string]func(url.Values) (int, any){
		"POST /v19.0/page-1/photos": func(form url.Values) (int, any) {
			photo++
			return 200, map[string]string{"id": "photo-" + string(rune('0'+photo))}
		},
		"POST /v19.0/page-1/feed": func(form url.Values) (int, any) {
			return 200, map[string]string{"id": "page-1_post-9"}
		},
	})

	res, err := NewPublisher(graph).Publish(context.Background(),
		&model.OAuthToken{AccessToken: "page-token", AccountID: "page-1"},
		model.PublishInput{
			ImageURLs: []string{"https://cdn/a.png", "https://cdn/b.png", "https://cdn/c.png"},
			Caption:   "Open house Sunday",
			Hashtags:  []string{"realestate", "#justlisted"},
		})
	require.NoError(t, err)
	assert.Equal(t, "page-1_post-9", res.PostID)
	assert.Equal(t, "https://www.facebook.com/page-1_post-9", res.URL)

	require.Len(t, f.calls, 4)
	for i, u := range []string{"https://cdn/a.png", "https://cdn/b.png", "https://cdn/c.png"} {
		c := f.calls[i]
		assert.Equal(t, "/v19.0/page-1/photos", c.Path)
		assert.Equal(t, u, c.Form.Get("url"))
		assert.Equal(t, "false", c.Form.Get("published"))
		assert.Equal(t, "page-token", c.Form.Get("access_token"))
	}
	feed := f.calls[3]
	assert.Equal(t, "/v19.0/page-1/feed", feed.Path)
	assert.Equal(t, "Open house Sunday\n\n#realestate #justlisted", feed.Form.Get("message"))
	assert.Equal(t, `{"media_fbid":"photo-1"}`, feed.Form.Get("attached_media[0]"))
	assert.Equal(t, `{"media_fbid":"photo-3"}`, feed.Form.Get("attached_media[2]"))
}

func TestPublisher_SingleImageIsPhotoPost(t *testing.T) {
	f := &fakeGraph{}
	graph := newGraph(t, f, map[string]func(url.Values) (int, any){
		"POST /v19.0/page-1/photos": func(form url.Values) (int, any) {
			return 200, map[string]string{"id": "photo-1", "post_id": "page-1_77"}
		},
	})

	res, err := NewPublisher(graph).Publish(context.Background(),
		&model.OAuthToken{AccessToken: "t", AccountID: "page-1"},
		model.PublishInput{ImageURLs: []string{"https://cdn/a.png"}, Caption: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "page-1_77", res.PostID)
	require.Len(t, f.calls, 1)
	assert.Equal(t, "true", f.calls[0].Form.Get("published"))
	assert.Equal(t, "Hi", f.calls[0].Form.Get("caption"))
}

func TestPublisher_NoImageIsTextPost(t *testing.T) {
	f := &fakeGraph{}
	graph := newGraph(t, f, map[string]func(url.Values) (int, any){
		"POST /v19.0/page-1/feed": func(form url.Values) (int, any) {
			return 200, map[string]string{"id": "page-1_1"}
		},
	})

	_, err := NewPublisher(graph).Publish(context.Background(),
		&model.OAuthToken{AccessToken: "t", AccountID: "page-1"}, model.PublishInput{Caption: "Text only"})
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	assert.Empty(t, f.calls[0].Form.Get("attached_media[0]"))
}

func TestPublisher_GraphErrorStopsSequence(t *testing.T) {
	f := &fakeGraph{}
	graph := newGraph(t, f, map[string]func(url.Values) (int, any){
		"POST /v19.0/page-1/photos": func(form url.Values) (int, any) {
			return 400, map[string]any{"error": map[string]any{"message": "Invalid OAuth access token", "type": "OAuthException", "code": 190}}
		},
	})

	_, err := NewPublisher(graph).Publish(context.Background(),
		&model.OAuthToken{AccessToken: "bad", AccountID: "page-1"},
		model.PublishInput{ImageURLs: []string{"https://cdn/a.png", "https://cdn/b.png"}})
	var gErr *GraphError
	require.ErrorAs(t, err, &gErr)
	assert.Equal(t, 190, gErr.Code)
	assert.Len(t, f.calls, 1)
}

func TestOAuthProvider_ConnectSelectsFirstPageAndInstagram(t *testing.T) {
	f := &fakeGraph{}
	graph := newGraph(t, f, map[string]func(url.Values) (int, any){
		"POST /v19.0/oauth/access_token": func(form url.Values) (int, any) {
			assert.Equal(t, "the-code", form.Get("code"))
			return 200, map[string]any{"access_token": "short", "token_type": "bearer", "expires_in": 3600}
		},
		"GET /v19.0/oauth/access_token": func(form url.Values) (int, any) {
			assert.Equal(t, "fb_exchange_token", form.Get("grant_type"))
			assert.Equal(t, "short", form.Get("fb_exchange_token"))
			return 200, map[string]any{"access_token": "long", "token_type": "bearer", "expires_in": 5184000}
		},
		"GET /v19.0/me/accounts": func(form url.Values) (int, any) {
			assert.Equal(t, "long", form.Get("access_token"))
			return 200, map[string]any{"data": []map[string]string{
				{"id": "p1", "name": "First Realty", "access_token": "pt1"},
				{"id": "p2", "name": "Second", "access_token": "pt2"},
			}}
		},
		"GET /v19.0/p1": func(form url.Values) (int, any) {
			return 200, map[string]any{"id": "p1"}
		},
		"GET /v19.0/p2": func(form url.Values) (int, any) {
			return 200, map[string]any{"id": "p2", "instagram_business_account": map[string]string{"id": "ig-2"}}
		},
	})

	p := NewOAuthProvider("cid", "secret", "https://app/oauth/facebook?action=callback", []string{"pages_show_list", "pages_manage_posts"}, graph)
	assert.Contains(t, p.AuthCodeURL("st-1"), "state=st-1")
	assert.Contains(t, p.AuthCodeURL("st-1"), "scope=pages_show_list%2Cpages_manage_posts")

	tokens, err := p.Connect(context.Background(), "the-code")
	require.NoError(t, err)
	require.Len(t, tokens, 2)
	assert.Equal(t, model.PlatformFacebook, tokens[0].Platform)
	assert.Equal(t, "pt1", tokens[0].AccessToken)
	assert.Equal(t, "p1", tokens[0].AccountID)
	assert.NotNil(t, tokens[0].ExpiresAt)
	assert.Equal(t, model.PlatformInstagram, tokens[1].Platform)
	assert.Equal(t, "ig-2", tokens[1].AccountID)
	assert.Equal(t, "pt2", tokens[1].AccessToken)
}

func TestOAuthProvider_NoPages(t *testing.T) {
	f := &fakeGraph{}
	graph := newGraph(t, f, map[string]func(url.Values) (int, any){
		"POST /v19.0/oauth/access_token": func(url.Values) (int, any) {
			return 200, map[string]any{"access_token": "short", "token_type": "bearer"}
		},
		"GET /v19.0/oauth/access_token": func(url.Values) (int, any) {
			return 200, map[string]any{"access_token": "long"}
		},
		"GET /v19.0/me/accounts": func(url.Values) (int, any) {
			return 200, map[string]any{"data": []any{}}
		},
	})
	_, err := NewOAuthProvider("cid", "secret", "https://app/cb", nil, graph).Connect(context.Background(), "c")
	assert.ErrorIs(t, err, ErrNoPages)
}
