package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// APIError is the error object TikTok attaches to every Open API response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	LogID   string `json:"log_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tiktok api %d: %s (%s)", e.Status, e.Message, e.Code)
}

// Client calls the TikTok Open API v2
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{httpClient: &http.Client{Timeout: timeout}, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) HTTPClient() *http.Client { return c.httpClient }

type UserInfo struct {
	OpenID      string `json:"open_id"`
	DisplayName string `json:"display_name"`
	Username    string `json:"username"`
}

// UserInfo returns the profile of the token owner
func (c *Client) UserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	var out struct {
		User UserInfo `json:"user"`
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v2/user/info/?fields=open_id,display_name,username", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

type postInfo struct {
	Title        string `json:"title"`
	PrivacyLevel string `json:"privacy_level"`
}

type sourceInfo struct {
	Source          string `json:"source"`
	VideoSize       int64  `json:"video_size"`
	ChunkSize       int64  `json:"chunk_size"`
	TotalChunkCount int    `json:"total_chunk_count"`
}

type initRequest struct {
	PostInfo   postInfo   `json:"post_info"`
	SourceInfo sourceInfo `json:"source_info"`
}

// VideoInit is the upload slot returned for a direct post
type VideoInit struct {
	PublishID string `json:"publish_id"`
	UploadURL string `json:"upload_url"`
}

// placeholderVideoSize is declared until the video is assembled out of band
const placeholderVideoSize = 10_000_000

// InitVideoPublish opens a FILE_UPLOAD direct post visible only to the creator
func (c *Client) InitVideoPublish(ctx context.Context, accessToken, title string) (*VideoInit, error) {
	body, err := json.Marshal(initRequest{
		PostInfo: postInfo{Title: title, PrivacyLevel: "SELF_ONLY"},
		SourceInfo: sourceInfo{
			Source:          "FILE_UPLOAD",
			VideoSize:       placeholderVideoSize,
			ChunkSize:       placeholderVideoSize,
			TotalChunkCount: 1,
		},
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v2/post/publish/video/init/", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	out := &VideoInit{}
	if err := c.do(req, out); err != nil {
		return nil, err
	}
	return out, nil
}

// do decodes the {data, error} envelope; error.code "ok" means success
func (c *Client) do(req *http.Request, data any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "tiktok request")
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read tiktok response")
	}
	var envelope struct {
		Data  json.RawMessage `json:"data"`
		Error *APIError       `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return &APIError{Status: resp.StatusCode, Code: "invalid_response", Message: string(raw)}
	}
	if envelope.Error != nil && envelope.Error.Code != "" && envelope.Error.Code != "ok" {
		envelope.Error.Status = resp.StatusCode
		return envelope.Error
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Code: "http_error", Message: http.StatusText(resp.StatusCode)}
	}
	if data == nil || len(envelope.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(envelope.Data, data), "decode tiktok data")
}
