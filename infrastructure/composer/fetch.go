package composer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	_ "golang.org/x/image/webp"
)

const maxImageBytes = 20 << 20

// Fetcher downloads remote images for composition
type Fetcher struct {
	client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{client: &http.Client{Timeout: timeout}}
}

// Bytes returns the raw body and its content type
func (f *Fetcher) Bytes(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "build image request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "fetch image %s", url)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("fetch image %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, "", errors.Wrap(err, "read image body")
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

// Image downloads and decodes a jpeg, png, gif or webp image
func (f *Fetcher) Image(ctx context.Context, url string) (image.Image, error) {
	data, _, err := f.Bytes(ctx, url)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrapf(err, "decode image %s", url)
	}
	return img, nil
}
