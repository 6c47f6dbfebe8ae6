package storage

import (
	"context"
	"io"
	"strings"

	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
	"gocloud.dev/gcerrors"
)

var ErrObjectNotFound = errors.New("object not found")

// BlobStorage stores generated images in any gocloud bucket (file://, mem://, gs://, s3://)
// and hands out URLs under a public base.
type BlobStorage struct {
	bucket        *blob.Bucket
	publicBaseURL string
}

var _ repository.IObjectStorage = (*BlobStorage)(nil)

func NewBlobStorage(ctx context.Context, bucketURL, publicBaseURL string) (*BlobStorage, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, errors.Wrapf(err, "open bucket %s", bucketURL)
	}
	logger.GetLogger().WithField("bucket", bucketURL).Info("Object storage ready")
	return NewBucketStorage(bucket, publicBaseURL), nil
}

func NewBucketStorage(bucket *blob.Bucket, publicBaseURL string) *BlobStorage {
	return &BlobStorage{bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

// Upload writes data under key, replacing any previous object, and returns its public URL
func (s *BlobStorage) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	w, err := s.bucket.NewWriter(ctx, key, &blob.WriterOptions{
		ContentType:  contentType,
		CacheControl: "public, max-age=300",
	})
	if err != nil {
		return "", errors.Wrap(err, "open object writer")
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", errors.Wrap(err, "write object")
	}
	if err := w.Close(); err != nil {
		return "", errors.Wrap(err, "close object writer")
	}
	return s.publicBaseURL + "/" + key, nil
}

// Open streams an object back, used to serve local buckets over HTTP
func (s *BlobStorage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	r, err := s.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, "", ErrObjectNotFound
		}
		return nil, "", errors.Wrap(err, "open object")
	}
	return r, r.ContentType(), nil
}

func (s *BlobStorage) Close() error { return s.bucket.Close() }
