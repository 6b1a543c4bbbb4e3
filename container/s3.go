package container

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eokit/stacforge/config"
	"github.com/eokit/stacforge/errors"
	"github.com/eokit/stacforge/logger"
	"github.com/eokit/stacforge/scene"
)

const defaultS3Endpoint = "s3.amazonaws.com"

// S3 is a shared object-store backend. One backend serves every remote
// scene in a batch; a token bucket keeps the request rate inside the
// configured limit.
type S3 struct {
	client  *minio.Client
	limiter *rate.Limiter
	timeout time.Duration
	log     *zap.SugaredLogger
}

// NewS3 builds a backend from storage configuration. Credentials come from
// the usual AWS and MinIO environment variables, falling back to the
// shared credentials file.
func NewS3(cfg config.StorageConfig) (*S3, error) {
	endpoint := cfg.S3Endpoint
	if endpoint == "" {
		endpoint = defaultS3Endpoint
	}
	creds := credentials.NewChainCredentials([]credentials.Provider{
		&credentials.EnvAWS{},
		&credentials.EnvMinio{},
		&credentials.FileAWSCredentials{},
	})
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: cfg.S3Secure,
	})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "object store client: %v", err)
	}
	return &S3{
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), cfg.RequestBurst),
		timeout: time.Duration(cfg.ConnectTimeoutS * float64(time.Second)),
		log:     logger.Named("s3"),
	}, nil
}

// open lists the scene prefix and returns an accessor over its objects.
func (s *S3) open(ctx context.Context, sc scene.Scene) (*s3Container, error) {
	bucket, prefix := sc.Bucket(), sc.Key()
	if bucket == "" {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "no bucket in %s", sc)
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "rate limit: %v", err)
	}
	listCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	c := &s3Container{backend: s, bucket: bucket, prefix: prefix}
	for obj := range s.client.ListObjects(listCtx, bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, errors.Wrapf(errors.ErrContainerAccess, "listing s3://%s/%s: %v", bucket, prefix, obj.Err)
		}
		c.files = append(c.files, FileInfo{
			Name: strings.TrimPrefix(obj.Key, prefix),
			Size: obj.Size,
		})
	}
	if len(c.files) == 0 {
		return nil, errors.Wrapf(errors.ErrNotFound, "s3://%s/%s is empty", bucket, prefix)
	}
	s.log.Debugw("listed remote product", "bucket", bucket, "prefix", prefix, "objects", len(c.files))
	return c, nil
}

type s3Container struct {
	backend *S3
	bucket  string
	prefix  string
	files   []FileInfo
}

func (c *s3Container) Find(_ context.Context, pattern string) ([]string, error) {
	return findIn(c.files, pattern), nil
}

func (c *s3Container) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := c.backend.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "rate limit: %v", err)
	}
	obj, err := c.backend.client.GetObject(ctx, c.bucket, c.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrapf(errors.ErrContainerAccess, "get %s: %v", name, err)
	}
	// GetObject is lazy; Stat surfaces missing keys before the first read
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, errors.Wrapf(errors.ErrNotFound, "%s", name)
		}
		return nil, errors.Wrapf(errors.ErrContainerAccess, "stat %s: %v", name, err)
	}
	return obj, nil
}

func (c *s3Container) Files(_ context.Context) ([]FileInfo, error) {
	return c.files, nil
}

func (c *s3Container) Close() error { return nil }
