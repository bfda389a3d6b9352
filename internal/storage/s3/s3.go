// Package s3 implements a VolumeAdapter over an S3-compatible bucket.
//
// Directories are represented by zero-byte marker objects with a trailing
// slash, the convention S3 consoles use. Renames copy every object under
// the old prefix and then batch-delete the originals; S3 has no native
// rename.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// deleteBatchSize is the DeleteObjects API limit.
const deleteBatchSize = 1000

// Options configures an S3 adapter. AccessKey/SecretKey are optional; when
// absent the default AWS credential chain is used. Endpoint enables
// path-style addressing for S3-compatible services (MinIO, R2).
type Options struct {
	Bucket    string
	Region    string
	Endpoint  string
	Prefix    string
	AccessKey string
	SecretKey string
}

// Adapter stores volume contents in an S3 bucket under an optional key
// prefix.
type Adapter struct {
	client   *s3.Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
}

// New creates an S3 adapter from the given options.
func New(ctx context.Context, opts Options) (*Adapter, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 adapter: bucket is required")
	}

	var cfg aws.Config
	if opts.AccessKey != "" {
		cfg = aws.Config{
			Region:      opts.Region,
			Credentials: credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		}
	} else {
		loaded, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
		if err != nil {
			return nil, fmt.Errorf("s3 adapter: load aws config: %w", err)
		}
		cfg = loaded
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})

	prefix := strings.Trim(opts.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}

	return &Adapter{
		client:   client,
		uploader: manager.NewUploader(client),
		bucket:   opts.Bucket,
		prefix:   prefix,
	}, nil
}

func (a *Adapter) key(path string) string {
	return a.prefix + strings.TrimPrefix(path, "/")
}

// CreateDirectory writes a zero-byte marker object. Re-writing an existing
// marker is a no-op, so creation is idempotent.
func (a *Adapter) CreateDirectory(ctx context.Context, path string) error {
	key := strings.TrimSuffix(a.key(path), "/") + "/"
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(""),
	})
	if err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// RenameDirectory copies every object under the old prefix to the new one,
// then deletes the originals.
func (a *Adapter) RenameDirectory(ctx context.Context, path, newName string) error {
	oldPrefix := strings.TrimSuffix(a.key(path), "/") + "/"
	parent := ""
	if i := strings.LastIndex(strings.TrimSuffix(a.key(path), "/"), "/"); i >= 0 {
		parent = a.key(path)[:i+1]
	}
	newPrefix := parent + newName + "/"

	keys, err := a.listKeys(ctx, oldPrefix)
	if err != nil {
		return fmt.Errorf("rename directory %s: %w", path, err)
	}
	if len(keys) == 0 {
		return fmt.Errorf("rename directory %s: %w", path, fs.ErrNotExist)
	}

	for _, key := range keys {
		dst := newPrefix + strings.TrimPrefix(key, oldPrefix)
		_, err := a.client.CopyObject(ctx, &s3.CopyObjectInput{
			Bucket:     aws.String(a.bucket),
			CopySource: aws.String(copySource(a.bucket, key)),
			Key:        aws.String(dst),
		})
		if err != nil {
			return fmt.Errorf("rename directory %s: copy %s: %w", path, key, err)
		}
	}

	if err := a.deleteKeys(ctx, keys); err != nil {
		return fmt.Errorf("rename directory %s: %w", path, err)
	}
	return nil
}

// copySource builds the URL-encoded bucket/key header value CopyObject
// expects. The slashes between segments stay literal; everything else is
// percent-encoded so keys with spaces, '+' or '#' survive.
func copySource(bucket, key string) string {
	segments := strings.Split(key, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return bucket + "/" + strings.Join(segments, "/")
}

// DeleteDirectory removes every object under the prefix in batches.
func (a *Adapter) DeleteDirectory(ctx context.Context, path string) error {
	prefix := strings.TrimSuffix(a.key(path), "/") + "/"
	keys, err := a.listKeys(ctx, prefix)
	if err != nil {
		return fmt.Errorf("delete directory %s: %w", path, err)
	}
	if err := a.deleteKeys(ctx, keys); err != nil {
		return fmt.Errorf("delete directory %s: %w", path, err)
	}
	return nil
}

// FileExists probes the object with HeadObject.
func (a *Adapter) FileExists(ctx context.Context, path string) (bool, error) {
	_, err := a.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(path)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("head %s: %w", path, err)
	}
	return true, nil
}

// WriteFile uploads the contents of r, using multipart upload for large
// bodies via the transfer manager.
func (a *Adapter) WriteFile(ctx context.Context, path string, r io.Reader) error {
	_, err := a.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(path)),
		Body:   r,
	})
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ReadFile streams the object body. The caller closes it.
func (a *Adapter) ReadFile(ctx context.Context, path string) (io.ReadCloser, error) {
	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(path)),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return out.Body, nil
}

// DeleteFile removes the object. S3 deletes are silent on missing keys, so
// existence is probed first to honor the ErrNotExist contract.
func (a *Adapter) DeleteFile(ctx context.Context, path string) error {
	exists, err := a.FileExists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("delete %s: %w", path, fs.ErrNotExist)
	}
	_, err = a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(a.key(path)),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

// listKeys collects every object key under prefix.
func (a *Adapter) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(a.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// deleteKeys removes keys with the batch DeleteObjects API, up to 1000 per
// request.
func (a *Adapter) deleteKeys(ctx context.Context, keys []string) error {
	for start := 0; start < len(keys); start += deleteBatchSize {
		end := start + deleteBatchSize
		if end > len(keys) {
			end = len(keys)
		}
		objects := make([]types.ObjectIdentifier, 0, end-start)
		for _, key := range keys[start:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(key)})
		}
		_, err := a.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(a.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(true),
			},
		})
		if err != nil {
			return fmt.Errorf("batch delete: %w", err)
		}
	}
	return nil
}
