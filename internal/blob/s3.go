package blob

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Config configures the S3 driver.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, e.g. a MinIO URL
	PathStyle bool
	// Prefix is prepended to every object key.
	Prefix string
}

// s3API is the subset of the S3 client the driver uses.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3 stores each collection under "<prefix><collection>/" in one bucket.
type S3 struct {
	client s3API
	bucket string
	prefix string
}

// NewS3 builds an S3 store using the default AWS credential chain.
func NewS3(ctx context.Context, cfg S3Config) (*S3, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return newS3WithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func newS3WithClient(client s3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) collectionPrefix(c Collection) string {
	return s.prefix + string(c) + "/"
}

func (s *S3) objectKey(c Collection, key string) string {
	return s.collectionPrefix(c) + key
}

// Put uploads data, replacing any existing object.
func (s *S3) Put(ctx context.Context, c Collection, key string, data []byte, contentType string) error {
	if err := validate(c, key); err != nil {
		return err
	}
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(c, key)),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("putting object %s: %w", key, err)
	}
	return nil
}

// Get downloads the object or returns nil when it does not exist.
func (s *S3) Get(ctx context.Context, c Collection, key string) (*Blob, error) {
	if err := validate(c, key); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(c, key)),
	})
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting object %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading object %s: %w", key, err)
	}
	return &Blob{Key: key, Data: data, ContentType: aws.ToString(out.ContentType)}, nil
}

// Delete removes the object and reports whether it existed.
func (s *S3) Delete(ctx context.Context, c Collection, key string) (bool, error) {
	if err := validate(c, key); err != nil {
		return false, err
	}
	objKey := aws.String(s.objectKey(c, key))
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(s.bucket), Key: objKey})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking object %s: %w", key, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(s.bucket), Key: objKey}); err != nil {
		return false, fmt.Errorf("deleting object %s: %w", key, err)
	}
	return true, nil
}

// List downloads every object in c ordered by key.
func (s *S3) List(ctx context.Context, c Collection) ([]Blob, error) {
	if err := validate(c, "-"); err != nil {
		return nil, err
	}
	keys, err := s.listKeys(ctx, s.collectionPrefix(c))
	if err != nil {
		return nil, err
	}
	out := make([]Blob, 0, len(keys))
	for _, objKey := range keys {
		key := strings.TrimPrefix(objKey, s.collectionPrefix(c))
		b, err := s.Get(ctx, c, key)
		if err != nil {
			return nil, err
		}
		if b != nil {
			out = append(out, *b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *S3) listKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("listing objects: %w", err)
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if aws.ToBool(out.IsTruncated) && out.NextContinuationToken != nil {
			token = out.NextContinuationToken
			continue
		}
		return keys, nil
	}
}

// Drop deletes every object of both collections in batches of 1000.
func (s *S3) Drop(ctx context.Context) error {
	for _, c := range Collections {
		keys, err := s.listKeys(ctx, s.collectionPrefix(c))
		if err != nil {
			return err
		}
		for start := 0; start < len(keys); start += 1000 {
			batch := keys[start:min(start+1000, len(keys))]
			ids := make([]types.ObjectIdentifier, 0, len(batch))
			for _, k := range batch {
				ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
			}
			out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(true)},
			})
			if err != nil {
				return fmt.Errorf("dropping %s: %w", c, err)
			}
			if len(out.Errors) > 0 {
				return fmt.Errorf("dropping %s: %d objects not deleted, first: %s", c, len(out.Errors), aws.ToString(out.Errors[0].Message))
			}
		}
	}
	return nil
}

// Driver reports DriverS3.
func (s *S3) Driver() Driver { return DriverS3 }

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	return errors.As(err, &nsk) || errors.As(err, &nf)
}
