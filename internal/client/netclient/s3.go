package netclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/offlinesync/internal/client/models"
	"github.com/dmitrijs2005/offlinesync/internal/common"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) ObjectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectAPI is the part of *s3.Client the S3 transport needs.
type ObjectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configure an S3-compatible endpoint (AWS or MinIO).
type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

// S3Client serves s3://bucket/key URLs: GET reads the object, POST and PUT
// write the payload to it and return an empty body.
type S3Client struct {
	api ObjectAPI
}

// NewS3Client builds an S3Client from static credentials.
func NewS3Client(ctx context.Context, o S3Options) (*S3Client, error) {
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newS3ClientFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
			opts.UsePathStyle = true
		}
	})
	return NewS3ClientWithAPI(api), nil
}

func NewS3ClientWithAPI(api ObjectAPI) *S3Client {
	return &S3Client{api: api}
}

func (c *S3Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.Send(ctx, &models.Request{Method: http.MethodGet, URL: rawURL})
}

func (c *S3Client) Post(ctx context.Context, rawURL string, payload []byte) ([]byte, error) {
	return c.Send(ctx, models.NewPostRequest(rawURL, payload))
}

func (c *S3Client) Send(ctx context.Context, req *models.Request) ([]byte, error) {
	bucket, key, err := parseS3URL(req.URL)
	if err != nil {
		return nil, err
	}

	switch strings.ToUpper(req.Method) {
	case http.MethodGet:
		out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			return nil, mapS3Error("get", req.URL, err)
		}
		defer out.Body.Close()

		data, err := io.ReadAll(out.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", common.ErrUnavailable, req.URL, err)
		}
		return data, nil

	case http.MethodPost, http.MethodPut:
		contentType := common.DefaultContentType
		if ct := req.Header.Get("Content-Type"); ct != "" {
			contentType = ct
		}
		_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(req.Body),
			ContentLength: aws.Int64(int64(len(req.Body))),
			ContentType:   aws.String(contentType),
		})
		if err != nil {
			return nil, mapS3Error("put", req.URL, err)
		}
		return []byte{}, nil
	}

	return nil, fmt.Errorf("%w: method %s not supported for s3", common.ErrInvalidRequest, req.Method)
}

func parseS3URL(raw string) (bucket, key string, err error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrInvalidRequest, err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", fmt.Errorf("%w: %q is not an s3://bucket/key url", common.ErrInvalidRequest, raw)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("%w: %q has no object key", common.ErrInvalidRequest, raw)
	}
	return u.Host, key, nil
}

func mapS3Error(op, rawURL string, err error) error {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	if errors.As(err, &noKey) || errors.As(err, &noBucket) {
		return fmt.Errorf("s3 %s %s: %w", op, rawURL, common.ErrorNotFound)
	}
	return fmt.Errorf("%w: s3 %s %s: %w", common.ErrUnavailable, op, rawURL, err)
}
