// Package storage 对象存储，兼容 S3 协议（Cloudflare R2、MinIO）。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"docgen-ai-api/internal/config"
)

var tracer = otel.Tracer("storage")

// R2Client S3 兼容对象存储客户端
type R2Client struct {
	client    *s3.Client
	bucket    string
	endpoint  string
	publicURL string
	prefix    string
}

// NewR2Client 使用静态凭证创建客户端，R2 的 region 固定为 auto
func NewR2Client(ctx context.Context, cfg *config.R2Config) (*R2Client, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("r2 bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load r2 config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.ResolvedEndpoint(), "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &R2Client{
		client:    client,
		bucket:    cfg.Bucket,
		endpoint:  endpoint,
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		prefix:    strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// Put 上传对象并返回可访问的 URL
func (c *R2Client) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	fullKey := c.objectKey(key)
	ctx, span := tracer.Start(ctx, "storage.R2Client.Put",
		trace.WithAttributes(
			attribute.String("storage.bucket", c.bucket),
			attribute.String("storage.key", fullKey),
			attribute.Int("storage.size", len(body)),
		))
	defer span.End()

	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(c.bucket),
		Key:           aws.String(fullKey),
		Body:          bytes.NewReader(body),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to put object %s: %w", fullKey, err)
	}
	return c.URL(fullKey), nil
}

// URL 配置了 public_url 时返回公开地址，否则返回 path-style 地址
func (c *R2Client) URL(fullKey string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + fullKey
	}
	return c.endpoint + "/" + c.bucket + "/" + fullKey
}

// HealthCheck 检查 bucket 可访问
func (c *R2Client) HealthCheck(ctx context.Context) error {
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(c.bucket)})
	return err
}

func (c *R2Client) objectKey(key string) string {
	key = strings.TrimLeft(key, "/")
	if c.prefix == "" {
		return key
	}
	return path.Join(c.prefix, key)
}
