// Package s3archive implements ports.ReportArchive on Amazon S3.
package s3archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectAPI is the subset of *s3.Client the archive needs.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// Archive stores premium reports under bucket/prefix.
type Archive struct {
	client ObjectAPI
	bucket string
	region string
	prefix string
}

// New loads the default AWS credential chain for region.
func New(ctx context.Context, bucket, region, prefix string) (*Archive, error) {
	if bucket == "" {
		return nil, fmt.Errorf("archive bucket is required")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewWithClient(s3.NewFromConfig(cfg), bucket, region, prefix), nil
}

// NewWithClient creates an Archive on an existing S3 client.
func NewWithClient(client ObjectAPI, bucket, region, prefix string) *Archive {
	return &Archive{
		client: client,
		bucket: bucket,
		region: region,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Put uploads body and returns its object URL.
func (a *Archive) Put(ctx context.Context, key string, body []byte, contentType string) (string, error) {
	full := a.key(key)
	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(full),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put s3://%s/%s: %w", a.bucket, full, err)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", a.bucket, a.region, full), nil
}

// Delete removes an archived report. Missing objects are not an error.
func (a *Archive) Delete(ctx context.Context, key string) error {
	full := a.key(key)
	_, err := a.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(full),
	})
	if err != nil {
		return fmt.Errorf("delete s3://%s/%s: %w", a.bucket, full, err)
	}
	return nil
}

func (a *Archive) key(k string) string {
	if a.prefix == "" {
		return k
	}
	return a.prefix + "/" + k
}
