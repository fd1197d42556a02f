package s3archive_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/areainsight/internal/adapters/s3archive"
)

type mockS3 struct {
	putFn    func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error)
	deleteFn func(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error)
}

func (m *mockS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return m.putFn(ctx, in)
}

func (m *mockS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	return m.deleteFn(ctx, in)
}

func TestPut(t *testing.T) {
	var got *s3.PutObjectInput
	var body []byte
	m := &mockS3{putFn: func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		got = in
		body, _ = io.ReadAll(in.Body)
		return &s3.PutObjectOutput{}, nil
	}}
	a := s3archive.NewWithClient(m, "reports", "eu-west-1", "/premium/")

	url, err := a.Put(context.Background(), "u1/r1.md", []byte("# report"), "text/markdown")
	require.NoError(t, err)
	assert.Equal(t, "https://reports.s3.eu-west-1.amazonaws.com/premium/u1/r1.md", url)
	assert.Equal(t, "reports", aws.ToString(got.Bucket))
	assert.Equal(t, "premium/u1/r1.md", aws.ToString(got.Key))
	assert.Equal(t, "text/markdown", aws.ToString(got.ContentType))
	assert.Equal(t, "# report", string(body))
}

func TestPut_Error(t *testing.T) {
	m := &mockS3{putFn: func(ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("AccessDenied")
	}}
	_, err := s3archive.NewWithClient(m, "reports", "eu-west-1", "").Put(context.Background(), "k", nil, "text/plain")
	assert.ErrorContains(t, err, "AccessDenied")
	assert.ErrorContains(t, err, "s3://reports/k")
}

func TestDelete(t *testing.T) {
	var key string
	m := &mockS3{deleteFn: func(ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		key = aws.ToString(in.Key)
		return &s3.DeleteObjectOutput{}, nil
	}}
	require.NoError(t, s3archive.NewWithClient(m, "b", "r", "p").Delete(context.Background(), "x"))
	assert.Equal(t, "p/x", key)
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := s3archive.New(context.Background(), "", "eu-west-1", "")
	assert.Error(t, err)
}
