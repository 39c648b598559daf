package media

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibechat-service/internal/models"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	body    []byte
	deletes []string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.puts = append(f.puts, in)
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deletes = append(f.deletes, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestObjectKey(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "u1/1700000000123.mp4", ObjectKey("u1", at, models.VibeVideo))
	assert.Equal(t, "u1/1700000000123.jpg", ObjectKey("u1", at, models.VibeImage))
}

func TestUploadSetsHeaders(t *testing.T) {
	fake := &fakeS3{}
	b := newS3Bucket(fake, S3Config{Bucket: "status_updates", Region: "us-east-1"})

	require.NoError(t, b.Upload(context.Background(), "u1/1.jpg", []byte("img"), "image/jpeg"))
	require.Len(t, fake.puts, 1)
	in := fake.puts[0]
	assert.Equal(t, "status_updates", aws.ToString(in.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(in.ContentType))
	assert.Equal(t, CacheControl, aws.ToString(in.CacheControl))
	assert.Equal(t, []byte("img"), fake.body)
}

func TestUploadWrapsError(t *testing.T) {
	fake := &fakeS3{err: errors.New("boom")}
	b := newS3Bucket(fake, S3Config{Bucket: "b", Region: "r"})
	err := b.Upload(context.Background(), "k", nil, "image/jpeg")
	assert.ErrorContains(t, err, "s3 put failed")
}

func TestPublicURL(t *testing.T) {
	cases := []struct {
		cfg  S3Config
		want string
	}{
		{S3Config{Bucket: "status_updates", Region: "eu-west-1"}, "https://status_updates.s3.eu-west-1.amazonaws.com/u1/1.jpg"},
		{S3Config{Bucket: "status_updates", Endpoint: "http://minio:9000/"}, "http://minio:9000/status_updates/u1/1.jpg"},
		{S3Config{Bucket: "status_updates", PublicURL: "https://cdn.example.com/media/"}, "https://cdn.example.com/media/u1/1.jpg"},
	}
	for _, tc := range cases {
		b := newS3Bucket(&fakeS3{}, tc.cfg)
		assert.Equal(t, tc.want, b.PublicURL("u1/1.jpg"))
	}
}

func TestDelete(t *testing.T) {
	fake := &fakeS3{}
	b := newS3Bucket(fake, S3Config{Bucket: "b", Region: "r"})
	require.NoError(t, b.Delete(context.Background(), "u1/1.jpg"))
	assert.Equal(t, []string{"u1/1.jpg"}, fake.deletes)
}
