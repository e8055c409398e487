package utils

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body string
	err  error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, _ := io.ReadAll(in.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, f.err
}

func TestExportArchiver_Upload(t *testing.T) {
	fp := &fakePutter{}
	a := NewExportArchiver(fp, "meal-exports", "https://cdn.example.com/")

	url, err := a.Upload(context.Background(), "user-1", "2024-01-01", "2024-01-07", []byte("Date\n"))

	require.NoError(t, err)
	assert.Equal(t, "meal-exports", aws.ToString(fp.in.Bucket))
	assert.Equal(t, "text/csv", aws.ToString(fp.in.ContentType))
	assert.Contains(t, aws.ToString(fp.in.Key), "exports/user-1/meals_2024-01-01_to_2024-01-07_")
	assert.Equal(t, "Date\n", fp.body)
	assert.Equal(t, "https://cdn.example.com/"+aws.ToString(fp.in.Key), url)
}

func TestExportArchiver_UploadError(t *testing.T) {
	a := NewExportArchiver(&fakePutter{err: errors.New("access denied")}, "b", "")

	_, err := a.Upload(context.Background(), "u", "a", "b", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}
