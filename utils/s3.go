package utils

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the slice of the S3 client the archiver needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ExportArchiver stores CSV exports in a bucket.
type ExportArchiver struct {
	client    ObjectPutter
	bucket    string
	publicURL string // optional CDN base; falls back to the bucket URL
}

func NewExportArchiver(client ObjectPutter, bucket, publicURL string) *ExportArchiver {
	return &ExportArchiver{client: client, bucket: bucket, publicURL: strings.TrimRight(publicURL, "/")}
}

// Upload writes the CSV under exports/<user>/ and returns its URL.
func (a *ExportArchiver) Upload(ctx context.Context, userID, from, to string, csv []byte) (string, error) {
	key := fmt.Sprintf("exports/%s/meals_%s_to_%s_%d.csv", userID, from, to, time.Now().UnixNano())

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:             aws.String(a.bucket),
		Key:                aws.String(key),
		Body:               bytes.NewReader(csv),
		ContentType:        aws.String("text/csv"),
		ContentDisposition: aws.String(fmt.Sprintf("attachment; filename=\"meals_%s_to_%s.csv\"", from, to)),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload export to S3: %w", err)
	}

	if a.publicURL != "" {
		return fmt.Sprintf("%s/%s", a.publicURL, key), nil
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", a.bucket, key), nil
}
