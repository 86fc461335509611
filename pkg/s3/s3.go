package s3

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

const presignTTL = 24 * time.Hour

var ErrBucketNotSet = errors.New("archive bucket is not configured")

type ItfS3 interface {
	Upload(key string, contentType string, data []byte) (string, error)
	PresignURL(key string) (string, error)
}

type s3Client struct {
	client     *s3.S3
	session    *session.Session
	bucketName string
}

// New reads COMPLAINT_ARCHIVE_BUCKET and the AWS_* credentials. Callers treat
// ErrBucketNotSet as "archiving disabled".
func New() (ItfS3, error) {
	bucket := os.Getenv("COMPLAINT_ARCHIVE_BUCKET")
	if bucket == "" {
		return nil, ErrBucketNotSet
	}

	sess, err := newSession()
	if err != nil {
		return nil, err
	}

	return &s3Client{
		client:     s3.New(sess),
		session:    sess,
		bucketName: bucket,
	}, nil
}

func (s *s3Client) Upload(key string, contentType string, data []byte) (string, error) {
	uploader := s3manager.NewUploader(s.session)

	out, err := uploader.Upload(&s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	return out.Location, nil
}

func (s *s3Client) PresignURL(key string) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})

	urlStr, err := req.Presign(presignTTL)
	if err != nil {
		return "", err
	}

	return urlStr, nil
}

func newSession() (*session.Session, error) {
	cfg := &aws.Config{
		Region: aws.String(os.Getenv("AWS_REGION")),
	}

	if id := os.Getenv("AWS_ACCESS_KEY_ID"); id != "" {
		cfg.Credentials = credentials.NewStaticCredentials(
			id,
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		)
	}

	return session.NewSession(cfg)
}
