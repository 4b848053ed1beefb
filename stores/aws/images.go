package aws

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path"

	"pos-server/core"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type s3ImageStore struct {
	s3Client *s3.Client
	bucket   string
}

// NewImageStore creates an S3-backed image store. Objects are keyed
// <businessID>/<key>.
func NewImageStore(bucketName string) *s3ImageStore {
	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	return &s3ImageStore{
		s3Client: s3.NewFromConfig(cfg),
		bucket:   bucketName,
	}
}

// objectKey rejects keys that would escape the business prefix.
func objectKey(businessID int64, key string) (string, error) {
	if key == "" || key == "." || key == ".." || path.Base(key) != key {
		return "", fmt.Errorf("invalid image key: must be a simple name")
	}
	return path.Join(fmt.Sprintf("%d", businessID), key), nil
}

func (s *s3ImageStore) SaveImage(ctx context.Context, businessID int64, key string, data []byte) error {
	k, err := objectKey(businessID, key)
	if err != nil {
		return err
	}

	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("failed to upload image %s: %v", key, err)
	}
	return nil
}

func (s *s3ImageStore) GetImage(ctx context.Context, businessID int64, key string) ([]byte, error) {
	k, err := objectKey(businessID, key)
	if err != nil {
		return nil, err
	}

	resp, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		var nsk *s3types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get image %s: %v", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %v", err)
	}
	return data, nil
}

func (s *s3ImageStore) DeleteImage(ctx context.Context, businessID int64, key string) error {
	k, err := objectKey(businessID, key)
	if err != nil {
		return err
	}

	_, err = s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return fmt.Errorf("failed to delete image %s: %v", key, err)
	}
	return nil
}
