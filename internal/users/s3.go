package users

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/brizzai/moodlist/internal/models"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Store keeps one JSON object per user under users/ in a bucket.
type S3Store struct {
	client *minio.Client
	bucket string
}

func NewS3Store(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*S3Store, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}
	return &S3Store{client: client, bucket: bucket}, nil
}

func s3Key(uid string) string {
	return "users/" + objectKey(uid)
}

func (s *S3Store) Get(ctx context.Context, uid string) (*models.User, error) {
	object, err := s.client.GetObject(ctx, s.bucket, s3Key(uid), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get user from S3: %w", err)
	}
	defer object.Close()

	// GetObject is lazy; a missing key only surfaces on first read.
	data, err := io.ReadAll(object)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read user data: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &user, nil
}

func (s *S3Store) Save(ctx context.Context, user *models.User) error {
	if err := validate(user); err != nil {
		return err
	}
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	_, err = s.client.PutObject(ctx, s.bucket, s3Key(user.UID), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to save user to S3: %w", err)
	}
	return nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}
