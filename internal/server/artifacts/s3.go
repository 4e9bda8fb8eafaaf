package artifacts

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophcam/internal/common"
	sc "github.com/dmitrijs2005/gophcam/internal/server/config"
	"github.com/dmitrijs2005/gophcam/internal/server/models"
	"github.com/google/uuid"
)

// PutObjectAPI is the subset of *s3.Client the store needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

var loadDefaultAWSConfig = config.LoadDefaultConfig

// S3Store uploads captures to an S3-compatible bucket under
// users/<user>/<yyyy>/<mm>/<dd>/<request>.<ext>.
type S3Store struct {
	client PutObjectAPI
	bucket string
}

func NewS3Store(client PutObjectAPI, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// NewS3StoreFromConfig builds the client with static credentials and a
// custom base endpoint, which is what MinIO and most S3 clones expect.
func NewS3StoreFromConfig(ctx context.Context, c *sc.Config) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			c.S3RootUser,
			c.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(c.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return NewS3Store(client, c.S3Bucket), nil
}

// StorageKey returns the object key for photo.
func StorageKey(photo *models.CapturedPhoto) string {
	id := photo.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	d := photo.CapturedAt.UTC()
	return path.Join("users", photo.OwnerID,
		fmt.Sprintf("%04d", d.Year()), fmt.Sprintf("%02d", int(d.Month())), fmt.Sprintf("%02d", d.Day()),
		path.Base(id)+Extension(photo.MimeType))
}

func (s *S3Store) Save(ctx context.Context, photo *models.CapturedPhoto) (string, error) {
	key := StorageKey(photo)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(photo.Bytes),
		ContentType:   aws.String(photo.MimeType),
		ContentLength: aws.Int64(int64(len(photo.Bytes))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: put s3://%s/%s: %v", common.ErrArtifactWrite, s.bucket, key, err)
	}

	return "s3://" + s.bucket + "/" + key, nil
}
