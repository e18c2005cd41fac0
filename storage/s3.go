package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"paper-archive/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Settings bündelt die Zugangsdaten für einen S3-kompatiblen Endpoint.
type S3Settings struct {
	URL    string
	Region string
	Key    string
	Secret string
}

// SettingsFromConfig übernimmt die S3-Parameter aus der Konfiguration.
func SettingsFromConfig(cfg *config.Config) S3Settings {
	return S3Settings{URL: cfg.S3URL, Region: cfg.S3Region, Key: cfg.S3Key, Secret: cfg.S3Secret}
}

// NewS3Client erstellt einen S3-Client für einen S3-kompatiblen Endpoint.
func NewS3Client(ctx context.Context, s S3Settings) (*s3.Client, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL:               s.URL,
				SigningRegion:     s.Region,
				HostnameImmutable: true,
			}, nil
		},
	)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(s.Key, s.Secret, "")),
		awsconfig.WithEndpointResolverWithOptions(resolver),
	)
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg), nil
}

// UploadFile lädt eine Datei ins S3 hoch und gibt den Link zurück.
func UploadFile(ctx context.Context, client *s3.Client, baseURL, bucket, key string, data []byte) (string, error) {
	_, err := client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key), nil
}

// RotateObjects löscht alle Objekte unter prefix bis auf die keep neuesten.
func RotateObjects(ctx context.Context, client *s3.Client, bucket, prefix string, keep int) ([]string, error) {
	out, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	objects := out.Contents
	if len(objects) <= keep {
		return nil, nil
	}

	// Neueste zuerst
	sort.Slice(objects, func(i, j int) bool {
		return aws.ToTime(objects[i].LastModified).After(aws.ToTime(objects[j].LastModified))
	})

	var deleted []string
	for _, obj := range objects[keep:] {
		if _, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(bucket),
			Key:    obj.Key,
		}); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", aws.ToString(obj.Key), err)
		}
		deleted = append(deleted, aws.ToString(obj.Key))
	}
	return deleted, nil
}

// S3KV legt jeden Schlüssel als Objekt unter einem Präfix im Bucket ab.
type S3KV struct {
	client *s3.Client
	bucket string
	prefix string
}

var _ KV = (*S3KV)(nil)

// NewS3KV erstellt den Speicher auf einem bestehenden Client.
func NewS3KV(client *s3.Client, bucket string) *S3KV {
	return &S3KV{client: client, bucket: bucket, prefix: "kv/"}
}

func (k *S3KV) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := k.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(k.bucket),
		Key:    aws.String(k.prefix + key + ".json"),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3 read %s: %w", key, err)
	}
	return data, nil
}

func (k *S3KV) Set(ctx context.Context, key string, value []byte) error {
	_, err := k.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(k.bucket),
		Key:         aws.String(k.prefix + key + ".json"),
		Body:        bytes.NewReader(value),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}
