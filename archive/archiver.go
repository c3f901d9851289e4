package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/kamilio/ai-studio/storage"
	"github.com/kamilio/ai-studio/types"
)

const snapshotPrefix = "snapshots/"

// ObjectStore is the narrow slice of object storage the archiver needs,
// small enough to fake in tests.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Archiver backs up full studio snapshots to object storage and restores
// them. Every backup is a complete snapshot; restore is a wholesale import.
type Archiver struct {
	store   *storage.Store
	objects ObjectStore
}

func NewArchiver(store *storage.Store, objects ObjectStore) *Archiver {
	return &Archiver{store: store, objects: objects}
}

// NewArchiverFromEnv builds an S3-backed archiver, or returns nil when
// S3_BUCKET is unset. Callers treat a nil archiver as the feature being off.
func NewArchiverFromEnv(ctx context.Context, store *storage.Store) (*Archiver, error) {
	bucket := os.Getenv("S3_BUCKET")
	if bucket == "" {
		log.Println("S3_BUCKET not set, snapshot archiving disabled")
		return nil, nil
	}

	objects, err := NewS3ObjectStore(ctx, S3Config{
		Bucket: bucket,
		Region: os.Getenv("AWS_REGION"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize s3 archive: %w", err)
	}
	return NewArchiver(store, objects), nil
}

// Backup exports the current snapshot and uploads it under a timestamped
// key. Returns the key so callers can surface it.
func (a *Archiver) Backup(ctx context.Context) (string, error) {
	snapshot, err := a.store.Export()
	if err != nil {
		return "", err
	}

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := snapshotPrefix + time.Now().UTC().Format("20060102T150405Z") + ".json"
	if err := a.objects.Put(ctx, key, bytes.NewReader(raw), "application/json"); err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}

	log.Printf("Backed up snapshot to %s (%d bytes)", key, len(raw))
	return key, nil
}

// Restore downloads the snapshot at key and imports it, replacing every
// collection.
func (a *Archiver) Restore(ctx context.Context, key string) error {
	body, err := a.objects.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("download snapshot %s: %w", key, err)
	}
	defer body.Close()

	var snapshot types.Snapshot
	if err := json.NewDecoder(body).Decode(&snapshot); err != nil {
		return fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return a.store.Import(snapshot)
}

// ListBackups returns known snapshot keys, newest first. Keys embed their
// creation timestamp so lexical order is chronological.
func (a *Archiver) ListBackups(ctx context.Context) ([]string, error) {
	keys, err := a.objects.List(ctx, snapshotPrefix)
	if err != nil {
		return nil, err
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

// RestoreLatest restores the newest backup.
func (a *Archiver) RestoreLatest(ctx context.Context) error {
	keys, err := a.ListBackups(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return errors.New("no backups found")
	}
	return a.Restore(ctx, keys[0])
}

// ---- S3 implementation ----

// S3Config configures the S3-backed object store. Region is optional and
// falls back to the standard AWS config chain.
type S3Config struct {
	Bucket       string
	Region       string
	UsePathStyle bool
}

// S3ObjectStore implements ObjectStore on a single bucket.
type S3ObjectStore struct {
	client *s3.Client
	bucket string
}

func NewS3ObjectStore(ctx context.Context, cfg S3Config) (*S3ObjectStore, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3ObjectStore{client: client, bucket: cfg.Bucket}, nil
}

func (s *S3ObjectStore) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err := s.client.PutObject(ctx, in)
	return err
}

func (s *S3ObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("snapshot %s does not exist", key)
		}
		return nil, err
	}
	return out.Body, nil
}

func (s *S3ObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
		if out.IsTruncated == nil || !*out.IsTruncated {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

func isNotFound(err error) bool {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchKey"
	}
	return false
}
