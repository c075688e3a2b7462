package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/debemdeboas/notes-editor/internal/config"
	apperrors "github.com/debemdeboas/notes-editor/internal/errors"
	"github.com/debemdeboas/notes-editor/internal/model"
	"github.com/debemdeboas/notes-editor/internal/util/compression"
)

// s3API is the subset of the S3 client the store needs.
type s3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Client stores each note as a zstd compressed JSON object under prefix.
type S3Client struct {
	api          s3API
	bucket       string
	prefix       string
	previewChars int
	codec        compression.Compressor
	now          func() time.Time
}

func NewS3Client(ctx context.Context, cfg config.S3StoreConfig, previewChars int) (*S3Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load S3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Client(client, cfg.Bucket, cfg.Prefix, previewChars), nil
}

func newS3Client(api s3API, bucket, prefix string, previewChars int) *S3Client {
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	return &S3Client{
		api:          api,
		bucket:       bucket,
		prefix:       prefix,
		previewChars: previewChars,
		codec:        compression.ZstdCompressor{},
		now:          time.Now,
	}
}

func (c *S3Client) objectKey(id model.NoteID) string {
	return c.prefix + string(id) + ".json"
}

func (c *S3Client) noteID(key string) model.NoteID {
	return model.NoteID(strings.TrimSuffix(path.Base(key), ".json"))
}

func isMissing(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}

func (c *S3Client) read(ctx context.Context, key string) (*model.Note, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	data, err := c.codec.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", key, err)
	}

	var n model.Note
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return &n, nil
}

func (c *S3Client) write(ctx context.Context, n *model.Note) error {
	data, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode note: %w", err)
	}
	raw, err := c.codec.Compress(data)
	if err != nil {
		return fmt.Errorf("failed to compress note: %w", err)
	}

	_, err = c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(c.objectKey(n.ID)),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String(config.CTypeJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to store note %s: %w", n.ID, err)
	}
	return nil
}

func (c *S3Client) FetchNote(ctx context.Context, id model.NoteID) (*model.Note, error) {
	n, err := c.read(ctx, c.objectKey(id))
	if isMissing(err) {
		return nil, apperrors.NewNotFound(string(id))
	}
	return n, err
}

func (c *S3Client) CreateNote(ctx context.Context, in model.NoteInput) (*model.Note, error) {
	n := &model.Note{
		ID:        model.NoteID(uuid.NewString()),
		Title:     in.Title,
		Content:   in.Content,
		CreatedAt: c.now().UTC(),
	}
	if err := c.write(ctx, n); err != nil {
		return nil, err
	}
	storageLogger.Debug().Str("note_id", string(n.ID)).Str("bucket", c.bucket).Msg("Note created")
	return n, nil
}

func (c *S3Client) UpdateNote(ctx context.Context, id model.NoteID, in model.NoteInput) (*model.Note, error) {
	n, err := c.FetchNote(ctx, id)
	if err != nil {
		return nil, err
	}
	n.Title = in.Title
	n.Content = in.Content
	if err := c.write(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (c *S3Client) DeleteNote(ctx context.Context, id model.NoteID) error {
	key := c.objectKey(id)
	_, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if isMissing(err) {
		return apperrors.NewNotFound(string(id))
	}
	if err != nil {
		return fmt.Errorf("failed to check note %s: %w", id, err)
	}

	if _, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}
	return nil
}

func (c *S3Client) ListNotes(ctx context.Context) ([]model.NoteSummary, error) {
	var out []model.NoteSummary

	pages := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(c.prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list notes: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".json") {
				continue
			}
			n, err := c.read(ctx, key)
			if err != nil {
				storageLogger.Error().Err(err).Str("note_id", string(c.noteID(key))).Msg("Skipping unreadable note")
				continue
			}
			out = append(out, n.Summary(c.previewChars))
		}
	}

	sortSummaries(out)
	return out, nil
}
