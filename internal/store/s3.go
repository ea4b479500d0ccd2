// ABOUTME: S3-backed index artifact and extracted-text storage
// ABOUTME: Artifacts live at derived/{docId}.index.json, text at derived/{docId}.txt
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/documentgpt/docchat/internal/models"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store reads and writes index artifacts and extracted text in one bucket.
type S3Store struct {
	client S3API
	bucket string
}

// NewS3Store creates an S3Store for the given bucket.
func NewS3Store(client S3API, bucket string) *S3Store {
	return &S3Store{client: client, bucket: bucket}
}

// IndexKey returns the artifact key for a document.
func IndexKey(documentID string) string {
	return "derived/" + documentID + ".index.json"
}

// TextKey returns the default extracted-text key for a document.
func TextKey(documentID string) string {
	return "derived/" + documentID + ".txt"
}

// SaveIndex writes the artifact JSON, fully replacing any previous index.
func (s *S3Store) SaveIndex(ctx context.Context, doc *models.DocumentIndex) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid index: %w", err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(IndexKey(doc.DocumentID)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to put index for %s: %w", doc.DocumentID, err)
	}
	return nil
}

// LoadIndex reads and validates a document's artifact. A missing object maps
// to ErrIndexNotFound.
func (s *S3Store) LoadIndex(ctx context.Context, documentID string) (*models.DocumentIndex, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(IndexKey(documentID)),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("failed to get index for %s: %w", documentID, err)
	}
	defer out.Body.Close()

	var doc models.DocumentIndex
	if err := json.NewDecoder(out.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode index for %s: %w", documentID, err)
	}
	if err := doc.Validate(); err != nil {
		return nil, fmt.Errorf("corrupt index for %s: %w", documentID, err)
	}
	return &doc, nil
}

// LoadText reads extracted document text by key.
func (s *S3Store) LoadText(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			return "", ErrTextNotFound
		}
		return "", fmt.Errorf("failed to get text at %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read text at %s: %w", key, err)
	}
	return string(data), nil
}

func isNoSuchKey(err error) bool {
	var noKey *s3types.NoSuchKey
	return errors.As(err, &noKey)
}
