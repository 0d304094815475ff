// Package media moves chat-attached photos into durable object storage.
package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Fetcher retrieves an image by its chat reference and returns a public URL
// for the stored copy.
type Fetcher interface {
	Fetch(ctx context.Context, imageRef string) (string, error)
}

// S3API is the subset of the S3 client used by the fetcher.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// FileResolver resolves a chat file reference to a downloadable URL.
// *tgbotapi.BotAPI satisfies it.
type FileResolver interface {
	GetFileDirectURL(fileID string) (string, error)
}

// S3Fetcher downloads a chat photo and uploads it to an S3 bucket.
type S3Fetcher struct {
	Resolver      FileResolver
	S3            S3API
	Bucket        string
	PublicBaseURL string
	Client        *http.Client
	now           func() time.Time
}

// NewS3Fetcher creates a fetcher with a bounded download client.
func NewS3Fetcher(resolver FileResolver, s3Client S3API, bucket, publicBaseURL string, timeout time.Duration) *S3Fetcher {
	return &S3Fetcher{
		Resolver:      resolver,
		S3:            s3Client,
		Bucket:        bucket,
		PublicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		Client:        &http.Client{Timeout: timeout},
		now:           time.Now,
	}
}

// Fetch downloads the image behind imageRef and stores it under a
// timestamped key. The returned URL is what gets persisted on the report.
func (f *S3Fetcher) Fetch(ctx context.Context, imageRef string) (string, error) {
	fileURL, err := f.Resolver.GetFileDirectURL(imageRef)
	if err != nil {
		return "", fmt.Errorf("resolve image %s: %w", imageRef, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image %s: %w", imageRef, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image %s: status %d", imageRef, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", imageRef, err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("reports/reporte-%d-%s.%s", f.now().Unix(), sanitizeRef(imageRef), extFor(contentType))

	_, err = f.S3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(f.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload image %s: %w", imageRef, err)
	}

	publicURL := f.PublicBaseURL + "/" + key
	log.Printf("INFO: Stored report photo %s (%d bytes)", key, len(body))
	return publicURL, nil
}

func extFor(contentType string) string {
	if i := strings.Index(contentType, "/"); i >= 0 && i+1 < len(contentType) {
		return contentType[i+1:]
	}
	return "jpg"
}

// sanitizeRef keeps file references safe to embed in an object key.
func sanitizeRef(ref string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, ref)
}
