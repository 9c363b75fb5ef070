// SPDX-License-Identifier: MPL-2.0

package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	schemeS3HTTP  = "s3+http"
	schemeS3HTTPS = "s3+https"
)

// ErrWrite is the sentinel error wrapped by WriteError.
var ErrWrite = errors.New("report write failed")

type (
	// Sink persists a rendered report.
	Sink interface {
		Write(ctx context.Context, data []byte) error
		// Location describes where the report goes, for logs and messages.
		Location() string
	}

	// WriteError is returned when the report cannot be persisted.
	WriteError struct {
		Location string
		Err      error
	}

	// FileSink writes the report to a local file, replacing any existing content.
	FileSink struct {
		Path string
	}

	// S3Sink uploads the report to an S3-compatible object store.
	S3Sink struct {
		Endpoint    string
		Bucket      string
		Key         string
		Secure      bool
		ContentType string

		// AccessKeyID and SecretAccessKey default to AWS_ACCESS_KEY_ID and
		// AWS_SECRET_ACCESS_KEY when empty.
		AccessKeyID     string
		SecretAccessKey string
	}
)

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write report to %s: %v", e.Location, e.Err)
}

// Unwrap returns both ErrWrite and the underlying cause.
func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }

// NewSink returns the sink for location: an S3Sink for s3+http(s):// URLs,
// otherwise a FileSink.
func NewSink(location string) (Sink, error) {
	if strings.TrimSpace(location) == "" {
		return nil, &WriteError{Location: location, Err: errors.New("output location is empty")}
	}
	if !IsS3Location(location) {
		return &FileSink{Path: location}, nil
	}
	return ParseS3Location(location)
}

// IsS3Location reports whether location uses one of the S3 schemes.
func IsS3Location(location string) bool {
	return strings.HasPrefix(location, schemeS3HTTP+"://") || strings.HasPrefix(location, schemeS3HTTPS+"://")
}

// ParseS3Location parses s3+http(s)://host[:port]/bucket/key/path.
func ParseS3Location(location string) (*S3Sink, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, &WriteError{Location: location, Err: err}
	}
	if u.Scheme != schemeS3HTTP && u.Scheme != schemeS3HTTPS {
		return nil, &WriteError{Location: location, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}
	if u.Host == "" {
		return nil, &WriteError{Location: location, Err: errors.New("missing endpoint host")}
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	if !ok || bucket == "" || key == "" {
		return nil, &WriteError{Location: location, Err: errors.New("expected /bucket/key after the endpoint")}
	}

	return &S3Sink{
		Endpoint: u.Host,
		Bucket:   bucket,
		Key:      key,
		Secure:   u.Scheme == schemeS3HTTPS,
	}, nil
}

// Write replaces the file content with data.
func (s *FileSink) Write(_ context.Context, data []byte) error {
	if err := os.WriteFile(s.Path, data, 0o644); err != nil {
		return &WriteError{Location: s.Path, Err: err}
	}
	return nil
}

// Location returns the file path.
func (s *FileSink) Location() string { return s.Path }

// Write uploads data as a single object, overwriting any existing object.
func (s *S3Sink) Write(ctx context.Context, data []byte) error {
	client, err := s.client()
	if err != nil {
		return &WriteError{Location: s.Location(), Err: err}
	}

	contentType := s.ContentType
	if contentType == "" {
		contentType = FormatCSV.ContentType()
	}

	_, err = client.PutObject(ctx, s.Bucket, s.Key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return &WriteError{Location: s.Location(), Err: err}
	}
	return nil
}

// Location returns the object URL.
func (s *S3Sink) Location() string {
	scheme := schemeS3HTTP
	if s.Secure {
		scheme = schemeS3HTTPS
	}
	return scheme + "://" + s.Endpoint + "/" + s.Bucket + "/" + s.Key
}

func (s *S3Sink) client() (*minio.Client, error) {
	accessKeyID := s.AccessKeyID
	if accessKeyID == "" {
		accessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	}
	if accessKeyID == "" {
		return nil, errors.New("AWS_ACCESS_KEY_ID not set")
	}
	secretAccessKey := s.SecretAccessKey
	if secretAccessKey == "" {
		secretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	}
	if secretAccessKey == "" {
		return nil, errors.New("AWS_SECRET_ACCESS_KEY not set")
	}

	return minio.New(s.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: s.Secure,
	})
}
