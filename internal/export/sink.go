package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kuncheriajose/firehawk-frontend/internal/config"
	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

var exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cardb",
	Name:      "exports_total",
	Help:      "CSV exports by sink and outcome.",
}, []string{"sink", "outcome"})

// Sink stores an exported CSV file and reports where it went.
type Sink interface {
	Export(ctx context.Context, records []core.Record, base string) (string, error)
}

// DirSink writes exports into a local directory.
type DirSink struct {
	Dir string

	// Now defaults to time.Now.
	Now func() time.Time
}

// NewDirSink creates a sink for dir.
func NewDirSink(dir string) *DirSink {
	return &DirSink{Dir: dir, Now: time.Now}
}

// Export writes the file atomically and returns its path.
func (s *DirSink) Export(ctx context.Context, records []core.Record, base string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		exportsTotal.WithLabelValues("dir", "error").Inc()
		return "", fmt.Errorf("create export dir: %w", err)
	}

	target := filepath.Join(s.Dir, Filename(base, s.now()))
	tmp, err := os.CreateTemp(s.Dir, ".export-*.csv")
	if err != nil {
		exportsTotal.WithLabelValues("dir", "error").Inc()
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteCSV(tmp, records); err != nil {
		tmp.Close()
		exportsTotal.WithLabelValues("dir", "error").Inc()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		exportsTotal.WithLabelValues("dir", "error").Inc()
		return "", fmt.Errorf("close export: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		exportsTotal.WithLabelValues("dir", "error").Inc()
		return "", fmt.Errorf("move export into place: %w", err)
	}

	exportsTotal.WithLabelValues("dir", "ok").Inc()
	logging.FromContext(ctx).Info("export written", "path", target, "records", len(records))
	return target, nil
}

func (s *DirSink) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// S3Sink uploads exports to a bucket.
type S3Sink struct {
	uploader *s3manager.Uploader
	bucket   string
	prefix   string
	now      func() time.Time
}

// NewS3Sink creates an uploader for bucket in region. Credentials come from
// the default AWS chain.
func NewS3Sink(region, bucket, prefix string) (*S3Sink, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3 bucket name is required")
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, fmt.Errorf("create aws session: %w", err)
	}

	return &S3Sink{
		uploader: s3manager.NewUploader(sess),
		bucket:   bucket,
		prefix:   prefix,
		now:      time.Now,
	}, nil
}

// Key returns the object key for a file name under the sink's prefix.
func (s *S3Sink) Key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Export uploads the CSV and returns its s3:// URL.
func (s *S3Sink) Export(ctx context.Context, records []core.Record, base string) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records); err != nil {
		exportsTotal.WithLabelValues("s3", "error").Inc()
		return "", fmt.Errorf("write export: %w", err)
	}

	key := s.Key(Filename(base, s.now()))
	_, err := s.uploader.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		exportsTotal.WithLabelValues("s3", "error").Inc()
		return "", fmt.Errorf("upload export: %w", err)
	}

	location := fmt.Sprintf("s3://%s/%s", s.bucket, key)
	exportsTotal.WithLabelValues("s3", "ok").Inc()
	logging.FromContext(ctx).Info("export uploaded", "location", location, "records", len(records))
	return location, nil
}

// Open builds the sink selected by cfg.
func Open(cfg config.ExportConfig) (Sink, error) {
	switch cfg.Kind {
	case config.ExportDir, "":
		return NewDirSink(cfg.Dir), nil
	case config.ExportS3:
		return NewS3Sink(cfg.S3Region, cfg.S3Bucket, cfg.S3Prefix)
	default:
		return nil, fmt.Errorf("unknown export kind %q", cfg.Kind)
	}
}
