package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gofiber/fiber/v2/log"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/dataset"
)

var ErrUnsupportedScheme = errors.New("unsupported source scheme")

// Source opens the raw dataset document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// New picks the source implementation from the URL scheme:
// http(s):// for a plain GET, s3://bucket/key for AWS S3, file:// or a bare path for local files.
func New(cfg *Config) (Source, error) {
	raw := strings.TrimSpace(cfg.URL)
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid source url %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		return &HTTPSource{URL: raw, Client: &http.Client{Timeout: cfg.Timeout}}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 source must look like s3://bucket/key, got %q", raw)
		}
		return NewS3Source(cfg, u.Host, key)
	case "file":
		return &FileSource{Path: u.Path}, nil
	case "":
		return &FileSource{Path: raw}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
}

// Load opens the source, parses and prepares the table. There is no partial result.
func Load(ctx context.Context, src Source, opts ...dataset.Option) (*dataset.Table, error) {
	log.Infof("[Source] Loading dataset from %s", src)

	body, err := src.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", src, err)
	}
	defer body.Close()

	observations, err := dataset.ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src, err)
	}

	table, err := dataset.Prepare(observations, opts...)
	if err != nil {
		return nil, fmt.Errorf("preparing %s: %w", src, err)
	}

	log.Infof("[Source] Loaded %d rows for %d countries (%s to %s)",
		len(table.Rows()), len(table.Countries()),
		dataset.FormatDate(table.MinDate()), dataset.FormatDate(table.MaxDate()))
	for _, d := range table.Diagnostics() {
		log.Warnf("[Dataset] %s", d)
	}
	return table, nil
}

// HTTPSource fetches the document with a single unauthenticated GET.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

func (s *HTTPSource) String() string {
	return s.URL
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (s *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

func (s *FileSource) String() string {
	return "file://" + s.Path
}

// S3Source downloads an object with the AWS SDK.
type S3Source struct {
	Bucket string
	Key    string
	client *s3.Client
}

// NewS3Source builds an S3 client from cfg. Without static keys the request is anonymous,
// which is enough for public buckets.
func NewS3Source(cfg *Config, bucket, key string) (*S3Source, error) {
	var credsProvider aws.CredentialsProvider = aws.AnonymousCredentials{}
	if cfg.HasStaticCredentials() {
		credsProvider = credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credsProvider),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &S3Source{Bucket: bucket, Key: key, client: client}, nil
}

func (s *S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.Bucket, s.Key, err)
	}
	return out.Body, nil
}

func (s *S3Source) String() string {
	return fmt.Sprintf("s3://%s/%s", s.Bucket, s.Key)
}
