package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	gcs "cloud.google.com/go/storage"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// GCSOptions configures GCS client initialization.
type GCSOptions struct {
	// Bucket receives every object.
	Bucket string
	// Client reuses an existing client; the fields below are then ignored.
	Client *gcs.Client
	// CredentialsFile is a service account JSON file.
	CredentialsFile string
	// CredentialsJSON is service account JSON given inline.
	CredentialsJSON []byte
	// Endpoint overrides the API endpoint (emulators).
	Endpoint string
	// WithoutAuth disables authentication (emulators).
	WithoutAuth bool
}

// GCSAdapter implements Storage using Google Cloud Storage.
type GCSAdapter struct {
	client *gcs.Client
	bucket *gcs.BucketHandle
}

// NewGCS constructs a GCS adapter. Without explicit credentials the
// application default credentials are used.
func NewGCS(ctx context.Context, opts GCSOptions) (*GCSAdapter, error) {
	if opts.Bucket == "" {
		return nil, ErrBucketRequired
	}

	client := opts.Client
	if client == nil {
		clientOpts, err := gcsClientOptions(ctx, opts)
		if err != nil {
			return nil, err
		}

		client, err = gcs.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("storage: gcs client: %w", err)
		}
	}

	return &GCSAdapter{client: client, bucket: client.Bucket(opts.Bucket)}, nil
}

func gcsClientOptions(ctx context.Context, opts GCSOptions) ([]option.ClientOption, error) {
	var out []option.ClientOption
	if opts.WithoutAuth {
		out = append(out, option.WithoutAuthentication())
	}

	credsJSON := opts.CredentialsJSON
	if len(credsJSON) == 0 && opts.CredentialsFile != "" {
		data, err := os.ReadFile(opts.CredentialsFile) // #nosec G304 -- path from trusted config
		if err != nil {
			return nil, fmt.Errorf("storage: gcs credentials file: %w", err)
		}
		credsJSON = data
	}
	if len(credsJSON) > 0 {
		creds, err := google.CredentialsFromJSON(ctx, credsJSON, gcs.ScopeReadWrite)
		if err != nil {
			return nil, fmt.Errorf("storage: gcs credentials: %w", err)
		}
		out = append(out, option.WithCredentials(creds))
	}

	if opts.Endpoint != "" {
		out = append(out, option.WithEndpoint(opts.Endpoint))
	}
	return out, nil
}

// Put uploads data.
func (g *GCSAdapter) Put(ctx context.Context, key string, data []byte, contentType string) error {
	w := g.bucket.Object(key).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close() //nolint:errcheck,gosec // write error wins
		return err
	}
	return w.Close()
}

// Get downloads the object.
func (g *GCSAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := g.bucket.Object(key).NewReader(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil, ErrObjectNotFound
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}

// Delete removes the object.
func (g *GCSAdapter) Delete(ctx context.Context, key string) error {
	err := g.bucket.Object(key).Delete(ctx)
	if errors.Is(err, gcs.ErrObjectNotExist) {
		return nil
	}
	return err
}

// Close closes the GCS client.
func (g *GCSAdapter) Close() error {
	return g.client.Close()
}
