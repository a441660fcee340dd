package sources

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentstation/tablemerge/pkg/errors"
)

// Config carries settings shared by every reader an Opener creates.
type Config struct {
	DatabaseURL string
	AWSRegion   string
	SampleSize  int
}

// Opener turns source URIs into readers. It lazily creates one S3 client
// and one Postgres pool per database URL and shares them between readers.
// Close releases the pools.
//
// Accepted forms:
//
//	path/to/file.csv, file:///abs/file.csv   local CSV
//	s3://bucket/key.csv                      CSV object
//	pg:schema.table                          table in Config.DatabaseURL
//	postgres://user@host/db?table=t          table in the given database
type Opener struct {
	cfg Config

	mu    sync.Mutex
	s3    S3API
	db    Querier
	pools map[string]*pgxpool.Pool
}

// NewOpener creates an Opener.
func NewOpener(cfg Config) *Opener {
	return &Opener{cfg: cfg, pools: make(map[string]*pgxpool.Pool)}
}

// WithS3Client sets the S3 client instead of building one from the AWS
// default configuration.
func (o *Opener) WithS3Client(c S3API) *Opener {
	o.s3 = c
	return o
}

// WithQuerier sets the database handle used for pg: URIs.
func (o *Opener) WithQuerier(q Querier) *Opener {
	o.db = q
	return o
}

// Open returns a reader for uri.
func (o *Opener) Open(ctx context.Context, uri string) (Reader, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, &errors.ValidationError{Field: "source", Message: "cannot be empty"}
	}

	switch scheme := schemeOf(uri); scheme {
	case "", "file":
		return NewCSV(strings.TrimPrefix(uri, "file://"), WithInferenceRows(o.cfg.SampleSize)), nil
	case "s3":
		bucket, key, err := ParseS3URI(uri)
		if err != nil {
			return nil, err
		}
		client, err := o.s3Client(ctx)
		if err != nil {
			return nil, err
		}
		return NewS3(client, bucket, key, WithInferenceRows(o.cfg.SampleSize)), nil
	case "pg":
		ref, err := ParseTableRef(strings.TrimPrefix(uri, "pg:"))
		if err != nil {
			return nil, err
		}
		db, err := o.querier(ctx, o.cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgres(db, ref, o.cfg.SampleSize), nil
	case "postgres", "postgresql":
		u, err := url.Parse(uri)
		if err != nil {
			return nil, &errors.ValidationError{Field: "source", Value: uri, Message: err.Error()}
		}
		q := u.Query()
		ref, err := ParseTableRef(q.Get("table"))
		if err != nil {
			return nil, err
		}
		q.Del("table")
		u.RawQuery = q.Encode()
		db, err := o.querier(ctx, u.String())
		if err != nil {
			return nil, err
		}
		return NewPostgres(db, ref, o.cfg.SampleSize), nil
	default:
		return nil, &errors.ValidationError{Field: "source", Value: uri, Message: "unsupported scheme " + scheme}
	}
}

// Pool returns the shared pool for databaseURL, connecting on first use.
func (o *Opener) Pool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if p, ok := o.pools[databaseURL]; ok {
		return p, nil
	}
	p, err := Connect(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	o.pools[databaseURL] = p
	return p, nil
}

// Close closes every pool the Opener created.
func (o *Opener) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	for k, p := range o.pools {
		p.Close()
		delete(o.pools, k)
	}
}

func (o *Opener) querier(ctx context.Context, databaseURL string) (Querier, error) {
	if o.db != nil {
		return o.db, nil
	}
	return o.Pool(ctx, databaseURL)
}

func (o *Opener) s3Client(ctx context.Context) (S3API, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.s3 != nil {
		return o.s3, nil
	}
	c, err := NewS3Client(ctx, o.cfg.AWSRegion)
	if err != nil {
		return nil, err
	}
	o.s3 = c
	return c, nil
}

// schemeOf returns the lower-cased URI scheme, or "" for plain paths.
// Windows drive letters are not schemes.
func schemeOf(uri string) string {
	i := strings.IndexByte(uri, ':')
	if i <= 1 {
		return ""
	}
	scheme := uri[:i]
	for _, r := range scheme {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.') {
			return ""
		}
	}
	return strings.ToLower(scheme)
}
