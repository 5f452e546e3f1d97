package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/matzehuels/scrolly/data"
	"github.com/matzehuels/scrolly/pkg/buildinfo"
	"github.com/matzehuels/scrolly/pkg/cache"
	"github.com/matzehuels/scrolly/pkg/errors"
	"github.com/matzehuels/scrolly/pkg/observability"
)

// Source opens a CSV document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// FileSource reads a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return os.Open(s.Path)
}

func (s FileSource) String() string { return s.Path }

// FSSource reads a file from an fs.FS.
type FSSource struct {
	FS   fs.FS
	Name string
}

func (s FSSource) Open(ctx context.Context) (io.ReadCloser, error) {
	return s.FS.Open(s.Name)
}

func (s FSSource) String() string { return "embed:" + s.Name }

// URLSource fetches a document over HTTP. Any non-2xx status fails.
type URLSource struct {
	URL    string
	Client *http.Client
}

func (s URLSource) Open(ctx context.Context) (io.ReadCloser, error) {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	u, err := url.Parse(s.URL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, err
	}
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: %s", s.URL, resp.Status)
	}
	return resp.Body, nil
}

func (s URLSource) String() string { return s.URL }

// ParseSource interprets a dataset location:
//
//	http://… or https://…   URLSource
//	embed:<name>            a dataset bundled with the binary
//	anything else           FileSource
func ParseSource(loc string) (Source, error) {
	switch {
	case loc == "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty dataset location")
	case strings.HasPrefix(loc, "http://"), strings.HasPrefix(loc, "https://"):
		if _, err := url.ParseRequestURI(loc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid dataset URL")
		}
		return URLSource{URL: loc}, nil
	case strings.HasPrefix(loc, "embed:"):
		name := strings.TrimPrefix(loc, "embed:")
		if _, err := fs.Stat(data.FS, name); err != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no bundled dataset %q", name)
		}
		return FSSource{FS: data.FS, Name: name}, nil
	default:
		return FileSource{Path: loc}, nil
	}
}

// CachedSource keeps the bytes of remote sources in a cache, so repeated
// loads (one per session on a server) fetch the document once per ttl.
type CachedSource struct {
	Source Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
}

// Cached wraps URL sources with c. Local sources are returned unchanged.
func Cached(src Source, c cache.Cache, keyer cache.Keyer, ttl time.Duration) Source {
	if _, remote := src.(URLSource); !remote || c == nil {
		return src
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return CachedSource{Source: src, Cache: c, Keyer: keyer, TTL: ttl}
}

func (s CachedSource) Open(ctx context.Context) (io.ReadCloser, error) {
	key := s.Keyer.HTTPKey("dataset:", s.Source.String())
	if b, ok, err := s.Cache.Get(ctx, key); err == nil && ok {
		return io.NopCloser(bytes.NewReader(b)), nil
	}

	rc, err := s.Source.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.Set(ctx, key, b, s.TTL)
	return io.NopCloser(bytes.NewReader(b)), nil
}

func (s CachedSource) String() string { return s.Source.String() }
