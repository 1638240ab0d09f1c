package symstore

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/isabella232/gamesym/internal/buildid"
)

// HTTPStore treats a base URL as a symbol server following the same
// <base>/<filename>/<buildid-hex>/<filename> convention as structured
// directory stores. It is read-only and keeps a per-instance not-found
// cache so a missing file is only probed over the network once per
// session (bypassed by ForceLoad).
type HTTPStore struct {
	baseURL string
	client  *http.Client
	misses  *missCache
}

// NewHTTPStore creates an HTTP store for the given base URL. A nil
// client uses http.DefaultClient; timeouts are whatever the client
// enforces, the store adds none of its own.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		misses:  newMissCache(),
	}
}

// BaseURL returns the store's base URL.
func (s *HTTPStore) BaseURL() string { return s.baseURL }

// fileURL returns the conventional URL for filename/id.
func (s *HTTPStore) fileURL(filename string, id buildid.BuildID) string {
	return s.baseURL + "/" + url.PathEscape(filename) + "/" + id.String() + "/" + url.PathEscape(filename)
}

// FindFile probes the server for the file's existence with a HEAD
// request, falling back to a ranged GET for servers that reject HEAD.
// The returned reference downloads on CopyTo; nothing is fetched here
// beyond the probe.
func (s *HTTPStore) FindFile(ctx context.Context, q FileQuery) (FileReference, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if q.BuildID.IsEmpty() {
		logf(q.Log, "cannot look up %q at %q without a build id", q.Filename, s.baseURL)
		return nil, nil
	}

	if strings.HasPrefix(s.baseURL, "http://") {
		logf(q.Log, "connection to %q is unencrypted, consider using https", s.baseURL)
	}

	fileURL := s.fileURL(q.Filename, q.BuildID)
	if !q.ForceLoad && s.misses.contains(fileURL) {
		logf(q.Log, "%q not found at %q (cached result)", q.Filename, s.baseURL)
		return nil, nil
	}

	exists, err := s.probe(ctx, fileURL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logf(q.Log, "error contacting %q: %v", s.baseURL, err)
		s.misses.record(fileURL)
		return nil, nil
	}
	if !exists {
		logf(q.Log, "%q not found at %q", q.Filename, s.baseURL)
		s.misses.record(fileURL)
		return nil, nil
	}

	logf(q.Log, "found %q", fileURL)
	return &httpFileReference{url: fileURL, client: s.client}, nil
}

// probe checks that the URL exists without downloading the body.
func (s *HTTPStore) probe(ctx context.Context, fileURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, fileURL, nil)
	if err != nil {
		return false, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusMethodNotAllowed, http.StatusNotImplemented:
		// HEAD unsupported; ask for the first byte instead.
		return s.probeRanged(ctx, fileURL)
	default:
		return false, nil
	}
}

// probeRanged issues a one-byte ranged GET for servers without HEAD
// support. Servers that ignore Range return 200 with the full body,
// which is discarded.
func (s *HTTPStore) probeRanged(ctx context.Context, fileURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Range", "bytes=0-0")
	resp, err := s.client.Do(req)
	if err != nil {
		return false, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent, nil
}

// AddFile is not supported on HTTP stores.
func (s *HTTPStore) AddFile(ctx context.Context, src FileReference, filename string, id buildid.BuildID, log io.Writer) (FileReference, error) {
	logf(log, "cannot add %q: HTTP store %q is read-only", filename, s.baseURL)
	return nil, ErrAddFileUnsupported
}

// DeepEquals reports whether other is an HTTP store with the same base
// URL.
func (s *HTTPStore) DeepEquals(other SymbolStore) bool {
	o, ok := other.(*HTTPStore)
	return ok && s.baseURL == o.baseURL
}

// IsCache always reports false for leaf stores.
func (s *HTTPStore) IsCache() bool { return false }

// Substores returns nil: HTTP stores have no children.
func (s *HTTPStore) Substores() []SymbolStore { return nil }
