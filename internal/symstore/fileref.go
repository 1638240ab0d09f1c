package symstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileReference is a handle to a located symbol or binary file. A
// reference is created per successful store lookup and either handed
// to the consumer or used once to populate a cache store.
type FileReference interface {
	// Location is the file's path or URL.
	Location() string

	// IsFilesystemLocation reports whether Location is a local path
	// that can be handed directly to a debugger backend.
	IsFilesystemLocation() bool

	// CopyTo copies the file's contents to a local destination path.
	// The destination is written at most once: contents land in a
	// temp file in the destination directory and are renamed into
	// place, so a failed copy never leaves a partial file behind.
	CopyTo(ctx context.Context, dest string) error
}

// localFileReference points at a file on the local filesystem.
type localFileReference struct {
	path string
}

// NewLocalFileReference creates a reference to a local file.
func NewLocalFileReference(path string) FileReference {
	return &localFileReference{path: path}
}

func (r *localFileReference) Location() string           { return r.path }
func (r *localFileReference) IsFilesystemLocation() bool { return true }

func (r *localFileReference) CopyTo(ctx context.Context, dest string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("copy %s: %w", r.path, err)
	}
	defer src.Close()
	return writeAtomically(dest, src)
}

// httpFileReference points at a file served by a symbol server.
type httpFileReference struct {
	url    string
	client *http.Client
}

func (r *httpFileReference) Location() string           { return r.url }
func (r *httpFileReference) IsFilesystemLocation() bool { return false }

func (r *httpFileReference) CopyTo(ctx context.Context, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("download %s: %w", r.url, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", r.url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: unexpected status %s", r.url, resp.Status)
	}
	return writeAtomically(dest, resp.Body)
}

// writeAtomically streams src into dest via a uniquely named temp file
// in the destination directory, renamed into place on success. The
// temp file lives next to dest so the rename never crosses filesystems.
func writeAtomically(dest string, src io.Reader) error {
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmpPath := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", filepath.Base(dest), uuid.NewString()))
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", dest, err)
	}

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", dest, err)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("finalize %s: %w", dest, err)
	}
	return nil
}
