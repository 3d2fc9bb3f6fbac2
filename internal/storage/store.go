// Package storage keeps uploaded media objects in named buckets.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"socialnova/internal/models"
)

var bucketPattern = regexp.MustCompile(`^[a-z0-9-]{3,32}$`)

// Store is an object store addressed by bucket and slash-separated path.
type Store interface {
	// Upload writes a new object. Existing objects are never overwritten.
	Upload(ctx context.Context, bucket, objectPath string, r io.Reader, contentType string) error
	// PublicURL returns the URL the object is served from.
	PublicURL(bucket, objectPath string) string
	// Open reads an object back.
	Open(bucket, objectPath string) (io.ReadCloser, error)
}

// ValidateBucket checks a bucket name.
func ValidateBucket(bucket string) error {
	if !bucketPattern.MatchString(bucket) {
		return models.NewValidationError("invalid bucket name")
	}
	return nil
}

// CleanObjectPath normalizes an object path and rejects anything that would
// escape its bucket.
func CleanObjectPath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if p == "" || strings.HasPrefix(p, "/") {
		return "", models.NewValidationError("invalid object path")
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", models.NewValidationError("invalid object path")
		}
	}
	cleaned := path.Clean(p)
	if cleaned == "." || strings.HasPrefix(cleaned, "../") {
		return "", models.NewValidationError("invalid object path")
	}
	return cleaned, nil
}

// LocalStore keeps objects on the local filesystem under root/<bucket>/<path>.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates a store rooted at root whose objects are served under
// baseURL + "/media/".
func NewLocalStore(root, baseURL string) *LocalStore {
	return &LocalStore{root: root, baseURL: strings.TrimRight(baseURL, "/")}
}

// Root is the directory objects are kept in.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) resolve(bucket, objectPath string) (string, string, error) {
	if err := ValidateBucket(bucket); err != nil {
		return "", "", err
	}
	cleaned, err := CleanObjectPath(objectPath)
	if err != nil {
		return "", "", err
	}
	return cleaned, filepath.Join(s.root, bucket, filepath.FromSlash(cleaned)), nil
}

func (s *LocalStore) Upload(ctx context.Context, bucket, objectPath string, r io.Reader, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, full, err := s.resolve(bucket, objectPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o750); err != nil {
		return models.NewInternalError(err)
	}

	// #nosec G304: full is built from a validated bucket and cleaned path
	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return models.NewConflictError(fmt.Sprintf("object %s/%s already exists", bucket, objectPath))
		}
		return models.NewInternalError(err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return models.NewInternalError(err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(full)
		return models.NewInternalError(err)
	}
	return nil
}

func (s *LocalStore) PublicURL(bucket, objectPath string) string {
	cleaned, err := CleanObjectPath(objectPath)
	if err != nil {
		cleaned = objectPath
	}
	segs := strings.Split(cleaned, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return s.baseURL + "/media/" + url.PathEscape(bucket) + "/" + strings.Join(segs, "/")
}

func (s *LocalStore) Open(bucket, objectPath string) (io.ReadCloser, error) {
	_, full, err := s.resolve(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	// #nosec G304: full is built from a validated bucket and cleaned path
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, models.NewNotFoundError("Object", bucket+"/"+objectPath)
		}
		return nil, models.NewInternalError(err)
	}
	return f, nil
}
