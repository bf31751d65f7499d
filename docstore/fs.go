/*
Package docstore stores uploaded supporting documents (valid IDs,
participant lists, payment receipts) and hands back opaque references.

PURPOSE:
  Request and registration rows never hold file bytes, only
  training.DocumentRef values produced here. The filesystem
  implementation is the production default; Memory backs tests.

SECURITY:
  Stored names are generated (uuid + original extension), never taken
  from the client, so a crafted filename cannot traverse out of the
  upload directory. Uploads are capped by size and restricted to an
  extension allowlist.
*/
package docstore

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lifeline/training-engine/training"
)

// MaxUploadSize caps a single document upload.
const MaxUploadSize = 10 << 20 // 10 MiB

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".doc":  true,
	".docx": true,
}

// FS stores documents as files under a single directory.
type FS struct {
	dir string
}

// NewFS creates the upload directory if needed and returns a store
// over it.
func NewFS(dir string) (*FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &FS{dir: dir}, nil
}

// Store saves the document and returns its reference. The original
// filename contributes only its extension.
func (f *FS) Store(ctx context.Context, filename string, r io.Reader) (training.DocumentRef, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(filename)))
	if !allowedExtensions[ext] {
		verr := &training.ValidationError{}
		return "", verr.Add("file", fmt.Sprintf("file type %q is not accepted", ext))
	}

	name := uuid.NewString() + ext
	path := filepath.Join(f.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create document file: %w", err)
	}
	defer dst.Close()

	n, err := io.Copy(dst, io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write document file: %w", err)
	}
	if n > MaxUploadSize {
		os.Remove(path)
		verr := &training.ValidationError{}
		return "", verr.Add("file", "exceeds the maximum upload size")
	}

	return training.DocumentRef(name), nil
}

// Open returns the document's content for serving.
func (f *FS) Open(ctx context.Context, ref training.DocumentRef) (io.ReadCloser, error) {
	// Base strips any path components a stored ref should never have.
	name := filepath.Base(string(ref))
	file, err := os.Open(filepath.Join(f.dir, name))
	if os.IsNotExist(err) {
		return nil, &training.NotFoundError{Kind: "document", ID: string(ref)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	return file, nil
}

// URLFor returns the serving path for a stored reference.
func (f *FS) URLFor(ref training.DocumentRef) string {
	return "/api/documents/" + string(ref)
}
